package yml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestNode_Interface(t *testing.T) {
	document := `kind: transfer
minApproval: 2
amount:
  mode: fixed
  fixed: 100.5
params:
  recipients:
    any: true
    items:
      - 0xDST
`
	var node yaml.Node
	assert.Nil(t, yaml.Unmarshal([]byte(document), &node))
	root := &node
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		root = node.Content[0]
	}
	actual := (*Node)(root).Interface()
	expected := map[string]interface{}{
		"kind":        "transfer",
		"minApproval": 2,
		"amount": map[string]interface{}{
			"mode":  "fixed",
			"fixed": 100.5,
		},
		"params": map[string]interface{}{
			"recipients": map[string]interface{}{
				"any":   true,
				"items": []interface{}{"0xDST"},
			},
		},
	}
	assert.Equal(t, expected, actual)
}
