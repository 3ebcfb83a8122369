package criteria

import (
	"strings"

	"github.com/adam-vault/adam-contract-core-sub000/service/dao"
)

// FilterByKind reports whether a record of the given policy kind passes the
// supplied list parameters.
func FilterByKind(kind string, parameters []*dao.Parameter) bool {
	switch len(parameters) {
	case 0:
		return true
	case 1:
		if parameters[0].Name == "Kind" {
			switch actual := parameters[0].Value.(type) {
			case string:
				return strings.EqualFold(kind, actual)
			case []string:
				for _, candidate := range actual {
					if strings.EqualFold(kind, candidate) {
						return true
					}
				}
				return false
			}
		}
	}
	return true
}
