package treasury

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	location := filepath.Join(baseDir, "treasury.yaml")
	document := `events:
  vendor: memory
  queueBuffer: 16
policies:
  baseURL: /var/lib/treasury/policies
`
	assert.Nil(t, os.WriteFile(location, []byte(document), 0o644))

	config, err := LoadConfig(ctx, location)
	assert.Nil(t, err)
	assert.Equal(t, "memory", config.Events.Vendor)
	assert.Equal(t, 16, config.Events.QueueBuffer)
	assert.Equal(t, "/var/lib/treasury/policies", config.Policies.BaseURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	location := filepath.Join(baseDir, "treasury.json")
	assert.Nil(t, os.WriteFile(location, []byte(`{"events":{"vendor":"fs"}}`), 0o644))

	_, err := LoadConfig(ctx, location)
	assert.NotNil(t, err)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		config      *Config
		valid       bool
	}{
		{
			description: "defaults",
			config:      DefaultConfig(),
			valid:       true,
		},
		{
			description: "fs vendor with base URL",
			config:      &Config{Events: EventsConfig{Vendor: "fs", BaseURL: "/tmp/queues"}},
			valid:       true,
		},
		{
			description: "fs vendor without base URL",
			config:      &Config{Events: EventsConfig{Vendor: "fs"}},
			valid:       false,
		},
		{
			description: "unknown vendor",
			config:      &Config{Events: EventsConfig{Vendor: "kafka"}},
			valid:       false,
		},
		{
			description: "negative buffer",
			config:      &Config{Events: EventsConfig{Vendor: "memory", QueueBuffer: -1}},
			valid:       false,
		},
	}
	for _, testCase := range testCases {
		err := testCase.config.Validate()
		if testCase.valid {
			assert.Nil(t, err, testCase.description)
		} else {
			assert.NotNil(t, err, testCase.description)
		}
	}
}
