package treasury

import (
	"context"
	"fmt"

	"github.com/adam-vault/adam-contract-core-sub000/service/meta"
	"github.com/viant/afs"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON or YAML; the zero value inherits the package
// defaults.
type Config struct {
	Events   EventsConfig   `json:"events" yaml:"events"`
	Policies PoliciesConfig `json:"policies" yaml:"policies"`
}

// EventsConfig selects the lifecycle event queue vendor.
type EventsConfig struct {
	// Vendor is "memory" or "fs".
	Vendor string `json:"vendor" yaml:"vendor"`

	// BaseURL roots filesystem queues; required for the fs vendor.
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`

	// QueueBuffer sizes memory queues.
	QueueBuffer int `json:"queueBuffer,omitempty" yaml:"queueBuffer,omitempty"`
}

// PoliciesConfig locates persisted policy configurations.
type PoliciesConfig struct {
	// BaseURL roots the policy configuration store; empty keeps policies in
	// memory only.
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Events: EventsConfig{
			Vendor:      "memory",
			QueueBuffer: 100,
		},
	}
}

// LoadConfig reads a configuration document from the supplied URL; any afs
// scheme works and ${env.KEY} expressions in the URL expand before the fetch.
// The extension selects the format, .json decodes as JSON and everything
// else as YAML.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	config := DefaultConfig()
	if err := meta.New(afs.New(), "").Load(ctx, URL, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Events.Vendor {
	case "", "memory":
	case "fs":
		if c.Events.BaseURL == "" {
			return fmt.Errorf("events.baseURL is required for the fs vendor")
		}
	default:
		return fmt.Errorf("unsupported events.vendor: %s", c.Events.Vendor)
	}
	if c.Events.QueueBuffer < 0 {
		return fmt.Errorf("events.queueBuffer must not be negative")
	}
	return nil
}
