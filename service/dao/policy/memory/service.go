// Package memory provides an in-memory policy configuration store.
package memory

import (
	"context"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/service/dao"
	"github.com/adam-vault/adam-contract-core-sub000/service/dao/criteria"
	"github.com/adam-vault/adam-contract-core-sub000/service/dao/store"
)

// Service stores policy configurations keyed by id.
type Service struct {
	*store.MemoryStore[string, policy.Config]
}

// New creates an empty store.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, policy.Config](func(c *policy.Config) string { return c.ID }),
	}
}

// List returns stored configurations, optionally filtered by Kind.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*policy.Config, error) {
	all, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]*policy.Config, 0, len(all))
	for _, config := range all {
		if !criteria.FilterByKind(string(config.Kind), parameters) {
			continue
		}
		ret = append(ret, config)
	}
	return ret, nil
}

var _ dao.Service[string, policy.Config] = (*Service)(nil)
