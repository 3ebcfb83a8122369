package treasury

import (
	"context"
	"errors"
	"fmt"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/runtime/engine"
	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/adam-vault/adam-contract-core-sub000/service/dao"
	pfs "github.com/adam-vault/adam-contract-core-sub000/service/dao/policy/fs"
	pmemory "github.com/adam-vault/adam-contract-core-sub000/service/dao/policy/memory"
	"github.com/adam-vault/adam-contract-core-sub000/service/directory"
	"github.com/adam-vault/adam-contract-core-sub000/service/event"
	mfs "github.com/adam-vault/adam-contract-core-sub000/service/messaging/fs"
	mmemory "github.com/adam-vault/adam-contract-core-sub000/service/messaging/memory"
	"github.com/adam-vault/adam-contract-core-sub000/service/oracle"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant/claim"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant/generic"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant/reward"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant/swap"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant/transfer"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant/vesting"
	"github.com/viant/afs"
	"go.uber.org/zap"
)

// Service assembles the spending-policy engine with the built-in policy
// kinds, the policy configuration store and the lifecycle event fan-out.
type Service struct {
	config          *Config
	custodian       custodian.Custodian
	directory       directory.Directory
	oracle          oracle.Oracle
	registry        *variant.Registry
	extraPrototypes []variant.Prototype
	policies        dao.Service[string, policy.Config]
	eventService    *event.Service
	engine          *engine.Service
	logger          *zap.Logger
}

// New creates a treasury service with the six built-in policy kinds
// registered.
func New(options ...Option) (*Service, error) {
	ret := &Service{
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init() error {
	if err := s.config.Validate(); err != nil {
		return err
	}
	s.registry = variant.NewRegistry(
		transfer.New(),
		swap.New(),
		vesting.New(),
		claim.New(),
		reward.New(),
		generic.New(),
	)
	for _, prototype := range s.extraPrototypes {
		s.registry.Register(prototype)
	}
	if s.policies == nil {
		if baseURL := s.config.Policies.BaseURL; baseURL != "" {
			s.policies = pfs.New(afs.New(), baseURL)
		} else {
			s.policies = pmemory.New()
		}
	}
	if s.eventService == nil {
		eventService, err := s.newEventService()
		if err != nil {
			return err
		}
		s.eventService = eventService
	}
	queue, err := event.QueueOf[engine.Event](s.eventService, "lifecycle")
	if err != nil {
		return fmt.Errorf("failed to create lifecycle queue: %w", err)
	}
	s.engine = engine.New(
		engine.WithCustodian(s.custodian),
		engine.WithDirectory(s.directory),
		engine.WithOracle(s.oracle),
		engine.WithRegistry(s.registry),
		engine.WithEventQueue(queue),
		engine.WithLogger(s.logger),
	)
	return nil
}

func (s *Service) newEventService() (*event.Service, error) {
	vendor := s.config.Events.Vendor
	if vendor == "" {
		vendor = "memory"
	}
	switch vendor {
	case "fs":
		baseURL := s.config.Events.BaseURL
		return event.New("fs", event.WithNewFsQueueConfig(func(name string) mfs.QueueConfig {
			return mfs.QueueConfig{BasePath: baseURL + "/" + name}
		}))
	default:
		buffer := s.config.Events.QueueBuffer
		return event.New("memory", event.WithNewMemoryQueueConfig(func(name string) mmemory.Config {
			config := mmemory.DefaultConfig()
			if buffer > 0 {
				config.QueueBuffer = buffer
			}
			return config
		}))
	}
}

// Engine returns the lifecycle engine.
func (s *Service) Engine() *engine.Service {
	return s.engine
}

// Registry returns the variant registry.
func (s *Service) Registry() *variant.Registry {
	return s.registry
}

// Policies returns the policy configuration store.
func (s *Service) Policies() dao.Service[string, policy.Config] {
	return s.policies
}

// Events returns the event service backing the lifecycle queue.
func (s *Service) Events() *event.Service {
	return s.eventService
}

// SavePolicy registers a policy with the engine and persists its
// configuration.
func (s *Service) SavePolicy(ctx context.Context, creator string, config *policy.Config) (string, error) {
	id, err := s.engine.CreatePolicy(ctx, creator, config)
	if err != nil {
		return "", err
	}
	registered, err := s.engine.Config(ctx, id)
	if err != nil {
		return "", err
	}
	if err = s.policies.Save(ctx, registered); err != nil {
		return "", err
	}
	return id, nil
}

// RemovePolicy deregisters a policy and deletes its persisted configuration.
func (s *Service) RemovePolicy(ctx context.Context, caller, policyID string) error {
	if err := s.engine.RemovePolicy(ctx, caller, policyID); err != nil {
		return err
	}
	if err := s.policies.Delete(ctx, policyID); err != nil && !errors.Is(err, dao.ErrNotFound) {
		return err
	}
	return nil
}

// LoadPolicies registers every configuration found in the policy store,
// returning the ids of newly registered policies. Already registered ids are
// skipped.
func (s *Service) LoadPolicies(ctx context.Context, creator string) ([]string, error) {
	configs, err := s.policies.List(ctx)
	if err != nil {
		return nil, err
	}
	var loaded []string
	for _, config := range configs {
		if config.ID != "" {
			if existing, _ := s.engine.Config(ctx, config.ID); existing != nil {
				continue
			}
		}
		id, err := s.engine.CreatePolicy(ctx, creator, config)
		if err != nil {
			return loaded, fmt.Errorf("failed to register policy %s: %w", config.ID, err)
		}
		loaded = append(loaded, id)
	}
	return loaded, nil
}
