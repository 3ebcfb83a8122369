package treasury

import (
	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/adam-vault/adam-contract-core-sub000/service/dao"
	"github.com/adam-vault/adam-contract-core-sub000/service/directory"
	"github.com/adam-vault/adam-contract-core-sub000/service/event"
	"github.com/adam-vault/adam-contract-core-sub000/service/oracle"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant"
	"go.uber.org/zap"
)

// Option customizes the treasury service.
type Option func(s *Service)

// WithConfig sets the service configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithCustodian sets the custodial account service.
func WithCustodian(treasurer custodian.Custodian) Option {
	return func(s *Service) { s.custodian = treasurer }
}

// WithDirectory sets the membership directory.
func WithDirectory(dir directory.Directory) Option {
	return func(s *Service) { s.directory = dir }
}

// WithOracle sets the accounting oracle.
func WithOracle(o oracle.Oracle) Option {
	return func(s *Service) { s.oracle = o }
}

// WithPrototypes registers additional policy kinds next to the built-in six.
func WithPrototypes(prototypes ...variant.Prototype) Option {
	return func(s *Service) { s.extraPrototypes = append(s.extraPrototypes, prototypes...) }
}

// WithPolicyStore overrides the policy configuration store.
func WithPolicyStore(store dao.Service[string, policy.Config]) Option {
	return func(s *Service) { s.policies = store }
}

// WithEventService overrides the event service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.eventService = service }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}
