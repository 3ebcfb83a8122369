package engine

import (
	"time"

	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/adam-vault/adam-contract-core-sub000/service/directory"
	"github.com/adam-vault/adam-contract-core-sub000/service/messaging"
	"github.com/adam-vault/adam-contract-core-sub000/service/oracle"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant"
	"go.uber.org/zap"
)

// Option customizes the engine service.
type Option func(s *Service)

// WithCustodian sets the custodial account service.
func WithCustodian(treasurer custodian.Custodian) Option {
	return func(s *Service) { s.custodian = treasurer }
}

// WithDirectory sets the membership directory used for team roles.
func WithDirectory(dir directory.Directory) Option {
	return func(s *Service) { s.directory = dir }
}

// WithOracle sets the accounting oracle.
func WithOracle(o oracle.Oracle) Option {
	return func(s *Service) { s.oracle = o }
}

// WithRegistry sets the variant registry; without it the engine knows no
// policy kinds.
func WithRegistry(registry *variant.Registry) Option {
	return func(s *Service) { s.registry = registry }
}

// WithEventQueue sets the lifecycle event queue.
func WithEventQueue(queue messaging.Queue[Event]) Option {
	return func(s *Service) { s.events = queue }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// TransactionOption customizes transaction creation.
type TransactionOption func(o *transactionOptions)

type transactionOptions struct {
	deadline    time.Time
	comment     string
	autoExecute bool
}

// WithDeadline sets the transaction deadline; a zero deadline never expires.
func WithDeadline(deadline time.Time) TransactionOption {
	return func(o *transactionOptions) { o.deadline = deadline }
}

// WithComment attaches a free-text comment.
func WithComment(comment string) TransactionOption {
	return func(o *transactionOptions) { o.comment = comment }
}

// WithAutoExecute requests execution as soon as the approval threshold is
// met.
func WithAutoExecute() TransactionOption {
	return func(o *transactionOptions) { o.autoExecute = true }
}
