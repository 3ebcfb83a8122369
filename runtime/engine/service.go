// Package engine implements the shared transaction lifecycle every spending
// policy runs through: create, approve, execute, revoke. One engine serves
// many policy instances; each instance serializes its own mutations.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adam-vault/adam-contract-core-sub000/internal/clock"
	"github.com/adam-vault/adam-contract-core-sub000/internal/idgen"
	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/transaction"
	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/adam-vault/adam-contract-core-sub000/service/authz"
	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/adam-vault/adam-contract-core-sub000/service/dao"
	"github.com/adam-vault/adam-contract-core-sub000/service/dao/store"
	"github.com/adam-vault/adam-contract-core-sub000/service/directory"
	"github.com/adam-vault/adam-contract-core-sub000/service/messaging"
	qmem "github.com/adam-vault/adam-contract-core-sub000/service/messaging/memory"
	"github.com/adam-vault/adam-contract-core-sub000/service/oracle"
	"github.com/adam-vault/adam-contract-core-sub000/service/usage"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant"
	"github.com/adam-vault/adam-contract-core-sub000/tracing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service is the lifecycle engine.
type Service struct {
	custodian custodian.Custodian
	directory directory.Directory
	oracle    oracle.Oracle
	registry  *variant.Registry
	instances dao.Service[string, Instance]
	events    messaging.Queue[Event]
	logger    *zap.Logger
}

// New creates an engine. A custodian, an oracle and a registry with at least
// one prototype are required for any useful policy; the directory is needed
// only for team-based roles.
func New(options ...Option) *Service {
	ret := &Service{
		registry:  variant.NewRegistry(),
		instances: store.NewMemoryStore[string, Instance](func(i *Instance) string { return i.ID() }),
		events:    qmem.NewQueue[Event](qmem.DefaultConfig()),
		logger:    zap.NewNop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Registry exposes the variant registry so callers can register prototypes.
func (s *Service) Registry() *variant.Registry {
	return s.registry
}

// Events exposes the lifecycle event queue.
func (s *Service) Events() messaging.Queue[Event] {
	return s.events
}

// CreatePolicy validates and registers a policy instance, returning its id.
// The configuration is never reconfigurable afterwards; only its creator may
// remove it.
func (s *Service) CreatePolicy(ctx context.Context, caller string, config *policy.Config) (string, error) {
	var err error
	ctx, span := tracing.StartSpan(ctx, "engine.createPolicy", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	if err = config.Validate(); err != nil {
		return "", err
	}
	registered := config.Clone()
	if registered.ID == "" {
		registered.ID = idgen.New()
	}
	existing, err := s.instances.Load(ctx, registered.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		err = types.NewErrorf(types.KindConfiguration, "policy %v already exists", registered.ID)
		return "", err
	}
	bound, err := s.registry.Bind(ctx, registered)
	if err != nil {
		return "", err
	}
	instance := newInstance(caller, registered, bound, authz.New(registered, s.directory), usage.New(registered, s.custodian))
	if err = s.instances.Save(ctx, instance); err != nil {
		return "", err
	}
	s.publish(ctx, TopicPolicyCreated, registered.ID, registered.Clone())
	s.logger.Info("policy created",
		zap.String("policy", registered.ID),
		zap.String("kind", string(registered.Kind)),
		zap.String("creator", caller))
	return registered.ID, nil
}

// RemovePolicy deregisters a policy instance. Already executed transactions
// stay executed; only the creator may remove.
func (s *Service) RemovePolicy(ctx context.Context, caller, policyID string) error {
	var err error
	ctx, span := tracing.StartSpan(ctx, "engine.removePolicy", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	instance, err := s.instance(ctx, policyID)
	if err != nil {
		return err
	}
	if instance.creator != "" && !strings.EqualFold(caller, instance.creator) {
		err = types.NewErrorf(types.KindAuthorization, "%v is not the creator of policy %v", caller, policyID)
		return err
	}
	if err = s.instances.Delete(ctx, policyID); err != nil {
		return err
	}
	s.publish(ctx, TopicPolicyRemoved, policyID, instance.config.Clone())
	s.logger.Info("policy removed", zap.String("policy", policyID), zap.String("caller", caller))
	return nil
}

// CreateTransaction appends a pending transaction to the policy ledger. The
// caller must be an authorized executor. Creation is not gated on the window
// start; only an already expired policy refuses new transactions. Malformed
// instruction payloads fail here, kind-specific validation happens at
// execution.
func (s *Service) CreateTransaction(ctx context.Context, caller, policyID string, instructions []json.RawMessage, options ...TransactionOption) (*transaction.Transaction, error) {
	var err error
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("engine.createTransaction %s", policyID), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	opts := &transactionOptions{}
	for _, option := range options {
		option(opts)
	}
	instance, err := s.instance(ctx, policyID)
	if err != nil {
		return nil, err
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()

	if err = s.ensureExecutor(ctx, instance, caller); err != nil {
		return nil, err
	}
	now := clock.Now()
	if !instance.config.EndTime.IsZero() && now.After(instance.config.EndTime) {
		err = instance.config.WindowError(now)
		return nil, err
	}
	if err = instance.accountant.CanCount(&instance.counter); err != nil {
		return nil, err
	}
	if len(instructions) == 0 {
		err = types.NewError(types.KindPayload, "transaction requires at least one instruction")
		return nil, err
	}
	for at, raw := range instructions {
		if _, err = instance.variant.Decode(raw); err != nil {
			err = types.WrapError(types.KindPayload, fmt.Sprintf("instruction %v", at), err)
			return nil, err
		}
	}

	txn := transaction.New(policyID, instance.nextID, instructions, opts.deadline, opts.comment, now)
	instance.nextID++
	txn.AutoExecute = opts.autoExecute
	if instance.config.MinApproval == 0 {
		txn.State = transaction.StateApproved
		txn.ApprovedAt = &now
	}
	instance.append(txn)
	s.publish(ctx, TopicTransactionCreated, policyID, txn.Clone())
	s.logger.Info("transaction created",
		zap.String("policy", policyID),
		zap.Uint64("transaction", txn.ID),
		zap.String("caller", caller),
		zap.Int("instructions", len(instructions)))

	if txn.AutoExecute && txn.Executable(instance.config.MinApproval) == nil {
		s.autoExecute(ctx, instance, txn, caller)
	}
	return txn.Clone(), nil
}

// ApproveTransaction records one approval vote. The caller must be an
// authorized approver resolved against the live directory; a repeated vote
// fails with a state error.
func (s *Service) ApproveTransaction(ctx context.Context, caller, policyID string, id uint64, comment string) (*transaction.Transaction, error) {
	var err error
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("engine.approveTransaction %s/%d", policyID, id), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	instance, err := s.instance(ctx, policyID)
	if err != nil {
		return nil, err
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()

	allowed, err := instance.resolver.IsApprover(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !allowed {
		err = types.NewErrorf(types.KindAuthorization, "%v is not an approver of policy %v", caller, policyID)
		return nil, err
	}
	txn, err := instance.lookup(id)
	if err != nil {
		return nil, err
	}
	if err = txn.Approve(caller, comment, instance.config.MinApproval, clock.Now()); err != nil {
		return nil, err
	}
	s.logger.Info("approval recorded",
		zap.String("policy", policyID),
		zap.Uint64("transaction", id),
		zap.String("approver", caller),
		zap.Int("votes", len(txn.Votes)))
	if txn.State == transaction.StateApproved {
		s.publish(ctx, TopicTransactionApproved, policyID, txn.Clone())
		if txn.AutoExecute {
			s.autoExecute(ctx, instance, txn, caller)
		}
	}
	return txn.Clone(), nil
}

// ExecuteTransaction executes an approved transaction: re-validates the
// window and every instruction, charges the budget against the live ceiling
// and forwards the produced calls to the custodian as one batch. Any failure aborts
// the whole batch and leaves the transaction re-executable.
func (s *Service) ExecuteTransaction(ctx context.Context, caller, policyID string, id uint64) (*transaction.Transaction, error) {
	var err error
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("engine.executeTransaction %s/%d", policyID, id), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	instance, err := s.instance(ctx, policyID)
	if err != nil {
		return nil, err
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()

	if err = s.ensureExecutor(ctx, instance, caller); err != nil {
		return nil, err
	}
	txn, err := instance.lookup(id)
	if err != nil {
		return nil, err
	}
	if err = s.execute(ctx, instance, txn, caller); err != nil {
		return nil, err
	}
	return txn.Clone(), nil
}

// RevokeTransaction cancels a pending or approved transaction. Only an
// executor may revoke; revocation consumes no budget.
func (s *Service) RevokeTransaction(ctx context.Context, caller, policyID string, id uint64) (*transaction.Transaction, error) {
	var err error
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("engine.revokeTransaction %s/%d", policyID, id), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	instance, err := s.instance(ctx, policyID)
	if err != nil {
		return nil, err
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()

	if err = s.ensureExecutor(ctx, instance, caller); err != nil {
		return nil, err
	}
	txn, err := instance.lookup(id)
	if err != nil {
		return nil, err
	}
	if err = txn.Revoke(clock.Now()); err != nil {
		return nil, err
	}
	s.publish(ctx, TopicTransactionRevoked, policyID, txn.Clone())
	s.logger.Info("transaction revoked",
		zap.String("policy", policyID),
		zap.Uint64("transaction", id),
		zap.String("caller", caller))
	return txn.Clone(), nil
}

// execute runs the batch inside the instance critical section. The caller
// already proved executor authority.
func (s *Service) execute(ctx context.Context, instance *Instance, txn *transaction.Transaction, caller string) error {
	config := instance.config
	if err := txn.Executable(config.MinApproval); err != nil {
		return err
	}
	now := clock.Now()
	if err := txn.DeadlineError(now); err != nil {
		return err
	}
	if err := config.WindowError(now); err != nil {
		return err
	}
	if err := instance.accountant.CanCount(&instance.counter); err != nil {
		return err
	}

	charges := decimal.Zero
	// batchClaimed covers identities consumed by earlier instructions of
	// this transaction, before the instance set is updated.
	batchClaimed := make(map[string]bool)
	scope := &variant.Scope{
		Config: config,
		Oracle: s.oracle,
		Caller: caller,
		Now:    now,
		HasClaimed: func(identity string) bool {
			return instance.hasClaimed(identity) || batchClaimed[strings.ToLower(identity)]
		},
		RemainingBudget: func(ctx context.Context) (decimal.Decimal, bool, error) {
			remaining, bounded, err := instance.accountant.Remaining(ctx, &instance.counter)
			if err != nil || !bounded {
				return decimal.Zero, !bounded, err
			}
			remaining = remaining.Sub(charges)
			if remaining.IsNegative() {
				remaining = decimal.Zero
			}
			return remaining, false, nil
		},
	}

	var calls []*custodian.Call
	var payloads []interface{}
	var claimed []string
	claimer, _ := instance.variant.(variant.Claimer)
	for at, raw := range txn.Instructions {
		payload, err := instance.variant.Decode(raw)
		if err != nil {
			return types.WrapError(types.KindPayload, fmt.Sprintf("instruction %v", at), err)
		}
		if err = instance.variant.Validate(ctx, scope, payload); err != nil {
			return err
		}
		charge, err := instance.variant.ChargeValue(ctx, scope, payload)
		if err != nil {
			return err
		}
		if err = instance.accountant.CanSpend(ctx, &instance.counter, charges.Add(charge)); err != nil {
			return err
		}
		instructionCalls, err := instance.variant.ExecutionCalls(ctx, scope, payload)
		if err != nil {
			return err
		}
		// The claim decision is captured here, while the budget still
		// reflects this instruction's view, so later instructions and the
		// post-debit bookkeeping agree on who was paid.
		if claimer != nil {
			identities, err := claimer.ClaimedIdentities(ctx, scope, payload)
			if err != nil {
				return err
			}
			for _, identity := range identities {
				batchClaimed[strings.ToLower(identity)] = true
			}
			claimed = append(claimed, identities...)
		}
		calls = append(calls, instructionCalls...)
		payloads = append(payloads, payload)
		charges = charges.Add(charge)
	}

	// The custodian settles the batch as one unit; no debit or state change
	// happens on rejection, the transaction stays re-executable.
	if len(calls) > 0 {
		if _, err := s.custodian.ExecuteInstructions(ctx, calls); err != nil {
			return types.WrapError(types.KindPayload, "custodian rejected batch", err)
		}
	}

	instance.accountant.Debit(&instance.counter, charges)
	txn.Execute(charges, now)
	instance.markClaimed(claimed)
	for _, payload := range payloads {
		if committer, ok := instance.variant.(variant.Committer); ok {
			if err := committer.Commit(ctx, scope, payload); err != nil {
				return err
			}
		}
	}
	s.publish(ctx, TopicTransactionExecuted, config.ID, txn.Clone())
	s.logger.Info("transaction executed",
		zap.String("policy", config.ID),
		zap.Uint64("transaction", txn.ID),
		zap.String("caller", caller),
		zap.String("charged", charges.String()),
		zap.Int("calls", len(calls)))
	return nil
}

// autoExecute attempts execution after creation or the deciding approval.
// Failures are logged, not surfaced; the transaction stays approved and can
// be executed explicitly.
func (s *Service) autoExecute(ctx context.Context, instance *Instance, txn *transaction.Transaction, caller string) {
	if err := s.execute(ctx, instance, txn, caller); err != nil {
		s.logger.Warn("auto execution deferred",
			zap.String("policy", instance.config.ID),
			zap.Uint64("transaction", txn.ID),
			zap.Error(err))
	}
}

func (s *Service) ensureExecutor(ctx context.Context, instance *Instance, caller string) error {
	allowed, err := instance.resolver.IsExecutor(ctx, caller)
	if err != nil {
		return err
	}
	if !allowed {
		return types.NewErrorf(types.KindAuthorization, "%v is not an executor of policy %v", caller, instance.config.ID)
	}
	return nil
}

func (s *Service) instance(ctx context.Context, policyID string) (*Instance, error) {
	instance, err := s.instances.Load(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, types.NewErrorf(types.KindNotFound, "policy %v not found", policyID)
	}
	return instance, nil
}

func (s *Service) publish(ctx context.Context, topic, policyID string, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, &Event{Topic: topic, PolicyID: policyID, Data: data}); err != nil {
		s.logger.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
