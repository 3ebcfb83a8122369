package engine

import (
	"context"
	"sort"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/transaction"
	"github.com/shopspring/decimal"
)

// Usage is a point-in-time snapshot of a policy's consumed budget; the
// remaining amount reflects the ceiling evaluated at call time.
type Usage struct {
	ExecutedCount  uint64          `json:"executedCount"`
	ExecutedAmount decimal.Decimal `json:"executedAmount"`

	// RemainingCount is nil for unlimited count ceilings.
	RemainingCount *uint64 `json:"remainingCount,omitempty"`

	// RemainingAmount carries meaning only when AmountBounded is set.
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	AmountBounded   bool            `json:"amountBounded"`
}

// Config returns a copy of the policy configuration.
func (s *Service) Config(ctx context.Context, policyID string) (*policy.Config, error) {
	instance, err := s.instance(ctx, policyID)
	if err != nil {
		return nil, err
	}
	return instance.config.Clone(), nil
}

// Policies lists the registered policy configurations.
func (s *Service) Policies(ctx context.Context) ([]*policy.Config, error) {
	instances, err := s.instances.List(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]*policy.Config, 0, len(instances))
	for _, instance := range instances {
		ret = append(ret, instance.config.Clone())
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}

// Transaction returns a copy of one ledger entry.
func (s *Service) Transaction(ctx context.Context, policyID string, id uint64) (*transaction.Transaction, error) {
	instance, err := s.instance(ctx, policyID)
	if err != nil {
		return nil, err
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()
	txn, err := instance.lookup(id)
	if err != nil {
		return nil, err
	}
	return txn.Clone(), nil
}

// Transactions returns copies of the whole ledger in creation order.
func (s *Service) Transactions(ctx context.Context, policyID string) ([]*transaction.Transaction, error) {
	instance, err := s.instance(ctx, policyID)
	if err != nil {
		return nil, err
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()
	ret := make([]*transaction.Transaction, 0, len(instance.ledger))
	for _, txn := range instance.ledger {
		ret = append(ret, txn.Clone())
	}
	return ret, nil
}

// RemainingUsage snapshots the usage counters and the budget left under the
// ceiling evaluated right now.
func (s *Service) RemainingUsage(ctx context.Context, policyID string) (*Usage, error) {
	instance, err := s.instance(ctx, policyID)
	if err != nil {
		return nil, err
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()
	ret := &Usage{
		ExecutedCount:  instance.counter.ExecutedCount,
		ExecutedAmount: instance.counter.ExecutedAmount,
	}
	if ceiling := instance.config.UsageCount; ceiling != nil {
		remaining := uint64(0)
		if *ceiling > instance.counter.ExecutedCount {
			remaining = *ceiling - instance.counter.ExecutedCount
		}
		ret.RemainingCount = &remaining
	}
	remaining, bounded, err := instance.accountant.Remaining(ctx, &instance.counter)
	if err != nil {
		return nil, err
	}
	ret.AmountBounded = bounded
	ret.RemainingAmount = remaining
	return ret, nil
}

// HasClaimed reports whether identity already consumed its claim on the
// policy.
func (s *Service) HasClaimed(ctx context.Context, policyID, identity string) (bool, error) {
	instance, err := s.instance(ctx, policyID)
	if err != nil {
		return false, err
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()
	return instance.hasClaimed(identity), nil
}
