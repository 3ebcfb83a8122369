// Package usage tracks consumed count and price-normalized amount per policy
// instance and enforces the configured ceilings. Percentage ceilings are
// resolved from the live reference balance at check time, never snapshotted,
// so the effective cap moves with the treasury balance.
package usage

import (
	"context"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/shopspring/decimal"
)

// Counter holds the running usage totals of a policy instance. The engine
// owns the counter and mutates it only inside the instance critical section.
type Counter struct {
	ExecutedCount  uint64          `json:"executedCount"`
	ExecutedAmount decimal.Decimal `json:"executedAmount"`
}

// Accountant enforces the count and amount ceilings of one policy
// configuration. It is pure bookkeeping; debits apply only after every
// instruction in a transaction validated.
type Accountant struct {
	config    *policy.Config
	custodian custodian.Custodian
}

// New creates an accountant bound to config. The custodian is consulted only
// for percentage ceilings.
func New(config *policy.Config, treasurer custodian.Custodian) *Accountant {
	return &Accountant{config: config, custodian: treasurer}
}

// CanCount fails once the finite count ceiling is exhausted.
func (a *Accountant) CanCount(counter *Counter) error {
	if a.config.UsageCount == nil {
		return nil
	}
	if counter.ExecutedCount >= *a.config.UsageCount {
		return types.NewErrorf(types.KindUsageExceeded, "usage count ceiling %v exhausted", *a.config.UsageCount)
	}
	return nil
}

// Ceiling resolves the effective amount ceiling right now. The second result
// is false when no ceiling applies.
func (a *Accountant) Ceiling(ctx context.Context) (decimal.Decimal, bool, error) {
	if a.config.Amount.Unlimited() {
		return decimal.Zero, false, nil
	}
	if a.config.Amount.Mode == policy.CeilingPercent {
		balance, err := a.custodian.Balance(ctx, a.config.ReferenceAsset)
		if err != nil {
			return decimal.Zero, true, err
		}
		return a.config.Amount.Resolve(balance), true, nil
	}
	return a.config.Amount.Resolve(decimal.Zero), true, nil
}

// CanSpend fails when charging amount on top of the executed total would
// breach the ceiling evaluated at call time.
func (a *Accountant) CanSpend(ctx context.Context, counter *Counter, amount decimal.Decimal) error {
	ceiling, bounded, err := a.Ceiling(ctx)
	if err != nil {
		return err
	}
	if !bounded {
		return nil
	}
	if counter.ExecutedAmount.Add(amount).GreaterThan(ceiling) {
		return types.NewErrorf(types.KindUsageExceeded, "amount %v exceeds remaining budget %v of ceiling %v",
			amount, ceiling.Sub(counter.ExecutedAmount), ceiling)
	}
	return nil
}

// Remaining returns how much of the amount budget is left right now. The
// second result is false for unlimited policies.
func (a *Accountant) Remaining(ctx context.Context, counter *Counter) (decimal.Decimal, bool, error) {
	ceiling, bounded, err := a.Ceiling(ctx)
	if err != nil || !bounded {
		return decimal.Zero, bounded, err
	}
	remaining := ceiling.Sub(counter.ExecutedAmount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return remaining, true, nil
}

// Debit records one executed transaction of the given normalized amount.
func (a *Accountant) Debit(counter *Counter, amount decimal.Decimal) {
	counter.ExecutedCount++
	counter.ExecutedAmount = counter.ExecutedAmount.Add(amount)
}
