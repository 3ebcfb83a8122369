// Package vesting implements the vesting-release policy kind: a beneficiary
// draws down a cliff-plus-linear schedule. The releasable amount at any
// moment is initial (once the cliff passed) plus completed cycles times the
// per-cycle amount, minus what was already released.
package vesting

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/adam-vault/adam-contract-core-sub000/service/oracle"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant"
	"github.com/shopspring/decimal"
	"github.com/viant/x"
)

// ErrCliffNotReached distinguishes a request before the cliff from one
// outside the policy validity window.
var ErrCliffNotReached = types.NewError(types.KindPayload, "vesting cliff not reached")

// Params are the kind-specific policy parameters.
type Params struct {
	Asset       string    `json:"asset" yaml:"asset"`
	Beneficiary string    `json:"beneficiary" yaml:"beneficiary"`
	Start       time.Time `json:"start" yaml:"start"`

	// CliffSeconds delays any release; the initial amount unlocks when the
	// cliff passes.
	CliffSeconds int64 `json:"cliffSeconds,omitempty" yaml:"cliffSeconds,omitempty"`

	// CycleSeconds and PerCycleAmount shape the linear part; cycles are
	// counted from Start, not from the cliff.
	CycleSeconds   int64           `json:"cycleSeconds,omitempty" yaml:"cycleSeconds,omitempty"`
	PerCycleAmount decimal.Decimal `json:"perCycleAmount,omitempty" yaml:"perCycleAmount,omitempty"`

	InitialAmount decimal.Decimal `json:"initialAmount,omitempty" yaml:"initialAmount,omitempty"`

	// TotalAmount optionally caps the whole schedule.
	TotalAmount decimal.Decimal `json:"totalAmount,omitempty" yaml:"totalAmount,omitempty"`
}

// Payload is one release request.
type Payload struct {
	Amount decimal.Decimal `json:"amount"`
}

type prototype struct{}

// New creates the vesting prototype.
func New() variant.Prototype {
	return &prototype{}
}

func (p *prototype) Kind() policy.Kind {
	return policy.KindVesting
}

func (p *prototype) PayloadType() *x.Type {
	return x.NewType(reflect.TypeOf(Payload{}), x.WithName("vesting.Payload"))
}

func (p *prototype) Bind(ctx context.Context, config *policy.Config) (variant.Variant, error) {
	params, err := variant.DecodeParams[Params](config.Params)
	if err != nil {
		return nil, err
	}
	if params.Asset == "" {
		return nil, types.NewError(types.KindConfiguration, "vesting policy requires asset")
	}
	if params.Beneficiary == "" {
		return nil, types.NewError(types.KindConfiguration, "vesting policy requires beneficiary")
	}
	if params.Start.IsZero() {
		return nil, types.NewError(types.KindConfiguration, "vesting policy requires start")
	}
	if params.CliffSeconds < 0 || params.CycleSeconds < 0 {
		return nil, types.NewError(types.KindConfiguration, "vesting durations must not be negative")
	}
	if params.CycleSeconds > 0 && !params.PerCycleAmount.IsPositive() {
		return nil, types.NewError(types.KindConfiguration, "vesting cycle requires positive perCycleAmount")
	}
	if params.CycleSeconds == 0 && !params.InitialAmount.IsPositive() {
		return nil, types.NewError(types.KindConfiguration, "vesting without cycles requires positive initialAmount")
	}
	return &service{config: config, params: params}, nil
}

type service struct {
	config *policy.Config
	params *Params

	// released accumulates across executions; mutated only in Commit under
	// the instance critical section.
	released decimal.Decimal
}

func (s *service) Decode(raw json.RawMessage) (interface{}, error) {
	return variant.DecodeAs[Payload](raw)
}

// Releasable computes the schedule headroom at now.
func (s *service) Releasable(now time.Time) (decimal.Decimal, error) {
	cliffAt := s.params.Start.Add(time.Duration(s.params.CliffSeconds) * time.Second)
	if now.Before(cliffAt) {
		return decimal.Zero, fmt.Errorf("%w: cliff passes at %v", ErrCliffNotReached, cliffAt.Format(time.RFC3339))
	}
	total := s.params.InitialAmount
	if s.params.CycleSeconds > 0 {
		cycles := int64(now.Sub(s.params.Start).Seconds()) / s.params.CycleSeconds
		total = total.Add(s.params.PerCycleAmount.Mul(decimal.NewFromInt(cycles)))
	}
	if s.params.TotalAmount.IsPositive() && total.GreaterThan(s.params.TotalAmount) {
		total = s.params.TotalAmount
	}
	return total.Sub(s.released), nil
}

func (s *service) Validate(ctx context.Context, scope *variant.Scope, payload interface{}) error {
	release, err := payloadOf(payload)
	if err != nil {
		return err
	}
	if !release.Amount.IsPositive() {
		return types.NewErrorf(types.KindPayload, "release amount %v must be positive", release.Amount)
	}
	releasable, err := s.Releasable(scope.Now)
	if err != nil {
		return err
	}
	// released only moves in Commit; earlier instructions of this batch sit
	// in scope.Reserved
	available := releasable.Sub(scope.Reserved)
	if release.Amount.GreaterThan(available) {
		return types.NewErrorf(types.KindPayload, "release amount %v exceeds releasable %v", release.Amount, available)
	}
	if _, err = oracle.Normalize(ctx, scope.Oracle, s.params.Asset, s.config.ReferenceAsset, release.Amount); err != nil {
		return err
	}
	scope.Reserved = scope.Reserved.Add(release.Amount)
	return nil
}

func (s *service) ChargeValue(ctx context.Context, scope *variant.Scope, payload interface{}) (decimal.Decimal, error) {
	release, err := payloadOf(payload)
	if err != nil {
		return decimal.Zero, err
	}
	return oracle.Normalize(ctx, scope.Oracle, s.params.Asset, s.config.ReferenceAsset, release.Amount)
}

func (s *service) ExecutionCalls(ctx context.Context, scope *variant.Scope, payload interface{}) ([]*custodian.Call, error) {
	release, err := payloadOf(payload)
	if err != nil {
		return nil, err
	}
	call, err := custodian.EncodeTransfer(s.params.Asset, s.params.Beneficiary, release.Amount)
	if err != nil {
		return nil, err
	}
	return []*custodian.Call{call}, nil
}

// Commit draws the released amount down from the schedule once the custodian
// accepted the transfer.
func (s *service) Commit(ctx context.Context, scope *variant.Scope, payload interface{}) error {
	release, err := payloadOf(payload)
	if err != nil {
		return err
	}
	s.released = s.released.Add(release.Amount)
	return nil
}

func payloadOf(payload interface{}) (*Payload, error) {
	release, ok := payload.(*Payload)
	if !ok {
		return nil, types.NewErrorf(types.KindPayload, "unexpected payload type %T", payload)
	}
	return release, nil
}

var (
	_ variant.Variant   = (*service)(nil)
	_ variant.Committer = (*service)(nil)
)
