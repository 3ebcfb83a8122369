package policy

import (
	"encoding/json"
	"time"

	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/shopspring/decimal"
)

// Kind identifies the spending-policy variant a configuration binds to.
type Kind string

const (
	KindTransfer Kind = "transfer"
	KindSwap     Kind = "swap"
	KindVesting  Kind = "vesting"
	KindClaim    Kind = "claim"
	KindReward   Kind = "reward"
	KindGeneric  Kind = "generic"
)

// CeilingMode selects how the cumulative amount ceiling is derived.
type CeilingMode string

const (
	// CeilingUnlimited disables the amount ceiling.
	CeilingUnlimited CeilingMode = "unlimited"
	// CeilingFixed caps cumulative spend at a fixed amount of the reference
	// asset.
	CeilingFixed CeilingMode = "fixed"
	// CeilingPercent caps cumulative spend at a fraction of the live
	// reference balance, expressed in basis points and re-evaluated at each
	// execution.
	CeilingPercent CeilingMode = "percent"
)

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10000

// AmountCeiling describes the cumulative amount limit of a policy.
type AmountCeiling struct {
	Mode  CeilingMode     `json:"mode" yaml:"mode"`
	Fixed decimal.Decimal `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Bps   int64           `json:"bps,omitempty" yaml:"bps,omitempty"`
}

// Unlimited reports whether no amount ceiling applies.
func (c AmountCeiling) Unlimited() bool {
	return c.Mode == "" || c.Mode == CeilingUnlimited
}

// Resolve computes the effective ceiling for the supplied live reference
// balance. For fixed ceilings the balance is ignored.
func (c AmountCeiling) Resolve(referenceBalance decimal.Decimal) decimal.Decimal {
	if c.Mode == CeilingPercent {
		return referenceBalance.Mul(decimal.NewFromInt(c.Bps)).Div(decimal.NewFromInt(BpsDenominator))
	}
	return c.Fixed
}

// Config holds one policy instance configuration. It is immutable after a
// successful Validate; the engine never reconfigures a registered instance.
type Config struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Kind        Kind   `json:"kind" yaml:"kind"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Executor is the single address allowed to create, execute and revoke
	// transactions. ExecutorTeamID widens that to a directory team; either or
	// both may be set.
	Executor       string `json:"executor,omitempty" yaml:"executor,omitempty"`
	ExecutorTeamID string `json:"executorTeamId,omitempty" yaml:"executorTeamId,omitempty"`

	// Approvers (or ApproverTeamID) and MinApproval gate the Pending→Approved
	// transition. MinApproval of zero makes transactions approved on creation.
	Approvers      []string `json:"approvers,omitempty" yaml:"approvers,omitempty"`
	ApproverTeamID string   `json:"approverTeamId,omitempty" yaml:"approverTeamId,omitempty"`
	MinApproval    int      `json:"minApproval" yaml:"minApproval"`

	// Validity window. A zero EndTime means no upper bound.
	StartTime time.Time `json:"startTime,omitempty" yaml:"startTime,omitempty"`
	EndTime   time.Time `json:"endTime,omitempty" yaml:"endTime,omitempty"`

	// UsageCount caps how many transactions may execute; nil means unlimited.
	UsageCount *uint64 `json:"usageCount,omitempty" yaml:"usageCount,omitempty"`

	// Amount ceiling, price-normalized to ReferenceAsset.
	Amount         AmountCeiling `json:"amount" yaml:"amount"`
	ReferenceAsset string        `json:"referenceAsset,omitempty" yaml:"referenceAsset,omitempty"`

	// Params carries kind-specific parameters, decoded by the bound variant.
	Params json.RawMessage `json:"params,omitempty" yaml:"params,omitempty"`
}

// Validate checks configuration consistency. It fails with a configuration
// error before any instance is created.
func (c *Config) Validate() error {
	if c == nil {
		return types.NewError(types.KindConfiguration, "nil config")
	}
	if c.Kind == "" {
		return types.NewError(types.KindConfiguration, "kind is required")
	}
	if c.Executor == "" && c.ExecutorTeamID == "" {
		return types.NewError(types.KindConfiguration, "executor or executorTeamId is required")
	}
	if c.MinApproval < 0 {
		return types.NewError(types.KindConfiguration, "minApproval must not be negative")
	}
	if c.MinApproval > 0 && len(c.Approvers) == 0 && c.ApproverTeamID == "" {
		return types.NewError(types.KindConfiguration, "minApproval requires approvers or approverTeamId")
	}
	if c.ApproverTeamID == "" && c.MinApproval > len(c.Approvers) {
		return types.NewErrorf(types.KindConfiguration, "minApproval %v exceeds approver count %v", c.MinApproval, len(c.Approvers))
	}
	if !c.EndTime.IsZero() && c.EndTime.Before(c.StartTime) {
		return types.NewError(types.KindConfiguration, "endTime precedes startTime")
	}
	switch c.Amount.Mode {
	case "", CeilingUnlimited:
	case CeilingFixed:
		if c.Amount.Fixed.IsNegative() {
			return types.NewError(types.KindConfiguration, "fixed ceiling must not be negative")
		}
		if c.ReferenceAsset == "" {
			return types.NewError(types.KindConfiguration, "fixed ceiling requires referenceAsset")
		}
	case CeilingPercent:
		if c.Amount.Bps <= 0 || c.Amount.Bps > BpsDenominator {
			return types.NewErrorf(types.KindConfiguration, "percent ceiling bps %v out of range (0, %v]", c.Amount.Bps, BpsDenominator)
		}
		if c.ReferenceAsset == "" {
			return types.NewError(types.KindConfiguration, "percent ceiling requires referenceAsset")
		}
	default:
		return types.NewErrorf(types.KindConfiguration, "unknown ceiling mode %v", c.Amount.Mode)
	}
	return nil
}

// InWindow reports whether now falls inside the validity window.
func (c *Config) InWindow(now time.Time) bool {
	if now.Before(c.StartTime) {
		return false
	}
	if !c.EndTime.IsZero() && now.After(c.EndTime) {
		return false
	}
	return true
}

// WindowError classifies why now is outside the validity window; it returns
// nil when the window is open.
func (c *Config) WindowError(now time.Time) error {
	if now.Before(c.StartTime) {
		return types.NewErrorf(types.KindWindow, "policy not yet active, starts at %v", c.StartTime.Format(time.RFC3339))
	}
	if !c.EndTime.IsZero() && now.After(c.EndTime) {
		return types.NewErrorf(types.KindWindow, "policy expired at %v", c.EndTime.Format(time.RFC3339))
	}
	return nil
}

// Clone returns a deep copy so that callers can inspect configuration without
// sharing mutable slices with the registered instance.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if len(c.Approvers) > 0 {
		clone.Approvers = append([]string(nil), c.Approvers...)
	}
	if c.UsageCount != nil {
		count := *c.UsageCount
		clone.UsageCount = &count
	}
	if len(c.Params) > 0 {
		clone.Params = append(json.RawMessage(nil), c.Params...)
	}
	return &clone
}
