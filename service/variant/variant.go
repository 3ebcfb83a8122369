// Package variant defines the strategy interface shared by every
// spending-policy kind. A prototype is registered per kind; binding it to a
// validated configuration yields the variant instance the lifecycle engine
// drives through decode, validate, charge and execution-call production.
package variant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/adam-vault/adam-contract-core-sub000/service/oracle"
	"github.com/shopspring/decimal"
)

// Scope carries the per-call collaborators and instance state a variant may
// consult during validation and charging. The engine constructs it inside the
// instance critical section, so closures observe a consistent snapshot.
type Scope struct {
	Config *policy.Config
	Oracle oracle.Oracle

	// Caller is the identity driving the current operation.
	Caller string

	// Now is the engine's clock reading for this operation.
	Now time.Time

	// HasClaimed reports whether an identity already consumed its claim on
	// this policy instance. Nil when the instance tracks no claims.
	HasClaimed func(identity string) bool

	// RemainingBudget returns the amount budget still available right now,
	// including charges accumulated earlier in the current batch. The second
	// result is true for unlimited policies, in which case the amount carries
	// no meaning.
	RemainingBudget func(ctx context.Context) (decimal.Decimal, bool, error)

	// Reserved accumulates schedule amounts admitted by earlier instructions
	// of the transaction being executed. Variants with schedule state of
	// their own validate against headroom minus Reserved and add what they
	// admit, since their own state only moves in Commit.
	Reserved decimal.Decimal
}

// Variant is the per-kind strategy bound to one policy configuration.
type Variant interface {
	// Decode parses one opaque instruction payload, failing with a payload
	// error on malformed input.
	Decode(raw json.RawMessage) (interface{}, error)

	// Validate checks the decoded payload against the policy's kind-specific
	// constraints.
	Validate(ctx context.Context, scope *Scope, payload interface{}) error

	// ChargeValue computes the price-normalized amount the payload debits
	// from the usage budget.
	ChargeValue(ctx context.Context, scope *Scope, payload interface{}) (decimal.Decimal, error)

	// ExecutionCalls produces the calls forwarded to the custodian for the
	// payload.
	ExecutionCalls(ctx context.Context, scope *Scope, payload interface{}) ([]*custodian.Call, error)
}

// Prototype creates variants for one kind. Bind fails with a configuration
// error when the kind-specific parameters are inconsistent.
type Prototype interface {
	Kind() policy.Kind
	Bind(ctx context.Context, config *policy.Config) (Variant, error)
}

// Claimer is implemented by variants that consume per-identity claims; the
// engine marks the returned identities claimed after a successful execution.
type Claimer interface {
	ClaimedIdentities(ctx context.Context, scope *Scope, payload interface{}) ([]string, error)
}

// Committer is implemented by variants that keep schedule state of their own;
// Commit runs after the custodian accepted every call of the transaction,
// still inside the instance critical section.
type Committer interface {
	Commit(ctx context.Context, scope *Scope, payload interface{}) error
}
