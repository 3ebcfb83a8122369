package transaction

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/shopspring/decimal"
)

// ErrAlreadyApproved marks a repeated vote by the same identity.
var ErrAlreadyApproved = types.NewError(types.KindState, "transaction already approved by identity")

// State represents the current lifecycle state of a transaction.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateExecuted State = "executed"
	StateRevoked  State = "revoked"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateExecuted || s == StateRevoked
}

// Transaction is one ledger entry of a policy instance: an ordered batch of
// opaque instruction payloads travelling through the shared lifecycle.
type Transaction struct {
	ID           uint64            `json:"id"`
	PolicyID     string            `json:"policyId"`
	Instructions []json.RawMessage `json:"instructions"`
	Deadline     time.Time         `json:"deadline,omitempty"`
	Comment      string            `json:"comment,omitempty"`
	State        State             `json:"state"`

	// AutoExecute requests execution as soon as the approval threshold is
	// met, without a separate execute call.
	AutoExecute bool `json:"autoExecute,omitempty"`

	// Votes records approver votes in arrival order.
	Votes []Vote `json:"votes,omitempty"`

	// ExecutedAmount is the price-normalized value charged at execution.
	ExecutedAmount decimal.Decimal `json:"executedAmount"`

	CreatedAt  time.Time  `json:"createdAt"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	ExecutedAt *time.Time `json:"executedAt,omitempty"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

// New creates a pending transaction.
func New(policyID string, id uint64, instructions []json.RawMessage, deadline time.Time, comment string, now time.Time) *Transaction {
	return &Transaction{
		ID:           id,
		PolicyID:     policyID,
		Instructions: instructions,
		Deadline:     deadline,
		Comment:      comment,
		State:        StatePending,
		CreatedAt:    now,
	}
}

// Vote is one recorded approval.
type Vote struct {
	Approver string    `json:"approver"`
	Comment  string    `json:"comment,omitempty"`
	VotedAt  time.Time `json:"votedAt"`
}

// HasApproved reports whether the identity already voted on this transaction.
func (t *Transaction) HasApproved(identity string) bool {
	for _, vote := range t.Votes {
		if strings.EqualFold(vote.Approver, identity) {
			return true
		}
	}
	return false
}

// Approve records one approval vote and transitions to Approved once the
// threshold is met. A repeated vote by the same identity fails.
func (t *Transaction) Approve(identity, comment string, minApproval int, now time.Time) error {
	if t.State != StatePending {
		return types.NewErrorf(types.KindState, "transaction %v is %v, approvals accepted only while pending", t.ID, t.State)
	}
	if t.HasApproved(identity) {
		return fmt.Errorf("%w: transaction %v voted by %v", ErrAlreadyApproved, t.ID, identity)
	}
	t.Votes = append(t.Votes, Vote{Approver: identity, Comment: comment, VotedAt: now})
	if len(t.Votes) >= minApproval {
		t.State = StateApproved
		t.ApprovedAt = &now
	}
	return nil
}

// Executable reports whether execution may be attempted in the current state.
// Pending is executable only when the policy requires no approvals.
func (t *Transaction) Executable(minApproval int) error {
	switch t.State {
	case StateApproved:
		return nil
	case StatePending:
		if minApproval == 0 {
			return nil
		}
		return types.NewErrorf(types.KindState, "transaction %v pending, %v of %v approvals", t.ID, len(t.Votes), minApproval)
	default:
		return types.NewErrorf(types.KindState, "transaction %v is %v", t.ID, t.State)
	}
}

// Execute marks the transaction executed with the charged amount.
func (t *Transaction) Execute(amount decimal.Decimal, now time.Time) {
	t.ExecutedAmount = amount
	t.State = StateExecuted
	t.ExecutedAt = &now
}

// Revoke marks the transaction revoked. Only non-terminal transactions can be
// revoked; revocation consumes no budget.
func (t *Transaction) Revoke(now time.Time) error {
	if t.State.Terminal() {
		return types.NewErrorf(types.KindState, "transaction %v is %v", t.ID, t.State)
	}
	t.State = StateRevoked
	t.RevokedAt = &now
	return nil
}

// DeadlineError reports whether the transaction deadline has passed. A zero
// deadline never expires.
func (t *Transaction) DeadlineError(now time.Time) error {
	if !t.Deadline.IsZero() && now.After(t.Deadline) {
		return types.NewErrorf(types.KindWindow, "transaction %v deadline passed at %v", t.ID, t.Deadline.Format(time.RFC3339))
	}
	return nil
}

// Clone creates a deep copy so that read accessors can hand out transactions
// without sharing mutable state with the ledger.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	clone := *t
	if len(t.Instructions) > 0 {
		clone.Instructions = make([]json.RawMessage, len(t.Instructions))
		for i, raw := range t.Instructions {
			clone.Instructions[i] = append(json.RawMessage(nil), raw...)
		}
	}
	if len(t.Votes) > 0 {
		clone.Votes = append([]Vote(nil), t.Votes...)
	}
	return &clone
}
