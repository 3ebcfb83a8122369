package transaction

import (
	"errors"
	"testing"
	"time"

	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApproveThreshold(t *testing.T) {
	now := time.Unix(1000, 0)
	txn := New("p1", 1, nil, time.Time{}, "", now)
	assert.Equal(t, StatePending, txn.State)

	assert.NoError(t, txn.Approve("0xa", "", 2, now))
	assert.Equal(t, StatePending, txn.State)

	// Same approver twice fails and does not add a vote.
	err := txn.Approve("0xa", "", 2, now)
	assert.True(t, errors.Is(err, ErrAlreadyApproved))
	assert.True(t, errors.Is(err, types.ErrState))
	assert.Len(t, txn.Votes, 1)

	assert.NoError(t, txn.Approve("0xb", "lgtm", 2, now))
	assert.Equal(t, StateApproved, txn.State)
	assert.NotNil(t, txn.ApprovedAt)

	// Approved transactions accept no further votes.
	err = txn.Approve("0xc", "", 2, now)
	assert.True(t, errors.Is(err, types.ErrState))
}

func TestTerminalStates(t *testing.T) {
	now := time.Unix(1000, 0)

	executed := New("p1", 1, nil, time.Time{}, "", now)
	executed.Execute(decimal.NewFromInt(40), now)
	assert.Equal(t, StateExecuted, executed.State)
	assert.True(t, executed.State.Terminal())
	assert.Error(t, executed.Revoke(now))
	assert.Error(t, executed.Approve("0xa", "", 1, now))

	revoked := New("p1", 2, nil, time.Time{}, "", now)
	assert.NoError(t, revoked.Revoke(now))
	assert.True(t, revoked.State.Terminal())
	assert.Error(t, revoked.Revoke(now))
	assert.True(t, errors.Is(revoked.Executable(0), types.ErrState))
}

func TestExecutable(t *testing.T) {
	now := time.Unix(1000, 0)
	txn := New("p1", 1, nil, time.Time{}, "", now)

	// Pending with approvals outstanding is not executable.
	assert.True(t, errors.Is(txn.Executable(1), types.ErrState))
	// Pending with minApproval zero is executable.
	assert.NoError(t, txn.Executable(0))

	assert.NoError(t, txn.Approve("0xa", "", 1, now))
	assert.NoError(t, txn.Executable(1))
}

func TestDeadline(t *testing.T) {
	created := time.Unix(1000, 0)
	txn := New("p1", 1, nil, time.Unix(2000, 0), "", created)
	assert.NoError(t, txn.DeadlineError(time.Unix(1500, 0)))
	assert.True(t, errors.Is(txn.DeadlineError(time.Unix(2001, 0)), types.ErrWindow))

	open := New("p1", 2, nil, time.Time{}, "", created)
	assert.NoError(t, open.DeadlineError(time.Unix(1<<40, 0)))
}
