package vesting

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	omemory "github.com/adam-vault/adam-contract-core-sub000/service/oracle/memory"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const day = 24 * 60 * 60

func bind(t *testing.T, params *Params) variant.Variant {
	raw, err := json.Marshal(params)
	assert.NoError(t, err)
	bound, err := New().Bind(context.Background(), &policy.Config{
		Kind:     policy.KindVesting,
		Executor: "0xexec",
		Params:   raw,
	})
	assert.NoError(t, err)
	return bound
}

func scopeAt(now time.Time) *variant.Scope {
	return &variant.Scope{Oracle: omemory.New(), Now: now}
}

func TestCliffThenLinearRelease(t *testing.T) {
	ctx := context.Background()
	start := time.Unix(0, 0)
	bound := bind(t, &Params{
		Asset:          "USDC",
		Beneficiary:    "0xbob",
		Start:          start,
		CliffSeconds:   30 * day,
		CycleSeconds:   30 * day,
		PerCycleAmount: decimal.NewFromInt(20),
	})

	request := &Payload{Amount: decimal.NewFromInt(20)}

	// Before the cliff any request fails, distinctly from a window error.
	err := bound.Validate(ctx, scopeAt(start.Add(29*day*time.Second)), request)
	assert.True(t, errors.Is(err, ErrCliffNotReached))
	assert.False(t, errors.Is(err, types.ErrWindow))

	// At day 31 exactly one cycle has completed: 20 releasable.
	day31 := scopeAt(start.Add(31 * day * time.Second))
	assert.NoError(t, bound.Validate(ctx, day31, request))

	// Drawing the full 20 leaves nothing releasable.
	committer := bound.(variant.Committer)
	assert.NoError(t, committer.Commit(ctx, day31, request))
	err = bound.Validate(ctx, scopeAt(start.Add(31*day*time.Second)), &Payload{Amount: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, types.ErrPayload))
}

func TestInitialAmountUnlocksAtCliff(t *testing.T) {
	ctx := context.Background()
	start := time.Unix(0, 0)
	bound := bind(t, &Params{
		Asset:          "USDC",
		Beneficiary:    "0xbob",
		Start:          start,
		CliffSeconds:   10 * day,
		CycleSeconds:   30 * day,
		PerCycleAmount: decimal.NewFromInt(5),
		InitialAmount:  decimal.NewFromInt(100),
	})

	// Right after the cliff only the initial amount is available.
	assert.NoError(t, bound.Validate(ctx, scopeAt(start.Add(11*day*time.Second)), &Payload{Amount: decimal.NewFromInt(100)}))
	err := bound.Validate(ctx, scopeAt(start.Add(11*day*time.Second)), &Payload{Amount: decimal.NewFromInt(101)})
	assert.True(t, errors.Is(err, types.ErrPayload))

	// After two full cycles two increments joined the pool.
	later := scopeAt(start.Add(61 * day * time.Second))
	assert.NoError(t, bound.Validate(ctx, later, &Payload{Amount: decimal.NewFromInt(110)}))
}

func TestTotalAmountCapsSchedule(t *testing.T) {
	ctx := context.Background()
	start := time.Unix(0, 0)
	bound := bind(t, &Params{
		Asset:          "USDC",
		Beneficiary:    "0xbob",
		Start:          start,
		CycleSeconds:   day,
		PerCycleAmount: decimal.NewFromInt(10),
		TotalAmount:    decimal.NewFromInt(25),
	})

	// 100 days in, the schedule is capped at 25.
	assert.NoError(t, bound.Validate(ctx, scopeAt(start.Add(100*day*time.Second)), &Payload{Amount: decimal.NewFromInt(25)}))
	err := bound.Validate(ctx, scopeAt(start.Add(100*day*time.Second)), &Payload{Amount: decimal.NewFromInt(26)})
	assert.True(t, errors.Is(err, types.ErrPayload))
}

func TestBatchCannotOverRelease(t *testing.T) {
	ctx := context.Background()
	start := time.Unix(0, 0)
	bound := bind(t, &Params{
		Asset:         "USDC",
		Beneficiary:   "0xbob",
		Start:         start,
		InitialAmount: decimal.NewFromInt(20),
		TotalAmount:   decimal.NewFromInt(20),
	})

	// Two releases validated against the same scope model one transaction
	// batch: the schedule only moves in Commit, so the second must count
	// what the first already admitted.
	scope := scopeAt(start.Add(day * time.Second))
	first := &Payload{Amount: decimal.NewFromInt(20)}
	assert.NoError(t, bound.Validate(ctx, scope, first))
	err := bound.Validate(ctx, scope, &Payload{Amount: decimal.NewFromInt(20)})
	assert.True(t, errors.Is(err, types.ErrPayload))
	assert.True(t, scope.Reserved.Equal(decimal.NewFromInt(20)))
}

func TestExecutionCallTargetsBeneficiary(t *testing.T) {
	ctx := context.Background()
	start := time.Unix(0, 0)
	bound := bind(t, &Params{
		Asset:          "USDC",
		Beneficiary:    "0xbob",
		Start:          start,
		CycleSeconds:   day,
		PerCycleAmount: decimal.NewFromInt(10),
	})
	calls, err := bound.ExecutionCalls(ctx, scopeAt(start.Add(2*day*time.Second)), &Payload{Amount: decimal.NewFromInt(10)})
	assert.NoError(t, err)
	assert.Len(t, calls, 1)
	assert.Equal(t, "0xbob", calls[0].Target)
}

func TestBindValidation(t *testing.T) {
	testCases := []struct {
		name   string
		params *Params
	}{
		{name: "missing asset", params: &Params{Beneficiary: "0xbob", Start: time.Unix(1, 0)}},
		{name: "missing beneficiary", params: &Params{Asset: "USDC", Start: time.Unix(1, 0)}},
		{name: "missing start", params: &Params{Asset: "USDC", Beneficiary: "0xbob"}},
		{name: "cycle without amount", params: &Params{Asset: "USDC", Beneficiary: "0xbob", Start: time.Unix(1, 0), CycleSeconds: day}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(tc.params)
			assert.NoError(t, err)
			_, err = New().Bind(context.Background(), &policy.Config{Kind: policy.KindVesting, Executor: "0xexec", Params: raw})
			assert.True(t, errors.Is(err, types.ErrConfiguration))
		})
	}
}
