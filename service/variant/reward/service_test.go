package reward

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	omemory "github.com/adam-vault/adam-contract-core-sub000/service/oracle/memory"
	"github.com/adam-vault/adam-contract-core-sub000/service/variant"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newScope(config *policy.Config, remaining string) *variant.Scope {
	scope := &variant.Scope{
		Config: config,
		Oracle: omemory.New(),
		Caller: "0xOPS",
		Now:    time.Now(),
	}
	if remaining != "" {
		budget := decimal.RequireFromString(remaining)
		scope.RemainingBudget = func(ctx context.Context) (decimal.Decimal, bool, error) {
			return budget, false, nil
		}
	}
	return scope
}

func TestService_PartialPayout(t *testing.T) {
	ctx := context.Background()
	config := &policy.Config{
		ID:             "reward-1",
		Kind:           policy.KindReward,
		ReferenceAsset: "USD",
		Params:         json.RawMessage(`{"asset":"USD","referrerAmount":"50","refereeAmount":"30"}`),
	}
	instance, err := New().Bind(ctx, config)
	assert.Nil(t, err)

	testCases := []struct {
		description   string
		remaining     string
		expectCharge  string
		expectCalls   int
		expectErrKind types.Kind
	}{
		{description: "budget covers both", remaining: "100", expectCharge: "80", expectCalls: 2},
		{description: "unlimited budget", remaining: "", expectCharge: "80", expectCalls: 2},
		{description: "budget covers referrer only, referee skipped", remaining: "60", expectCharge: "50", expectCalls: 1},
		{description: "budget covers neither", remaining: "10", expectErrKind: types.KindUsageExceeded},
	}
	for _, testCase := range testCases {
		// decode per case: the payout decision sticks to the payload
		payload, err := instance.Decode(json.RawMessage(`{"referrer":"0xAAA","referee":"0xBBB"}`))
		assert.Nil(t, err, testCase.description)
		scope := newScope(config, testCase.remaining)
		err = instance.Validate(ctx, scope, payload)
		if testCase.expectErrKind != "" {
			assert.Equal(t, testCase.expectErrKind, types.KindOf(err), testCase.description)
			continue
		}
		assert.Nil(t, err, testCase.description)
		charge, err := instance.ChargeValue(ctx, scope, payload)
		assert.Nil(t, err, testCase.description)
		assert.True(t, charge.Equal(decimal.RequireFromString(testCase.expectCharge)), testCase.description)
		calls, err := instance.ExecutionCalls(ctx, scope, payload)
		assert.Nil(t, err, testCase.description)
		assert.Equal(t, testCase.expectCalls, len(calls), testCase.description)
	}
}

func TestService_RefereeClaimedOnce(t *testing.T) {
	ctx := context.Background()
	config := &policy.Config{
		ID:             "reward-2",
		Kind:           policy.KindReward,
		ReferenceAsset: "USD",
		Params:         json.RawMessage(`{"asset":"USD","referrerAmount":"50","refereeAmount":"30"}`),
	}
	instance, err := New().Bind(ctx, config)
	assert.Nil(t, err)
	payload, err := instance.Decode(json.RawMessage(`{"referrer":"0xAAA","referee":"0xBBB"}`))
	assert.Nil(t, err)

	scope := newScope(config, "1000")
	identities, err := instance.(variant.Claimer).ClaimedIdentities(ctx, scope, payload)
	assert.Nil(t, err)
	assert.Equal(t, []string{"0xBBB"}, identities)

	scope.HasClaimed = func(identity string) bool { return identity == "0xBBB" }
	err = instance.Validate(ctx, scope, payload)
	assert.Equal(t, types.KindClaim, types.KindOf(err))

	// referee skipped for budget reasons is not consumed
	payload, err = instance.Decode(json.RawMessage(`{"referrer":"0xAAA","referee":"0xBBB"}`))
	assert.Nil(t, err)
	tight := newScope(config, "60")
	identities, err = instance.(variant.Claimer).ClaimedIdentities(ctx, tight, payload)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(identities))
}

func TestService_DecisionSurvivesDebit(t *testing.T) {
	ctx := context.Background()
	config := &policy.Config{
		ID:             "reward-3",
		Kind:           policy.KindReward,
		ReferenceAsset: "USD",
		Params:         json.RawMessage(`{"asset":"USD","referrerAmount":"50","refereeAmount":"30"}`),
	}
	instance, err := New().Bind(ctx, config)
	assert.Nil(t, err)
	payload, err := instance.Decode(json.RawMessage(`{"referrer":"0xAAA","referee":"0xBBB"}`))
	assert.Nil(t, err)

	scope := newScope(config, "80")
	assert.Nil(t, instance.Validate(ctx, scope, payload))

	// once the payouts are debited the remaining budget drops; the verdict
	// made at validation time still stands
	drained := newScope(config, "0")
	identities, err := instance.(variant.Claimer).ClaimedIdentities(ctx, drained, payload)
	assert.Nil(t, err)
	assert.Equal(t, []string{"0xBBB"}, identities)
	charge, err := instance.ChargeValue(ctx, drained, payload)
	assert.Nil(t, err)
	assert.True(t, charge.Equal(decimal.RequireFromString("80")))
}

func TestService_PayloadValidation(t *testing.T) {
	ctx := context.Background()
	config := &policy.Config{
		Kind:           policy.KindReward,
		ReferenceAsset: "USD",
		Params:         json.RawMessage(`{"asset":"USD","referrerAmount":"50","refereeAmount":"30"}`),
	}
	instance, err := New().Bind(ctx, config)
	assert.Nil(t, err)
	testCases := []struct {
		description string
		payload     string
	}{
		{description: "missing referee", payload: `{"referrer":"0xAAA"}`},
		{description: "same beneficiary", payload: `{"referrer":"0xAAA","referee":"0xaaa"}`},
	}
	for _, testCase := range testCases {
		payload, err := instance.Decode(json.RawMessage(testCase.payload))
		assert.Nil(t, err, testCase.description)
		err = instance.Validate(ctx, newScope(config, "1000"), payload)
		assert.Equal(t, types.KindPayload, types.KindOf(err), testCase.description)
	}
}
