package claim

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

func TestService_ClaimOnce(t *testing.T) {
	ctx := context.Background()
	config := &policy.Config{
		ID:             "claim-1",
		Kind:           policy.KindClaim,
		ReferenceAsset: "USD",
		Params:         json.RawMessage(`{"asset":"USD","amount":"25"}`),
	}
	proto := New()
	instance, err := proto.Bind(ctx, config)
	assert.Nil(t, err)

	claimed := map[string]bool{}
	scope := func(caller string) *variant.Scope {
		return &variant.Scope{
			Config:     config,
			Oracle:     omemory.New(),
			Caller:     caller,
			Now:        time.Now(),
			HasClaimed: func(identity string) bool { return claimed[identity] },
		}
	}

	payload, err := instance.Decode(json.RawMessage(`{}`))
	assert.Nil(t, err)

	// first claim by X passes validation and pays the fixed amount
	err = instance.Validate(ctx, scope("0xAAA"), payload)
	assert.Nil(t, err)
	charge, err := instance.ChargeValue(ctx, scope("0xAAA"), payload)
	assert.Nil(t, err)
	assert.True(t, charge.Equal(decimal.RequireFromString("25")))
	calls, err := instance.ExecutionCalls(ctx, scope("0xAAA"), payload)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(calls))

	identities, err := instance.(variant.Claimer).ClaimedIdentities(ctx, scope("0xAAA"), payload)
	assert.Nil(t, err)
	assert.Equal(t, []string{"0xAAA"}, identities)
	for _, identity := range identities {
		claimed[identity] = true
	}

	// second claim by X is rejected regardless of requested amount
	err = instance.Validate(ctx, scope("0xAAA"), payload)
	assert.True(t, errors.Is(err, ErrAlreadyClaimed))
	other, err := instance.Decode(json.RawMessage(`{"amount":"25"}`))
	assert.Nil(t, err)
	err = instance.Validate(ctx, scope("0xAAA"), other)
	assert.True(t, errors.Is(err, ErrAlreadyClaimed))

	// a different identity still claims
	err = instance.Validate(ctx, scope("0xBBB"), payload)
	assert.Nil(t, err)
}

func TestService_AmountMismatch(t *testing.T) {
	ctx := context.Background()
	config := &policy.Config{
		ID:             "claim-2",
		Kind:           policy.KindClaim,
		ReferenceAsset: "USD",
		Params:         json.RawMessage(`{"asset":"USD","amount":"25"}`),
	}
	instance, err := New().Bind(ctx, config)
	assert.Nil(t, err)
	payload, err := instance.Decode(json.RawMessage(`{"amount":"26"}`))
	assert.Nil(t, err)
	scope := &variant.Scope{Config: config, Oracle: omemory.New(), Caller: "0xAAA", Now: time.Now()}
	err = instance.Validate(ctx, scope, payload)
	assert.Equal(t, types.KindPayload, types.KindOf(err))
}

func TestPrototype_Bind(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		description string
		params      string
		expectErr   bool
	}{
		{description: "valid", params: `{"asset":"USD","amount":"1"}`},
		{description: "missing asset", params: `{"amount":"1"}`, expectErr: true},
		{description: "zero amount", params: `{"asset":"USD","amount":"0"}`, expectErr: true},
		{description: "unknown field", params: `{"asset":"USD","amount":"1","bogus":1}`, expectErr: true},
		{description: "unreachable voucher RSA key", params: `{"asset":"USD","amount":"1","voucherRsaKeyURL":"file:///nonexistent/voucher.pem"}`, expectErr: true},
	}
	for _, testCase := range testCases {
		_, err := New().Bind(ctx, &policy.Config{Kind: policy.KindClaim, Params: json.RawMessage(testCase.params)})
		if testCase.expectErr {
			assert.NotNil(t, err, testCase.description)
			continue
		}
		assert.Nil(t, err, testCase.description)
	}
}
