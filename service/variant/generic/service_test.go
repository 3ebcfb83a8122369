package generic

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

func TestService_PassThrough(t *testing.T) {
	ctx := context.Background()
	config := &policy.Config{
		ID:             "generic-1",
		Kind:           policy.KindGeneric,
		ReferenceAsset: "USD",
		Params:         json.RawMessage(`{}`),
	}
	instance, err := New().Bind(ctx, config)
	assert.Nil(t, err)
	scope := &variant.Scope{Config: config, Oracle: omemory.New(), Caller: "0xOPS", Now: time.Now()}

	payload, err := instance.Decode(json.RawMessage(`{"target":"0xDEF1","callData":{"op":"stake"},"value":"12.5"}`))
	assert.Nil(t, err)
	assert.Nil(t, instance.Validate(ctx, scope, payload))

	charge, err := instance.ChargeValue(ctx, scope, payload)
	assert.Nil(t, err)
	assert.True(t, charge.Equal(decimal.RequireFromString("12.5")))

	calls, err := instance.ExecutionCalls(ctx, scope, payload)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(calls))
	assert.Equal(t, "0xDEF1", calls[0].Target)
	assert.True(t, calls[0].Value.Equal(decimal.RequireFromString("12.5")))
}

func TestService_TargetAllowList(t *testing.T) {
	ctx := context.Background()
	config := &policy.Config{
		Kind:           policy.KindGeneric,
		ReferenceAsset: "USD",
		Params:         json.RawMessage(`{"targets":{"items":["0xDEF1"]}}`),
	}
	instance, err := New().Bind(ctx, config)
	assert.Nil(t, err)
	scope := &variant.Scope{Config: config, Oracle: omemory.New(), Caller: "0xOPS", Now: time.Now()}

	allowed, err := instance.Decode(json.RawMessage(`{"target":"0xdef1","value":"1"}`))
	assert.Nil(t, err)
	assert.Nil(t, instance.Validate(ctx, scope, allowed))

	denied, err := instance.Decode(json.RawMessage(`{"target":"0xEvil","value":"1"}`))
	assert.Nil(t, err)
	err = instance.Validate(ctx, scope, denied)
	assert.Equal(t, types.KindPayload, types.KindOf(err))

	negative, err := instance.Decode(json.RawMessage(`{"target":"0xDEF1","value":"-1"}`))
	assert.Nil(t, err)
	err = instance.Validate(ctx, scope, negative)
	assert.Equal(t, types.KindPayload, types.KindOf(err))
}
