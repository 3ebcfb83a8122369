package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/adam-vault/adam-contract-core-sub000/service/custodian"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func transferCall(t *testing.T, asset, to, amount string) *custodian.Call {
	call, err := custodian.EncodeTransfer(asset, to, decimal.RequireFromString(amount))
	assert.Nil(t, err)
	return call
}

func TestService_BatchSettlement(t *testing.T) {
	ctx := context.Background()
	service := New(WithBalance("USD", decimal.RequireFromString("100")))

	results, err := service.ExecuteInstructions(ctx, []*custodian.Call{
		transferCall(t, "USD", "0xAAA", "30"),
		transferCall(t, "USD", "0xBBB", "20"),
	})
	assert.Nil(t, err)
	assert.Equal(t, 2, len(results))

	balance, err := service.Balance(ctx, "USD")
	assert.Nil(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("50")))
	assert.Equal(t, 2, len(service.Calls()))
}

func TestService_RejectedCallRollsBackBatch(t *testing.T) {
	ctx := context.Background()
	service := New(WithBalance("USD", decimal.RequireFromString("30")))

	// the first transfer fits, the second overdraws; neither may apply
	_, err := service.ExecuteInstructions(ctx, []*custodian.Call{
		transferCall(t, "USD", "0xAAA", "20"),
		transferCall(t, "USD", "0xBBB", "20"),
	})
	assert.NotNil(t, err)

	balance, err := service.Balance(ctx, "USD")
	assert.Nil(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("30")))
	assert.Equal(t, 0, len(service.Calls()))
}

func TestService_FailureTargetAborts(t *testing.T) {
	ctx := context.Background()
	rejected := errors.New("target frozen")
	service := New(
		WithBalance("USD", decimal.RequireFromString("100")),
		WithFailure("0xBAD", rejected),
	)

	_, err := service.ExecuteInstructions(ctx, []*custodian.Call{
		transferCall(t, "USD", "0xAAA", "10"),
		transferCall(t, "USD", "0xBAD", "10"),
	})
	assert.True(t, errors.Is(err, rejected))

	balance, err := service.Balance(ctx, "USD")
	assert.Nil(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, 0, len(service.Calls()))
}
