package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	cmemory "github.com/adam-vault/adam-contract-core-sub000/service/custodian/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCountCeiling(t *testing.T) {
	two := uint64(2)
	accountant := New(&policy.Config{Kind: policy.KindTransfer, Executor: "0xe", UsageCount: &two}, nil)

	counter := &Counter{}
	assert.NoError(t, accountant.CanCount(counter))

	accountant.Debit(counter, decimal.NewFromInt(1))
	accountant.Debit(counter, decimal.NewFromInt(1))
	err := accountant.CanCount(counter)
	assert.True(t, errors.Is(err, types.ErrUsageExceeded))

	unlimited := New(&policy.Config{Kind: policy.KindTransfer, Executor: "0xe"}, nil)
	assert.NoError(t, unlimited.CanCount(&Counter{ExecutedCount: 1 << 20}))
}

func TestFixedCeiling(t *testing.T) {
	ctx := context.Background()
	accountant := New(&policy.Config{
		Kind:           policy.KindTransfer,
		Executor:       "0xe",
		Amount:         policy.AmountCeiling{Mode: policy.CeilingFixed, Fixed: decimal.NewFromInt(100)},
		ReferenceAsset: "USDC",
	}, nil)

	counter := &Counter{}
	assert.NoError(t, accountant.CanSpend(ctx, counter, decimal.NewFromInt(40)))
	accountant.Debit(counter, decimal.NewFromInt(40))

	err := accountant.CanSpend(ctx, counter, decimal.NewFromInt(70))
	assert.True(t, errors.Is(err, types.ErrUsageExceeded), "40+70 exceeds 100")

	assert.NoError(t, accountant.CanSpend(ctx, counter, decimal.NewFromInt(60)))

	remaining, bounded, err := accountant.Remaining(ctx, counter)
	assert.NoError(t, err)
	assert.True(t, bounded)
	assert.True(t, remaining.Equal(decimal.NewFromInt(60)))
}

func TestPercentCeilingTracksLiveBalance(t *testing.T) {
	ctx := context.Background()
	treasury := cmemory.New(cmemory.WithBalance("USDC", decimal.NewFromInt(1000)))
	accountant := New(&policy.Config{
		Kind:           policy.KindTransfer,
		Executor:       "0xe",
		Amount:         policy.AmountCeiling{Mode: policy.CeilingPercent, Bps: 1000},
		ReferenceAsset: "USDC",
	}, treasury)

	counter := &Counter{}
	// 10% of 1000 = 100, so 150 fails.
	err := accountant.CanSpend(ctx, counter, decimal.NewFromInt(150))
	assert.True(t, errors.Is(err, types.ErrUsageExceeded))

	// Balance growth raises the cap to 200 without any reconfiguration.
	treasury.SetBalance("USDC", decimal.NewFromInt(2000))
	assert.NoError(t, accountant.CanSpend(ctx, counter, decimal.NewFromInt(150)))
}
