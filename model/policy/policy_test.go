package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/adam-vault/adam-contract-core-sub000/model/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	count := uint64(5)
	testCases := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "minimal transfer policy",
			config: &Config{
				Kind:     KindTransfer,
				Executor: "0xexec",
			},
		},
		{
			name: "team executor only",
			config: &Config{
				Kind:           KindGeneric,
				ExecutorTeamID: "ops",
				UsageCount:     &count,
			},
		},
		{
			name:    "missing executor",
			config:  &Config{Kind: KindTransfer},
			wantErr: true,
		},
		{
			name: "minApproval exceeds approver count",
			config: &Config{
				Kind:        KindTransfer,
				Executor:    "0xexec",
				Approvers:   []string{"0xa", "0xb"},
				MinApproval: 3,
			},
			wantErr: true,
		},
		{
			name: "minApproval with team roster",
			config: &Config{
				Kind:           KindTransfer,
				Executor:       "0xexec",
				ApproverTeamID: "signers",
				MinApproval:    3,
			},
		},
		{
			name: "minApproval without approver source",
			config: &Config{
				Kind:        KindTransfer,
				Executor:    "0xexec",
				MinApproval: 1,
			},
			wantErr: true,
		},
		{
			name: "inverted window",
			config: &Config{
				Kind:      KindTransfer,
				Executor:  "0xexec",
				StartTime: time.Unix(2000, 0),
				EndTime:   time.Unix(1000, 0),
			},
			wantErr: true,
		},
		{
			name: "fixed ceiling without reference asset",
			config: &Config{
				Kind:     KindTransfer,
				Executor: "0xexec",
				Amount:   AmountCeiling{Mode: CeilingFixed, Fixed: decimal.NewFromInt(100)},
			},
			wantErr: true,
		},
		{
			name: "percent ceiling over 100%",
			config: &Config{
				Kind:           KindTransfer,
				Executor:       "0xexec",
				Amount:         AmountCeiling{Mode: CeilingPercent, Bps: 10001},
				ReferenceAsset: "USDC",
			},
			wantErr: true,
		},
		{
			name: "percent ceiling",
			config: &Config{
				Kind:           KindTransfer,
				Executor:       "0xexec",
				Amount:         AmountCeiling{Mode: CeilingPercent, Bps: 1000},
				ReferenceAsset: "USDC",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.wantErr {
				assert.True(t, errors.Is(err, types.ErrConfiguration), "expected configuration error, got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCeilingResolve(t *testing.T) {
	percent := AmountCeiling{Mode: CeilingPercent, Bps: 1000}
	assert.True(t, percent.Resolve(decimal.NewFromInt(1000)).Equal(decimal.NewFromInt(100)))
	assert.True(t, percent.Resolve(decimal.NewFromInt(2000)).Equal(decimal.NewFromInt(200)))

	fixed := AmountCeiling{Mode: CeilingFixed, Fixed: decimal.NewFromInt(75)}
	assert.True(t, fixed.Resolve(decimal.NewFromInt(99999)).Equal(decimal.NewFromInt(75)))
}

func TestConfigWindow(t *testing.T) {
	config := &Config{
		Kind:      KindTransfer,
		Executor:  "0xexec",
		StartTime: time.Unix(1000, 0),
		EndTime:   time.Unix(2000, 0),
	}
	assert.False(t, config.InWindow(time.Unix(999, 0)))
	assert.True(t, config.InWindow(time.Unix(1000, 0)))
	assert.True(t, config.InWindow(time.Unix(2000, 0)))
	assert.False(t, config.InWindow(time.Unix(2001, 0)))
	assert.True(t, errors.Is(config.WindowError(time.Unix(1, 0)), types.ErrWindow))
	assert.NoError(t, config.WindowError(time.Unix(1500, 0)))

	open := &Config{Kind: KindTransfer, Executor: "0xexec"}
	assert.True(t, open.InWindow(time.Unix(1<<40, 0)))
}

func TestAllowList(t *testing.T) {
	any := AllowList{Any: true}
	assert.True(t, any.Allows("anything"))

	listed := AllowList{Items: []string{"USDC", "weth"}}
	assert.True(t, listed.Allows("usdc"))
	assert.True(t, listed.Allows("WETH"))
	assert.False(t, listed.Allows("DAI"))

	var empty AllowList
	assert.False(t, empty.Allows("USDC"))
}
