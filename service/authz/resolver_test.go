package authz

import (
	"context"
	"testing"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	dmemory "github.com/adam-vault/adam-contract-core-sub000/service/directory/memory"
	"github.com/stretchr/testify/assert"
)

func TestResolver(t *testing.T) {
	ctx := context.Background()
	roster := dmemory.New()
	roster.AddMember("ops", "0xCarol")

	resolver := New(&policy.Config{
		Kind:           policy.KindTransfer,
		Executor:       "0xAlice",
		ExecutorTeamID: "ops",
		Approvers:      []string{"0xBob"},
		ApproverTeamID: "signers",
	}, roster)

	ok, err := resolver.IsExecutor(ctx, "0xalice")
	assert.NoError(t, err)
	assert.True(t, ok, "direct executor match is case-insensitive")

	ok, _ = resolver.IsExecutor(ctx, "0xcarol")
	assert.True(t, ok, "team member resolves as executor")

	ok, _ = resolver.IsExecutor(ctx, "0xBob")
	assert.False(t, ok)

	ok, _ = resolver.IsApprover(ctx, "0xBOB")
	assert.True(t, ok)

	ok, _ = resolver.IsApprover(ctx, "0xDave")
	assert.False(t, ok)

	// Roster edits take effect immediately, nothing is cached.
	roster.AddMember("signers", "0xDave")
	ok, _ = resolver.IsApprover(ctx, "0xDave")
	assert.True(t, ok)

	roster.RemoveMember("ops", "0xCarol")
	ok, _ = resolver.IsExecutor(ctx, "0xCarol")
	assert.False(t, ok)
}
