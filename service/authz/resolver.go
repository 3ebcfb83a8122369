// Package authz resolves whether a caller is an authorized executor or
// approver for a policy, directly or via team membership. Resolution happens
// on every call against the live directory; nothing is cached, so roster
// changes retroactively affect who may act on outstanding transactions.
package authz

import (
	"context"
	"strings"

	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/service/directory"
)

// Resolver answers authorization questions for a single policy configuration.
type Resolver interface {
	IsExecutor(ctx context.Context, caller string) (bool, error)
	IsApprover(ctx context.Context, caller string) (bool, error)
}

type resolver struct {
	config    *policy.Config
	directory directory.Directory
}

// New creates a resolver bound to config. The directory may be nil when the
// configuration uses no team roles.
func New(config *policy.Config, dir directory.Directory) Resolver {
	return &resolver{config: config, directory: dir}
}

func (r *resolver) IsExecutor(ctx context.Context, caller string) (bool, error) {
	if r.config.Executor != "" && strings.EqualFold(caller, r.config.Executor) {
		return true, nil
	}
	return r.isTeamMember(ctx, r.config.ExecutorTeamID, caller)
}

func (r *resolver) IsApprover(ctx context.Context, caller string) (bool, error) {
	for _, approver := range r.config.Approvers {
		if strings.EqualFold(caller, approver) {
			return true, nil
		}
	}
	return r.isTeamMember(ctx, r.config.ApproverTeamID, caller)
}

func (r *resolver) isTeamMember(ctx context.Context, teamID, caller string) (bool, error) {
	if teamID == "" || r.directory == nil {
		return false, nil
	}
	return r.directory.IsMember(ctx, teamID, caller)
}
