// Package directory defines the membership directory consumed for
// team-based executor and approver resolution. Membership is resolved on
// every call, never cached, so roster edits take effect immediately on
// in-flight transactions.
package directory

import "context"

// Directory resolves team membership.
type Directory interface {
	IsMember(ctx context.Context, teamID, address string) (bool, error)
}
