package authz

import (
	"context"
)

// ContentAction distinguishes the write operations the per-request check
// composes claims for.
type ContentAction string

const (
	ActionCreate ContentAction = "create"
	ActionUpdate ContentAction = "update"
	ActionDelete ContentAction = "delete"
)

// Checker is the single typed entry point for claim decisions. Handlers ask
// the checker instead of scanning claim strings themselves.
type Checker struct{}

func NewChecker() *Checker {
	return &Checker{}
}

// Has reports whether the principal holds (claimType, "true").
func (c *Checker) Has(ctx context.Context, p *Principal, claimType string) (bool, error) {
	return p.HasClaim(claimType), nil
}

// CanManageContent implements the OR-composition used by every content write:
// global override, the module's per-action claim, ownership via the stable
// author id, or supervising the author. Display names are never consulted.
func (c *Checker) CanManageContent(p *Principal, action ContentAction, claimPrefix string, authorID, authorSupervisorID int64) bool {
	if p.HasClaim(ClaimManageAll) {
		return true
	}

	var moduleClaim string
	switch action {
	case ActionCreate:
		moduleClaim = CreatePostClaim(claimPrefix)
	case ActionUpdate:
		moduleClaim = UpdatePostClaim(claimPrefix)
	case ActionDelete:
		moduleClaim = DeletePostClaim(claimPrefix)
	}
	if moduleClaim != "" && p.HasClaim(moduleClaim) {
		return true
	}

	// Creation has no target entity, so ownership and supervision only apply
	// to update/delete.
	if action == ActionCreate {
		return false
	}

	if authorID != 0 && p.UserID == authorID && p.HasClaim(ClaimManageOwnPosts) {
		return true
	}

	if authorSupervisorID != 0 && p.UserID == authorSupervisorID && p.HasClaim(ClaimManageSubordinatesPosts) {
		return true
	}

	return false
}
