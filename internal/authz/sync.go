package authz

import (
	"context"
	"log/slog"
	"sort"
)

// ClaimStore is the identity-store surface Sync reconciles against.
type ClaimStore interface {
	UserRoleNames(ctx context.Context, userID int64) ([]string, error)
	RoleBundle(ctx context.Context, roleName string) ([]string, error)
	// AllBundleClaimTypes returns the union of claim types across every
	// role's default bundle, built-in and custom alike. Claim types outside
	// this set are ad hoc grants and Sync never touches them.
	AllBundleClaimTypes(ctx context.Context) ([]string, error)
	UserClaims(ctx context.Context, userID int64) ([]string, error)
	AddUserClaim(ctx context.Context, userID int64, claimType string) error
	RemoveUserClaim(ctx context.Context, userID int64, claimType string) error
}

// Syncer recomputes a user's role-sourced claims from their assigned roles.
type Syncer struct {
	store  ClaimStore
	cache  *ClaimCache
	logger *slog.Logger
}

func NewSyncer(store ClaimStore, cache *ClaimCache, logger *slog.Logger) *Syncer {
	return &Syncer{store: store, cache: cache, logger: logger}
}

// Sync brings the user's claim set in line with the union of their roles'
// default bundles. Held claims whose type belongs to some role bundle but
// not to the recomputed expected set are removed; expected claims not held
// are added; ad hoc claims pass through untouched. Individual add/remove
// failures are logged and skipped rather than rolled back, so the store can
// end up partially synced; callers see the outcome by comparing the returned
// expected list against a later read.
func (s *Syncer) Sync(ctx context.Context, userID int64) ([]string, error) {
	roleNames, err := s.store.UserRoleNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	expected := make(map[string]struct{})
	for _, role := range roleNames {
		bundle, err := s.store.RoleBundle(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, claim := range bundle {
			expected[claim] = struct{}{}
		}
	}

	managedList, err := s.store.AllBundleClaimTypes(ctx)
	if err != nil {
		return nil, err
	}
	managed := make(map[string]struct{}, len(managedList))
	for _, claim := range managedList {
		managed[claim] = struct{}{}
	}

	held, err := s.store.UserClaims(ctx, userID)
	if err != nil {
		return nil, err
	}
	heldSet := make(map[string]struct{}, len(held))
	for _, claim := range held {
		heldSet[claim] = struct{}{}
	}

	for _, claim := range held {
		_, isManaged := managed[claim]
		_, isExpected := expected[claim]
		if isManaged && !isExpected {
			if err := s.store.RemoveUserClaim(ctx, userID, claim); err != nil {
				s.logger.WarnContext(ctx, "sync: failed to remove claim", "error", err, "user_id", userID, "claim", claim)
			}
		}
	}

	for claim := range expected {
		if _, ok := heldSet[claim]; !ok {
			if err := s.store.AddUserClaim(ctx, userID, claim); err != nil {
				s.logger.WarnContext(ctx, "sync: failed to add claim", "error", err, "user_id", userID, "claim", claim)
			}
		}
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "sync: failed to invalidate claim cache", "error", err, "user_id", userID)
	}

	result := make([]string, 0, len(expected))
	for claim := range expected {
		result = append(result, claim)
	}
	sort.Strings(result)
	return result, nil
}
