package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coopnet/intranet-api/internal/auth"
	"github.com/coopnet/intranet-api/internal/authz"
	"gorm.io/gorm"
)

// Repository resolves credentials and principals. The claim set is the hot
// part of every request, so it sits behind an optional Redis cache.
type Repository struct {
	db    *gorm.DB
	cache *authz.ClaimCache
}

func NewRepository(db *gorm.DB, cache *authz.ClaimCache) *Repository {
	return &Repository{db: db, cache: cache}
}

var _ auth.RepositoryAPI = (*Repository)(nil)

func (r *Repository) GetCredentials(ctx context.Context, email string) (int64, string, error) {
	var userID int64
	var passwordHash string

	row := r.db.WithContext(ctx).
		Raw(`SELECT id, password_hash FROM users WHERE email = ? AND is_active = true`, email).
		Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return 0, "", fmt.Errorf("user not found")
		}
		return 0, "", err
	}
	return userID, passwordHash, nil
}

func (r *Repository) GetPrincipal(ctx context.Context, userID int64) (*authz.Principal, error) {
	principal := &authz.Principal{UserID: userID}

	row := r.db.WithContext(ctx).
		Raw(`SELECT email, display_name FROM users WHERE id = ? AND is_active = true`, userID).
		Row()
	if err := row.Scan(&principal.Email, &principal.DisplayName); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	claims, err := r.userClaims(ctx, userID)
	if err != nil {
		return nil, err
	}
	principal.Claims = claims

	tiers, err := r.userRoleTiers(ctx, userID)
	if err != nil {
		return nil, err
	}
	principal.Tier = authz.StrongestTier(tiers)

	// Organizational coordinates come from the collaborator profile, which
	// may not exist yet for freshly created accounts.
	row = r.db.WithContext(ctx).
		Raw(`SELECT unit_id FROM collaborators WHERE email = ?`, principal.Email).
		Row()
	if err := row.Scan(&principal.UnitID); err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	return principal, nil
}

func (r *Repository) userClaims(ctx context.Context, userID int64) ([]string, error) {
	if cached, ok, err := r.cache.Get(ctx, userID); err == nil && ok {
		return cached, nil
	}

	rows, err := r.db.WithContext(ctx).
		Raw(`SELECT claim_type FROM user_claims WHERE user_id = ? AND claim_value = 'true'`, userID).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []string
	for rows.Next() {
		var claimType string
		if err := rows.Scan(&claimType); err != nil {
			return nil, err
		}
		claims = append(claims, claimType)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, userID, claims)
	return claims, nil
}

func (r *Repository) userRoleTiers(ctx context.Context, userID int64) ([]authz.RoleTier, error) {
	rows, err := r.db.WithContext(ctx).
		Raw(`SELECT r.tier FROM roles r JOIN user_roles ur ON r.id = ur.role_id WHERE ur.user_id = ?`, userID).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []authz.RoleTier
	for rows.Next() {
		var tier string
		if err := rows.Scan(&tier); err != nil {
			return nil, err
		}
		parsed, err := authz.ParseTier(tier)
		if err != nil {
			// Unknown tiers in data degrade to none rather than failing auth.
			parsed = authz.TierNone
		}
		tiers = append(tiers, parsed)
	}
	return tiers, rows.Err()
}
