package authz

import (
	"context"
	"errors"
)

// RoleTier is the broad visibility category a role confers. It is stored on
// the role itself instead of being inferred from the role name.
type RoleTier string

const (
	TierAdmin                RoleTier = "admin"
	TierAdministrativeCenter RoleTier = "administrative_center"
	TierBranch               RoleTier = "branch"
	TierNone                 RoleTier = "none"
)

func ParseTier(s string) (RoleTier, error) {
	switch RoleTier(s) {
	case TierAdmin, TierAdministrativeCenter, TierBranch, TierNone:
		return RoleTier(s), nil
	}
	return TierNone, errors.New("unknown role tier: " + s)
}

// Principal is the authenticated caller as seen by authorization code:
// identity, claim set, the strongest tier among their roles, and the
// organizational coordinates resolved from their collaborator profile.
type Principal struct {
	UserID      int64
	Email       string
	DisplayName string
	Claims      []string
	Tier        RoleTier
	UnitID      string
}

// HasClaim reports whether the principal holds the claim with value "true".
// Claim values are always the literal "true"; storage never persists other
// values, so presence is sufficient.
func (p *Principal) HasClaim(claimType string) bool {
	for _, c := range p.Claims {
		if c == claimType {
			return true
		}
	}
	return false
}

func (p *Principal) HasAnyClaim(claimTypes ...string) bool {
	for _, want := range claimTypes {
		if p.HasClaim(want) {
			return true
		}
	}
	return false
}

// StrongestTier picks the most privileged tier from a set of role tiers.
func StrongestTier(tiers []RoleTier) RoleTier {
	best := TierNone
	for _, t := range tiers {
		switch t {
		case TierAdmin:
			return TierAdmin
		case TierAdministrativeCenter:
			best = TierAdministrativeCenter
		case TierBranch:
			if best != TierAdministrativeCenter {
				best = TierBranch
			}
		}
	}
	return best
}

type ctxKey string

const principalKey ctxKey = "principal"

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}
