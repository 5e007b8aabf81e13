package admin

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/coopnet/intranet-api/internal"
	"github.com/coopnet/intranet-api/internal/authz"
)

// Repository is the identity-store surface the admin panel works against.
// It embeds the claim-store contract so one implementation backs both the
// panel and the claim syncer.
type Repository interface {
	authz.ClaimStore

	ListUsers(ctx context.Context) ([]*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, email, displayName, jobTitle, passwordHash string) (int64, error)
	SetUserRoles(ctx context.Context, userID int64, roleNames []string) error

	ListRoles(ctx context.Context) ([]*Role, error)
	GetRole(ctx context.Context, id int64) (*Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	CreateRole(ctx context.Context, role *Role) error
	UpdateRole(ctx context.Context, role *Role) error
	DeleteRole(ctx context.Context, id int64) error

	ListAvailableClaims(ctx context.Context) ([]*AvailableClaim, error)
	CreateAvailableClaim(ctx context.Context, claim *AvailableClaim) error
	DeleteAvailableClaim(ctx context.Context, id int64) error
}

// Service handles user, role, and claim administration.
type Service struct {
	repo       Repository
	syncer     *authz.Syncer
	cache      *authz.ClaimCache
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, syncer *authz.Syncer, cache *authz.ClaimCache, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{repo: repo, syncer: syncer, cache: cache, bcryptCost: bcryptCost, logger: logger}
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser registers a login identity, assigns the requested roles, and
// seeds their claim bundles through a sync.
func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	for _, name := range dto.Roles {
		if _, err := s.repo.GetRoleByName(ctx, name); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	id, err := s.repo.CreateUser(ctx, dto.Email, dto.DisplayName, dto.JobTitle, string(hash))
	if err != nil {
		return nil, err
	}

	if len(dto.Roles) > 0 {
		if err := s.repo.SetUserRoles(ctx, id, dto.Roles); err != nil {
			return nil, err
		}
		if _, err := s.syncer.Sync(ctx, id); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "user created", "user_id", id, "email", dto.Email, "roles", dto.Roles)
	return s.repo.GetUser(ctx, id)
}

// UpdateUserRoles replaces the user's role assignments and reconciles their
// claims against the new bundles.
func (s *Service) UpdateUserRoles(ctx context.Context, userID int64, dto UpdateUserRolesDTO) (*SyncResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	for _, name := range dto.Roles {
		if _, err := s.repo.GetRoleByName(ctx, name); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SetUserRoles(ctx, userID, dto.Roles); err != nil {
		return nil, err
	}

	expected, err := s.syncer.Sync(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user roles updated", "user_id", userID, "roles", dto.Roles)
	return &SyncResult{UserID: userID, Expected: expected}, nil
}

// GrantClaim adds an ad hoc claim to the user. Granting a claim the user
// already holds is rejected rather than silently absorbed.
func (s *Service) GrantClaim(ctx context.Context, userID int64, dto ClaimDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return err
	}

	held, err := s.repo.UserClaims(ctx, userID)
	if err != nil {
		return err
	}
	for _, c := range held {
		if c == dto.ClaimType {
			return internal.NewConflictError("user already holds this claim", internal.ErrCodeDuplicateClaim)
		}
	}

	if err := s.repo.AddUserClaim(ctx, userID, dto.ClaimType); err != nil {
		return err
	}
	s.invalidate(ctx, userID)

	s.logger.InfoContext(ctx, "claim granted", "user_id", userID, "claim", dto.ClaimType)
	return nil
}

func (s *Service) RevokeClaim(ctx context.Context, userID int64, claimType string) error {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return err
	}

	held, err := s.repo.UserClaims(ctx, userID)
	if err != nil {
		return err
	}
	found := false
	for _, c := range held {
		if c == claimType {
			found = true
			break
		}
	}
	if !found {
		return internal.NewNotFoundError("user does not hold this claim", internal.ErrCodeClaimNotFound)
	}

	if err := s.repo.RemoveUserClaim(ctx, userID, claimType); err != nil {
		return err
	}
	s.invalidate(ctx, userID)

	s.logger.InfoContext(ctx, "claim revoked", "user_id", userID, "claim", claimType)
	return nil
}

// SyncUser reconciles the user's claims with their role bundles on demand.
func (s *Service) SyncUser(ctx context.Context, userID int64) (*SyncResult, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	expected, err := s.syncer.Sync(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SyncResult{UserID: userID, Expected: expected}, nil
}

func (s *Service) invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate claim cache", "error", err, "user_id", userID)
	}
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *Service) CreateRole(ctx context.Context, dto RoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, builtin := authz.BuiltinRole(dto.Name); builtin {
		return nil, internal.NewConflictError("role name is reserved", internal.ErrCodeDuplicateRole)
	}

	role := &Role{Name: dto.Name, Tier: dto.Tier, Claims: dto.Claims}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "role created", "role", role.Name, "tier", role.Tier)
	return role, nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, dto RoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.BuiltIn {
		return nil, internal.NewForbiddenError("built-in roles cannot be edited", internal.ErrCodeBuiltInRole)
	}

	role.Name = dto.Name
	role.Tier = dto.Tier
	role.Claims = dto.Claims
	if err := s.repo.UpdateRole(ctx, role); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "role updated", "role_id", id, "role", role.Name)
	return role, nil
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if role.BuiltIn {
		return internal.NewForbiddenError("built-in roles cannot be deleted", internal.ErrCodeBuiltInRole)
	}

	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "role deleted", "role_id", id, "role", role.Name)
	return nil
}

func (s *Service) ListAvailableClaims(ctx context.Context) ([]*AvailableClaim, error) {
	return s.repo.ListAvailableClaims(ctx)
}

func (s *Service) CreateAvailableClaim(ctx context.Context, dto AvailableClaimDTO) (*AvailableClaim, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claim := &AvailableClaim{ClaimType: dto.ClaimType, Description: dto.Description}
	if err := s.repo.CreateAvailableClaim(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

func (s *Service) DeleteAvailableClaim(ctx context.Context, id int64) error {
	return s.repo.DeleteAvailableClaim(ctx, id)
}
