package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/coopnet/intranet-api/internal"
	"github.com/coopnet/intranet-api/internal/admin"
	identityDatamodel "github.com/coopnet/intranet-api/internal/core/datamodel/identity"
)

// Repository persists users, roles, role bundles, and claims. It doubles as
// the claim store behind the claim syncer.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func uniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// --- claim store ---

func (r *Repository) UserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("roles").
		Select("roles.name").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Scan(&names).Error
	return names, err
}

func (r *Repository) RoleBundle(ctx context.Context, roleName string) ([]string, error) {
	var claims []string
	err := r.db.WithContext(ctx).
		Table("role_claims").
		Select("role_claims.claim_type").
		Joins("JOIN roles ON roles.id = role_claims.role_id").
		Where("roles.name = ?", roleName).
		Scan(&claims).Error
	return claims, err
}

func (r *Repository) AllBundleClaimTypes(ctx context.Context) ([]string, error) {
	var claims []string
	err := r.db.WithContext(ctx).
		Table("role_claims").
		Distinct("claim_type").
		Scan(&claims).Error
	return claims, err
}

func (r *Repository) UserClaims(ctx context.Context, userID int64) ([]string, error) {
	var claims []string
	err := r.db.WithContext(ctx).
		Table("user_claims").
		Select("claim_type").
		Where("user_id = ?", userID).
		Scan(&claims).Error
	return claims, err
}

func (r *Repository) AddUserClaim(ctx context.Context, userID int64, claimType string) error {
	return r.db.WithContext(ctx).Create(&identityDatamodel.UserClaim{
		UserID:     userID,
		ClaimType:  claimType,
		ClaimValue: "true",
	}).Error
}

func (r *Repository) RemoveUserClaim(ctx context.Context, userID int64, claimType string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND claim_type = ?", userID, claimType).
		Delete(&identityDatamodel.UserClaim{}).Error
}

// --- users ---

func (r *Repository) userView(ctx context.Context, dm *identityDatamodel.User) (*admin.User, error) {
	roles, err := r.UserRoleNames(ctx, dm.ID)
	if err != nil {
		return nil, err
	}
	claims, err := r.UserClaims(ctx, dm.ID)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []string{}
	}
	if claims == nil {
		claims = []string{}
	}
	return &admin.User{
		ID:          dm.ID,
		Email:       dm.Email,
		DisplayName: dm.DisplayName,
		JobTitle:    dm.JobTitle,
		IsActive:    dm.IsActive,
		Roles:       roles,
		Claims:      claims,
		CreatedAt:   dm.CreatedAt,
	}, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*admin.User, error) {
	var rows []*identityDatamodel.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]*admin.User, 0, len(rows))
	for _, row := range rows {
		u, err := r.userView(ctx, row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*admin.User, error) {
	var dm identityDatamodel.User
	if err := r.db.WithContext(ctx).First(&dm, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return nil, err
	}
	return r.userView(ctx, &dm)
}

func (r *Repository) CreateUser(ctx context.Context, email, displayName, jobTitle, passwordHash string) (int64, error) {
	dm := &identityDatamodel.User{
		Email:        email,
		DisplayName:  displayName,
		JobTitle:     jobTitle,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		if uniqueViolation(err) {
			return 0, internal.NewConflictError("email already registered", internal.ErrCodeDuplicateEmail)
		}
		return 0, err
	}
	return dm.ID, nil
}

func (r *Repository) SetUserRoles(ctx context.Context, userID int64, roleNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&identityDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		for _, name := range roleNames {
			var role identityDatamodel.Role
			if err := tx.First(&role, "name = ?", name).Error; err != nil {
				if notFound(err) {
					return internal.NewNotFoundError("role not found: "+name, internal.ErrCodeRoleNotFound)
				}
				return err
			}
			if err := tx.Create(&identityDatamodel.UserRole{UserID: userID, RoleID: role.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// --- roles ---

func (r *Repository) roleView(ctx context.Context, dm *identityDatamodel.Role) (*admin.Role, error) {
	var claims []string
	err := r.db.WithContext(ctx).
		Table("role_claims").
		Select("claim_type").
		Where("role_id = ?", dm.ID).
		Scan(&claims).Error
	if err != nil {
		return nil, err
	}
	if claims == nil {
		claims = []string{}
	}
	return &admin.Role{
		ID:      dm.ID,
		Name:    dm.Name,
		Tier:    dm.Tier,
		BuiltIn: dm.BuiltIn,
		Claims:  claims,
	}, nil
}

func (r *Repository) ListRoles(ctx context.Context) ([]*admin.Role, error) {
	var rows []*identityDatamodel.Role
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	roles := make([]*admin.Role, 0, len(rows))
	for _, row := range rows {
		role, err := r.roleView(ctx, row)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (r *Repository) GetRole(ctx context.Context, id int64) (*admin.Role, error) {
	var dm identityDatamodel.Role
	if err := r.db.WithContext(ctx).First(&dm, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
		}
		return nil, err
	}
	return r.roleView(ctx, &dm)
}

func (r *Repository) GetRoleByName(ctx context.Context, name string) (*admin.Role, error) {
	var dm identityDatamodel.Role
	if err := r.db.WithContext(ctx).First(&dm, "name = ?", name).Error; err != nil {
		if notFound(err) {
			return nil, internal.NewNotFoundError("role not found: "+name, internal.ErrCodeRoleNotFound)
		}
		return nil, err
	}
	return r.roleView(ctx, &dm)
}

func (r *Repository) CreateRole(ctx context.Context, role *admin.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dm := &identityDatamodel.Role{Name: role.Name, Tier: role.Tier}
		if err := tx.Create(dm).Error; err != nil {
			if uniqueViolation(err) {
				return internal.NewConflictError("role name already exists", internal.ErrCodeDuplicateRole)
			}
			return err
		}
		role.ID = dm.ID
		for _, claim := range role.Claims {
			if err := tx.Create(&identityDatamodel.RoleClaim{RoleID: dm.ID, ClaimType: claim}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) UpdateRole(ctx context.Context, role *admin.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&identityDatamodel.Role{}).
			Where("id = ? AND built_in = ?", role.ID, false).
			Updates(map[string]interface{}{"name": role.Name, "tier": role.Tier})
		if result.Error != nil {
			if uniqueViolation(result.Error) {
				return internal.NewConflictError("role name already exists", internal.ErrCodeDuplicateRole)
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
		}

		if err := tx.Where("role_id = ?", role.ID).Delete(&identityDatamodel.RoleClaim{}).Error; err != nil {
			return err
		}
		for _, claim := range role.Claims {
			if err := tx.Create(&identityDatamodel.RoleClaim{RoleID: role.ID, ClaimType: claim}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&identityDatamodel.RoleClaim{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&identityDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&identityDatamodel.Role{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
		}
		return nil
	})
}

// --- available claims ---

func (r *Repository) ListAvailableClaims(ctx context.Context) ([]*admin.AvailableClaim, error) {
	var rows []*identityDatamodel.AvailableClaim
	if err := r.db.WithContext(ctx).Order("claim_type ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	claims := make([]*admin.AvailableClaim, len(rows))
	for i, row := range rows {
		claims[i] = &admin.AvailableClaim{
			ID:          row.ID,
			ClaimType:   row.ClaimType,
			Description: row.Description,
		}
	}
	return claims, nil
}

func (r *Repository) CreateAvailableClaim(ctx context.Context, claim *admin.AvailableClaim) error {
	dm := &identityDatamodel.AvailableClaim{
		ClaimType:   claim.ClaimType,
		Description: claim.Description,
	}
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		if uniqueViolation(err) {
			return internal.NewConflictError("claim type already registered", internal.ErrCodeDuplicateClaim)
		}
		return err
	}
	claim.ID = dm.ID
	return nil
}

func (r *Repository) DeleteAvailableClaim(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&identityDatamodel.AvailableClaim{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.NewNotFoundError("claim not found", internal.ErrCodeClaimNotFound)
	}
	return nil
}
