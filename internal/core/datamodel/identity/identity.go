package identity

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	DisplayName  string    `gorm:"column:display_name;not null"`
	JobTitle     string    `gorm:"column:job_title"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string { return "users" }

// Role is a named claim bundle with an explicit visibility tier. Built-in
// roles mirror the fixed in-code table; custom roles carry admin-entered
// bundles.
type Role struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Tier      string    `gorm:"not null;default:none"`
	BuiltIn   bool      `gorm:"column:built_in;default:false"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Role) TableName() string { return "roles" }

// RoleClaim is one entry of a role's default claim bundle.
type RoleClaim struct {
	ID        int64  `gorm:"primaryKey"`
	RoleID    int64  `gorm:"column:role_id;index;not null"`
	ClaimType string `gorm:"column:claim_type;not null"`
}

func (RoleClaim) TableName() string { return "role_claims" }

type UserRole struct {
	UserID int64 `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	RoleID int64 `gorm:"column:role_id;primaryKey;autoIncrement:false"`
}

func (UserRole) TableName() string { return "user_roles" }

// UserClaim is a claim actually held by a user. The value is always the
// literal "true"; the column exists to mirror the wire shape.
type UserClaim struct {
	ID         int64  `gorm:"primaryKey"`
	UserID     int64  `gorm:"column:user_id;index:idx_user_claims_user_type,unique;not null"`
	ClaimType  string `gorm:"column:claim_type;index:idx_user_claims_user_type,unique;not null"`
	ClaimValue string `gorm:"column:claim_value;default:true"`
}

func (UserClaim) TableName() string { return "user_claims" }

// AvailableClaim is the admin-curated registry of claim types offered in the
// UI. Advisory metadata only; authorization accepts any claim type.
type AvailableClaim struct {
	ID          int64     `gorm:"primaryKey"`
	ClaimType   string    `gorm:"column:claim_type;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (AvailableClaim) TableName() string { return "available_claims" }
