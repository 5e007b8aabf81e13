package admin

import (
	"strings"

	"github.com/coopnet/intranet-api/internal"
	"github.com/coopnet/intranet-api/internal/authz"
)

type CreateUserDTO struct {
	Email                string   `json:"email"`
	DisplayName          string   `json:"display_name"`
	JobTitle             string   `json:"job_title,omitempty"`
	Password             string   `json:"password"`
	PasswordConfirmation string   `json:"password_confirmation"`
	Roles                []string `json:"roles,omitempty"`
}

func (dto *CreateUserDTO) Validate() error {
	dto.Email = strings.TrimSpace(strings.ToLower(dto.Email))
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return internal.NewValidationError("a valid email is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.DisplayName) == "" {
		return internal.NewValidationError("display_name is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	if dto.Password != dto.PasswordConfirmation {
		return internal.NewValidationError("password and confirmation do not match", internal.ErrCodePasswordMismatch)
	}
	return nil
}

type UpdateUserRolesDTO struct {
	Roles []string `json:"roles"`
}

func (dto *UpdateUserRolesDTO) Validate() error {
	seen := make(map[string]struct{}, len(dto.Roles))
	cleaned := dto.Roles[:0]
	for _, r := range dto.Roles {
		r = strings.TrimSpace(r)
		if r == "" {
			return internal.NewValidationError("role names must not be empty", internal.ErrCodeEmptyRoleName)
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		cleaned = append(cleaned, r)
	}
	dto.Roles = cleaned
	return nil
}

type ClaimDTO struct {
	ClaimType string `json:"claim_type"`
}

func (dto *ClaimDTO) Validate() error {
	dto.ClaimType = strings.TrimSpace(dto.ClaimType)
	if dto.ClaimType == "" {
		return internal.NewValidationError("claim_type is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RoleDTO struct {
	Name   string   `json:"name"`
	Tier   string   `json:"tier,omitempty"`
	Claims []string `json:"claims,omitempty"`
}

func (dto *RoleDTO) Validate() error {
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		return internal.NewValidationError("role name must not be empty", internal.ErrCodeEmptyRoleName)
	}
	if dto.Tier == "" {
		dto.Tier = string(authz.TierNone)
	}
	if _, err := authz.ParseTier(dto.Tier); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	for i, c := range dto.Claims {
		dto.Claims[i] = strings.TrimSpace(c)
		if dto.Claims[i] == "" {
			return internal.NewValidationError("claim types must not be empty", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

type AvailableClaimDTO struct {
	ClaimType   string `json:"claim_type"`
	Description string `json:"description,omitempty"`
}

func (dto *AvailableClaimDTO) Validate() error {
	dto.ClaimType = strings.TrimSpace(dto.ClaimType)
	if dto.ClaimType == "" {
		return internal.NewValidationError("claim_type is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
