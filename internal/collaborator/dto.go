package collaborator

import (
	"errors"
	"strings"
)

type CreateCollaboratorDTO struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	JobTitle     string `json:"job_title,omitempty"`
	UnitID       string `json:"unit_id,omitempty"`
	SupervisorID *int64 `json:"supervisor_id,omitempty"`
}

func (dto *CreateCollaboratorDTO) Validate() error {
	dto.Email = strings.TrimSpace(strings.ToLower(dto.Email))
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return errors.New("a valid email is required")
	}
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

type UpdateCollaboratorDTO struct {
	Name         string `json:"name"`
	JobTitle     string `json:"job_title,omitempty"`
	UnitID       string `json:"unit_id,omitempty"`
	SupervisorID *int64 `json:"supervisor_id,omitempty"`
}

func (dto UpdateCollaboratorDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

type TagsDTO struct {
	Tags []string `json:"tags"`
}

func (dto *TagsDTO) Validate() error {
	seen := make(map[string]struct{}, len(dto.Tags))
	cleaned := dto.Tags[:0]
	for _, t := range dto.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if len(t) > 64 {
			return errors.New("tags must be at most 64 characters")
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		cleaned = append(cleaned, t)
	}
	dto.Tags = cleaned
	return nil
}
