package collaborator

import (
	"errors"
	"time"

	collabDatamodel "github.com/coopnet/intranet-api/internal/core/datamodel/collaborator"
)

type Collaborator struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	JobTitle     string    `json:"job_title,omitempty"`
	UnitID       string    `json:"unit_id,omitempty"`
	SupervisorID *int64    `json:"supervisor_id,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OrgNode is one collaborator in the organizational chart, with the people
// reporting to them nested below.
type OrgNode struct {
	Collaborator
	Reports []*OrgNode `json:"reports,omitempty"`
}

var (
	ErrNotFound       = errors.New("collaborator not found")
	ErrDuplicateEmail = errors.New("collaborator email already registered")
	ErrBadSupervisor  = errors.New("supervisor does not exist")
)

func FromDataModel(c *collabDatamodel.Collaborator) *Collaborator {
	return &Collaborator{
		ID:           c.ID,
		Email:        c.Email,
		Name:         c.Name,
		JobTitle:     c.JobTitle,
		UnitID:       c.UnitID,
		SupervisorID: c.SupervisorID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func ToDataModel(c *Collaborator) *collabDatamodel.Collaborator {
	return &collabDatamodel.Collaborator{
		ID:           c.ID,
		Email:        c.Email,
		Name:         c.Name,
		JobTitle:     c.JobTitle,
		UnitID:       c.UnitID,
		SupervisorID: c.SupervisorID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
