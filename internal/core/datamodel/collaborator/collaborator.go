package collaborator

import "time"

// Collaborator is the organizational profile, keyed by email and distinct
// from the login identity. SupervisorID is kept only while the user's roles
// include a subordinate-tier role.
type Collaborator struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	JobTitle     string    `gorm:"column:job_title"`
	UnitID       string    `gorm:"column:unit_id;index"`
	SupervisorID *int64    `gorm:"column:supervisor_id;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Collaborator) TableName() string { return "collaborators" }

// ActivityTag is a short label shown next to a collaborator in the
// organizational chart.
type ActivityTag struct {
	ID             int64  `gorm:"primaryKey"`
	CollaboratorID int64  `gorm:"column:collaborator_id;index;not null"`
	Tag            string `gorm:"not null"`
}

func (ActivityTag) TableName() string { return "collaborator_tags" }
