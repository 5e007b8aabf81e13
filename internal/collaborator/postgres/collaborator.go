package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/coopnet/intranet-api/internal/collaborator"
	collabDatamodel "github.com/coopnet/intranet-api/internal/core/datamodel/collaborator"
)

// Repository persists collaborator profiles and activity tags.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *collaborator.Collaborator) error {
	dm := collaborator.ToDataModel(c)
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		if isUniqueViolation(err) {
			return collaborator.ErrDuplicateEmail
		}
		return err
	}
	c.ID = dm.ID
	c.CreatedAt = dm.CreatedAt
	c.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*collaborator.Collaborator, error) {
	var dm collabDatamodel.Collaborator
	err := r.db.WithContext(ctx).First(&dm, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, collaborator.ErrNotFound
		}
		return nil, err
	}
	return collaborator.FromDataModel(&dm), nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*collaborator.Collaborator, error) {
	var dm collabDatamodel.Collaborator
	err := r.db.WithContext(ctx).First(&dm, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, collaborator.ErrNotFound
		}
		return nil, err
	}
	return collaborator.FromDataModel(&dm), nil
}

func (r *Repository) Update(ctx context.Context, c *collaborator.Collaborator) error {
	result := r.db.WithContext(ctx).Model(&collabDatamodel.Collaborator{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":          c.Name,
			"job_title":     c.JobTitle,
			"unit_id":       c.UnitID,
			"supervisor_id": c.SupervisorID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return collaborator.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collaborator_id = ?", id).Delete(&collabDatamodel.ActivityTag{}).Error; err != nil {
			return err
		}
		// Direct reports lose their supervisor link rather than cascading.
		if err := tx.Model(&collabDatamodel.Collaborator{}).
			Where("supervisor_id = ?", id).
			Update("supervisor_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&collabDatamodel.Collaborator{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return collaborator.ErrNotFound
		}
		return nil
	})
}

func (r *Repository) List(ctx context.Context) ([]*collaborator.Collaborator, error) {
	var rows []*collabDatamodel.Collaborator
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]*collaborator.Collaborator, len(rows))
	for i, row := range rows {
		result[i] = collaborator.FromDataModel(row)
	}
	return result, nil
}

func (r *Repository) ReplaceTags(ctx context.Context, collaboratorID int64, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collaborator_id = ?", collaboratorID).
			Delete(&collabDatamodel.ActivityTag{}).Error; err != nil {
			return err
		}
		for _, t := range tags {
			if err := tx.Create(&collabDatamodel.ActivityTag{
				CollaboratorID: collaboratorID,
				Tag:            t,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) TagsByCollaborator(ctx context.Context) (map[int64][]string, error) {
	var rows []collabDatamodel.ActivityTag
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	tags := make(map[int64][]string)
	for _, row := range rows {
		tags[row.CollaboratorID] = append(tags[row.CollaboratorID], row.Tag)
	}
	return tags, nil
}

func (r *Repository) RoleNamesByEmail(ctx context.Context, email string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("roles").
		Select("roles.name").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Joins("JOIN users ON users.id = user_roles.user_id").
		Where("users.email = ?", email).
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
