package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	identityGuide "github.com/coopnet/intranet-api/internal/core/datamodel/guide"
	"github.com/coopnet/intranet-api/internal/guide"
)

// Repository persists guide buttons and their table documents.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func buttonFromDataModel(b *identityGuide.Button) *guide.Button {
	return &guide.Button{
		ID:        b.ID,
		Label:     b.Label,
		Position:  b.Position,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (r *Repository) ListButtons(ctx context.Context) ([]*guide.Button, error) {
	var rows []*identityGuide.Button
	err := r.db.WithContext(ctx).
		Order("position ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	buttons := make([]*guide.Button, len(rows))
	for i, row := range rows {
		buttons[i] = buttonFromDataModel(row)
	}
	return buttons, nil
}

func (r *Repository) GetButton(ctx context.Context, id int64) (*guide.Button, error) {
	var dm identityGuide.Button
	err := r.db.WithContext(ctx).First(&dm, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, guide.ErrButtonNotFound
		}
		return nil, err
	}
	return buttonFromDataModel(&dm), nil
}

func (r *Repository) CreateButton(ctx context.Context, b *guide.Button) error {
	dm := &identityGuide.Button{Label: b.Label, Position: b.Position}
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		return err
	}
	b.ID = dm.ID
	b.CreatedAt = dm.CreatedAt
	b.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *Repository) UpdateButton(ctx context.Context, b *guide.Button) error {
	result := r.db.WithContext(ctx).Model(&identityGuide.Button{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"label":      b.Label,
			"position":   b.Position,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return guide.ErrButtonNotFound
	}
	return nil
}

func (r *Repository) DeleteButton(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("button_id = ?", id).Delete(&identityGuide.Table{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&identityGuide.Button{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return guide.ErrButtonNotFound
		}
		return nil
	})
}

func (r *Repository) ReorderButtons(ctx context.Context, orderedIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, id := range orderedIDs {
			result := tx.Model(&identityGuide.Button{}).
				Where("id = ?", id).
				Update("position", position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return guide.ErrButtonNotFound
			}
		}
		return nil
	})
}

func (r *Repository) GetTable(ctx context.Context, buttonID int64) (*guide.Table, error) {
	var dm identityGuide.Table
	err := r.db.WithContext(ctx).First(&dm, "button_id = ?", buttonID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, guide.ErrTableNotFound
		}
		return nil, err
	}
	return &guide.Table{
		ButtonID:  dm.ButtonID,
		Payload:   []byte(dm.Payload),
		UpdatedAt: dm.UpdatedAt,
	}, nil
}

func (r *Repository) UpsertTable(ctx context.Context, t *guide.Table) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&identityGuide.Table{}).
		Where("button_id = ?", t.ButtonID).
		Updates(map[string]interface{}{
			"payload":    string(t.Payload),
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if err := r.db.WithContext(ctx).Create(&identityGuide.Table{
			ButtonID:  t.ButtonID,
			Payload:   string(t.Payload),
			UpdatedAt: now,
		}).Error; err != nil {
			return err
		}
	}
	t.UpdatedAt = now
	return nil
}
