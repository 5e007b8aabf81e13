package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/coopnet/intranet-api/internal/authz"
	contentDatamodel "github.com/coopnet/intranet-api/internal/core/datamodel/content"
	"github.com/coopnet/intranet-api/internal/post"
)

// Repository persists posts, reactions, and comments.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, p *post.Post) error {
	dm := post.ToDataModel(p)
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		return err
	}
	p.ID = dm.ID
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*post.Post, error) {
	var dm contentDatamodel.Post
	err := r.db.WithContext(ctx).First(&dm, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, post.ErrPostNotFound
		}
		return nil, err
	}
	return post.FromDataModel(&dm), nil
}

func (r *Repository) Update(ctx context.Context, p *post.Post) error {
	dm := post.ToDataModel(p)
	result := r.db.WithContext(ctx).Model(&contentDatamodel.Post{}).
		Where("id = ?", dm.ID).
		Updates(map[string]interface{}{
			"body":       dm.Body,
			"media_url":  dm.MediaURL,
			"updated_at": dm.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return post.ErrPostNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&contentDatamodel.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&contentDatamodel.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&contentDatamodel.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return post.ErrPostNotFound
		}
		return nil
	})
}

// scopedVisibility maps a caller tier to the post visibility it unlocks in
// addition to organization_wide.
func scopedVisibility(tier authz.RoleTier) string {
	switch tier {
	case authz.TierAdministrativeCenter:
		return contentDatamodel.VisibilityAdministrativeCenter
	case authz.TierBranch:
		return contentDatamodel.VisibilityBranch
	}
	return ""
}

// FeedPage returns one page of the generic feed plus the total matching
// count. Scoped posts are matched against the author's collaborator unit, so
// the predicate survives author display-name changes.
func (r *Repository) FeedPage(ctx context.Context, filter post.FeedFilter) ([]*post.Post, int64, error) {
	base := r.db.WithContext(ctx).Model(&contentDatamodel.Post{}).
		Where("posts.department = ''")

	if !filter.Admin {
		scoped := scopedVisibility(filter.Tier)
		base = base.
			Joins("JOIN users ON users.id = posts.author_id").
			Joins("LEFT JOIN collaborators ON collaborators.email = users.email").
			Where("posts.visibility = ? OR (posts.visibility = ? AND collaborators.unit_id = ?)",
				contentDatamodel.VisibilityOrganizationWide, scoped, filter.UnitID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*contentDatamodel.Post
	err := base.
		Select("posts.*").
		Order("posts.id DESC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return post.FromDataModelSlice(rows), total, nil
}

func (r *Repository) DepartmentPage(ctx context.Context, department string, page, pageSize int) ([]*post.Post, int64, error) {
	base := r.db.WithContext(ctx).Model(&contentDatamodel.Post{}).
		Where("department = ?", department)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*contentDatamodel.Post
	err := base.
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return post.FromDataModelSlice(rows), total, nil
}

// AuthorSupervisorID resolves the author's supervisor to the supervisor's
// login identity. collaborators.supervisor_id points at a collaborator row,
// so the chain runs author user -> author collaborator -> supervisor
// collaborator -> supervisor user; the result is comparable with
// Principal.UserID. Zero when the author has no supervisor or the supervisor
// has no login.
func (r *Repository) AuthorSupervisorID(ctx context.Context, authorID int64) (int64, error) {
	var supervisorUserID *int64
	err := r.db.WithContext(ctx).
		Table("collaborators AS author").
		Select("supervisor_user.id").
		Joins("JOIN users AS author_user ON author_user.email = author.email").
		Joins("JOIN collaborators AS supervisor ON supervisor.id = author.supervisor_id").
		Joins("JOIN users AS supervisor_user ON supervisor_user.email = supervisor.email").
		Where("author_user.id = ?", authorID).
		Scan(&supervisorUserID).Error
	if err != nil {
		return 0, err
	}
	if supervisorUserID == nil {
		return 0, nil
	}
	return *supervisorUserID, nil
}

// ToggleReaction flips the (post, author, type) reaction inside one
// transaction. The unique index on those three columns keeps concurrent
// toggles from double-inserting.
func (r *Repository) ToggleReaction(ctx context.Context, postID, authorID int64, authorName, reactionType string) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("post_id = ? AND author_id = ? AND reaction_type = ?", postID, authorID, reactionType).
			Delete(&contentDatamodel.Reaction{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			added = false
			return nil
		}

		added = true
		return tx.Create(&contentDatamodel.Reaction{
			PostID:       postID,
			AuthorID:     authorID,
			AuthorName:   authorName,
			ReactionType: reactionType,
		}).Error
	})
	return added, err
}

func (r *Repository) ListReactions(ctx context.Context, postID int64) ([]post.Reaction, error) {
	var rows []*contentDatamodel.Reaction
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	reactions := make([]post.Reaction, len(rows))
	for i, row := range rows {
		reactions[i] = post.ReactionFromDataModel(row)
	}
	return reactions, nil
}

func (r *Repository) AddComment(ctx context.Context, c *post.Comment) error {
	dm := &contentDatamodel.Comment{
		PostID:     c.PostID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
	}
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		return err
	}
	c.ID = dm.ID
	c.CreatedAt = dm.CreatedAt
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id int64) (*post.Comment, error) {
	var dm contentDatamodel.Comment
	err := r.db.WithContext(ctx).First(&dm, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, post.ErrCommentNotFound
		}
		return nil, err
	}
	c := post.CommentFromDataModel(&dm)
	return &c, nil
}

func (r *Repository) DeleteComment(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&contentDatamodel.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return post.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) ListComments(ctx context.Context, postID int64) ([]post.Comment, error) {
	var rows []*contentDatamodel.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	comments := make([]post.Comment, len(rows))
	for i, row := range rows {
		comments[i] = post.CommentFromDataModel(row)
	}
	return comments, nil
}
