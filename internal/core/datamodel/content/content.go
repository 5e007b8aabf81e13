package content

import "time"

// Visibility values for feed posts.
const (
	VisibilityOrganizationWide     = "organization_wide"
	VisibilityAdministrativeCenter = "administrative_center"
	VisibilityBranch               = "branch"
)

// Post is a feed or department content item. Department is empty for the
// generic feed; department posts are implicitly organization-wide and keep
// the default visibility. AuthorName and AuthorTitle are rendering snapshots
// taken at creation time; authorization always goes through AuthorID.
type Post struct {
	ID          int64     `gorm:"primaryKey"`
	AuthorID    int64     `gorm:"column:author_id;index;not null"`
	AuthorName  string    `gorm:"column:author_name;not null"`
	AuthorTitle string    `gorm:"column:author_title"`
	Department  string    `gorm:"column:department;index;default:''"`
	Body        string    `gorm:"not null"`
	MediaURL    *string   `gorm:"column:media_url"`
	Visibility  string    `gorm:"not null;default:organization_wide"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Post) TableName() string { return "posts" }

// Reaction is one emoji-style reaction. The unique index enforces the
// one-reaction-per-type-per-user invariant at the storage layer so the
// toggle can be a plain delete-else-insert inside a transaction.
type Reaction struct {
	ID           int64     `gorm:"primaryKey"`
	PostID       int64     `gorm:"column:post_id;index:idx_reactions_post_author_type,unique;not null"`
	AuthorID     int64     `gorm:"column:author_id;index:idx_reactions_post_author_type,unique;not null"`
	ReactionType string    `gorm:"column:reaction_type;index:idx_reactions_post_author_type,unique;not null"`
	AuthorName   string    `gorm:"column:author_name;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Reaction) TableName() string { return "reactions" }

type Comment struct {
	ID         int64     `gorm:"primaryKey"`
	PostID     int64     `gorm:"column:post_id;index;not null"`
	AuthorID   int64     `gorm:"column:author_id;not null"`
	AuthorName string    `gorm:"column:author_name;not null"`
	Body       string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (Comment) TableName() string { return "comments" }
