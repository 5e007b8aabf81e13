package post

import (
	"errors"
	"time"

	contentDatamodel "github.com/coopnet/intranet-api/internal/core/datamodel/content"
)

// Visibility scopes for generic feed posts. Department posts carry no
// visibility and are treated as organization-wide.
const (
	VisibilityOrganizationWide     = contentDatamodel.VisibilityOrganizationWide
	VisibilityAdministrativeCenter = contentDatamodel.VisibilityAdministrativeCenter
	VisibilityBranch               = contentDatamodel.VisibilityBranch
)

func ValidVisibility(v string) bool {
	switch v {
	case VisibilityOrganizationWide, VisibilityAdministrativeCenter, VisibilityBranch:
		return true
	}
	return false
}

type Post struct {
	ID          int64     `json:"id"`
	AuthorID    int64     `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	AuthorTitle string    `json:"author_title,omitempty"`
	Department  string    `json:"department,omitempty"`
	Body        string    `json:"body"`
	MediaURL    *string   `json:"media_url,omitempty"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Reaction struct {
	ID           int64     `json:"id"`
	PostID       int64     `json:"post_id"`
	AuthorID     int64     `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	ReactionType string    `json:"reaction_type"`
	CreatedAt    time.Time `json:"created_at"`
}

type Comment struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"post_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Domain errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrForbidden       = errors.New("operation not permitted")
	ErrNoFeedAccess    = errors.New("caller role tier grants no feed access")
)

func ToDataModel(p *Post) *contentDatamodel.Post {
	return &contentDatamodel.Post{
		ID:          p.ID,
		AuthorID:    p.AuthorID,
		AuthorName:  p.AuthorName,
		AuthorTitle: p.AuthorTitle,
		Department:  p.Department,
		Body:        p.Body,
		MediaURL:    p.MediaURL,
		Visibility:  p.Visibility,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(p *contentDatamodel.Post) *Post {
	return &Post{
		ID:          p.ID,
		AuthorID:    p.AuthorID,
		AuthorName:  p.AuthorName,
		AuthorTitle: p.AuthorTitle,
		Department:  p.Department,
		Body:        p.Body,
		MediaURL:    p.MediaURL,
		Visibility:  p.Visibility,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModelSlice(posts []*contentDatamodel.Post) []*Post {
	result := make([]*Post, len(posts))
	for i, p := range posts {
		result[i] = FromDataModel(p)
	}
	return result
}

func ReactionFromDataModel(r *contentDatamodel.Reaction) Reaction {
	return Reaction{
		ID:           r.ID,
		PostID:       r.PostID,
		AuthorID:     r.AuthorID,
		AuthorName:   r.AuthorName,
		ReactionType: r.ReactionType,
		CreatedAt:    r.CreatedAt,
	}
}

func CommentFromDataModel(c *contentDatamodel.Comment) Comment {
	return Comment{
		ID:         c.ID,
		PostID:     c.PostID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
}
