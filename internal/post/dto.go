package post

import "errors"

const maxBodyLength = 4000

// CreatePostDTO carries a new feed or department post. Visibility is only
// honored on the generic feed; department posts ignore it.
type CreatePostDTO struct {
	Body       string  `json:"body"`
	MediaURL   *string `json:"media_url,omitempty"`
	Visibility string  `json:"visibility,omitempty"`
}

func (dto *CreatePostDTO) Validate() error {
	if dto.Body == "" {
		return errors.New("body is required")
	}
	if len(dto.Body) > maxBodyLength {
		return errors.New("body must be at most 4000 characters")
	}
	if dto.Visibility == "" {
		dto.Visibility = VisibilityOrganizationWide
	}
	if !ValidVisibility(dto.Visibility) {
		return errors.New("visibility must be one of organization_wide, administrative_center, branch")
	}
	return nil
}

type UpdatePostDTO struct {
	Body     string  `json:"body"`
	MediaURL *string `json:"media_url,omitempty"`
}

func (dto UpdatePostDTO) Validate() error {
	if dto.Body == "" {
		return errors.New("body is required")
	}
	if len(dto.Body) > maxBodyLength {
		return errors.New("body must be at most 4000 characters")
	}
	return nil
}

type ReactionDTO struct {
	ReactionType string `json:"reaction_type"`
}

func (dto ReactionDTO) Validate() error {
	if dto.ReactionType == "" {
		return errors.New("reaction_type is required")
	}
	if len(dto.ReactionType) > 32 {
		return errors.New("reaction_type must be at most 32 characters")
	}
	return nil
}

type CommentDTO struct {
	Body string `json:"body"`
}

func (dto CommentDTO) Validate() error {
	if dto.Body == "" {
		return errors.New("body is required")
	}
	if len(dto.Body) > 1000 {
		return errors.New("comment must be at most 1000 characters")
	}
	return nil
}

// PagedPosts is the wire shape of every paginated post listing.
type PagedPosts struct {
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	Posts    []*Post `json:"posts"`
}
