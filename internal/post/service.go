package post

import (
	"context"
	"log/slog"
	"time"

	"github.com/coopnet/intranet-api/internal/authz"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// FeedFilter describes what the repository must return for one feed page.
// The repository applies the visibility predicate and the matching count in
// the same request.
type FeedFilter struct {
	// Admin lifts the visibility predicate entirely.
	Admin bool
	// Tier and UnitID drive the scoped clauses: administrative-center
	// callers additionally see administrative_center posts authored inside
	// their unit, branch callers the branch analog.
	Tier   authz.RoleTier
	UnitID string

	Page     int
	PageSize int
}

func (f FeedFilter) Offset() int { return (f.Page - 1) * f.PageSize }

// Repository defines the data access methods for posts, reactions, and
// comments.
type Repository interface {
	Create(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id int64) error
	FeedPage(ctx context.Context, filter FeedFilter) ([]*Post, int64, error)
	DepartmentPage(ctx context.Context, department string, page, pageSize int) ([]*Post, int64, error)

	// AuthorSupervisorID resolves the author's supervisor through the
	// author's collaborator profile and returns the supervisor's login
	// identity id, comparable with Principal.UserID; zero when there is none.
	AuthorSupervisorID(ctx context.Context, authorID int64) (int64, error)

	// ToggleReaction removes the (post, author, type) reaction when present,
	// else inserts it, atomically under the storage uniqueness constraint.
	// Returns true when the reaction exists after the call.
	ToggleReaction(ctx context.Context, postID, authorID int64, authorName, reactionType string) (bool, error)
	ListReactions(ctx context.Context, postID int64) ([]Reaction, error)

	AddComment(ctx context.Context, c *Comment) error
	GetComment(ctx context.Context, id int64) (*Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	ListComments(ctx context.Context, postID int64) ([]Comment, error)
}

// Service handles feed and department content business logic.
type Service struct {
	repo    Repository
	checker *authz.Checker
	logger  *slog.Logger
}

func NewService(repo Repository, checker *authz.Checker, logger *slog.Logger) *Service {
	return &Service{repo: repo, checker: checker, logger: logger}
}

func clampPaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// CreateFeedPost publishes to the generic feed. Callers outside every
// visibility tier cannot see the feed and may not post to it either.
func (s *Service) CreateFeedPost(ctx context.Context, caller *authz.Principal, dto CreatePostDTO) (*Post, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if caller.Tier == authz.TierNone {
		s.logger.WarnContext(ctx, "feed post denied: caller has no tier", "user_id", caller.UserID)
		return nil, ErrNoFeedAccess
	}
	return s.create(ctx, caller, "", dto)
}

// CreateDepartmentPost publishes into a department section. The department
// code doubles as the claim prefix, so CcCreatePost gates the Ciclo section
// and never the Negócios one.
func (s *Service) CreateDepartmentPost(ctx context.Context, caller *authz.Principal, department string, dto CreatePostDTO) (*Post, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if !s.checker.CanManageContent(caller, authz.ActionCreate, department, 0, 0) {
		s.logger.WarnContext(ctx, "department post denied", "user_id", caller.UserID, "department", department)
		return nil, ErrForbidden
	}
	dto.Visibility = VisibilityOrganizationWide
	return s.create(ctx, caller, department, dto)
}

func (s *Service) create(ctx context.Context, caller *authz.Principal, department string, dto CreatePostDTO) (*Post, error) {
	now := time.Now()
	p := &Post{
		AuthorID: caller.UserID,
		// Display name and title are denormalized once for rendering and
		// never re-synced; authorization ignores them.
		AuthorName: caller.DisplayName,
		Department: department,
		Body:       dto.Body,
		MediaURL:   dto.MediaURL,
		Visibility: dto.Visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "failed to create post", "error", err, "user_id", caller.UserID)
		return nil, err
	}

	s.logger.InfoContext(ctx, "post created", "post_id", p.ID, "user_id", caller.UserID, "department", department)
	return p, nil
}

// Feed returns one visibility-scoped page of the generic feed. Admin-tier
// callers see everything; administrative-center and branch tiers see
// organization-wide posts plus scoped posts from their own unit; anyone
// else is refused outright rather than shown an empty list.
func (s *Service) Feed(ctx context.Context, caller *authz.Principal, page, pageSize int) (*PagedPosts, error) {
	page, pageSize = clampPaging(page, pageSize)

	filter := FeedFilter{
		Tier:     caller.Tier,
		UnitID:   caller.UnitID,
		Page:     page,
		PageSize: pageSize,
	}
	switch caller.Tier {
	case authz.TierAdmin:
		filter.Admin = true
	case authz.TierAdministrativeCenter, authz.TierBranch:
		// scoped by the repository
	default:
		s.logger.WarnContext(ctx, "feed denied: caller has no tier", "user_id", caller.UserID)
		return nil, ErrNoFeedAccess
	}

	posts, total, err := s.repo.FeedPage(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load feed", "error", err, "user_id", caller.UserID)
		return nil, err
	}

	return &PagedPosts{Total: total, Page: page, PageSize: pageSize, Posts: posts}, nil
}

// DepartmentFeed pages a department section. Department posts are
// organization-wide, so no visibility predicate applies.
func (s *Service) DepartmentFeed(ctx context.Context, department string, page, pageSize int) (*PagedPosts, error) {
	page, pageSize = clampPaging(page, pageSize)

	posts, total, err := s.repo.DepartmentPage(ctx, department, page, pageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load department feed", "error", err, "department", department)
		return nil, err
	}

	return &PagedPosts{Total: total, Page: page, PageSize: pageSize, Posts: posts}, nil
}

func (s *Service) GetPost(ctx context.Context, id int64) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdatePost edits a post body/media. Permitted for the global manager, a
// holder of the department's update claim, the author, or the author's
// supervisor.
func (s *Service) UpdatePost(ctx context.Context, caller *authz.Principal, postID int64, dto UpdatePostDTO) (*Post, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeWrite(ctx, caller, authz.ActionUpdate, p); err != nil {
		return nil, err
	}

	p.Body = dto.Body
	p.MediaURL = dto.MediaURL
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "failed to update post", "error", err, "post_id", postID)
		return nil, err
	}

	s.logger.InfoContext(ctx, "post updated", "post_id", postID, "user_id", caller.UserID)
	return p, nil
}

func (s *Service) DeletePost(ctx context.Context, caller *authz.Principal, postID int64) error {
	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.authorizeWrite(ctx, caller, authz.ActionDelete, p); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete post", "error", err, "post_id", postID)
		return err
	}

	s.logger.InfoContext(ctx, "post deleted", "post_id", postID, "user_id", caller.UserID)
	return nil
}

func (s *Service) authorizeWrite(ctx context.Context, caller *authz.Principal, action authz.ContentAction, p *Post) error {
	supervisorID, err := s.repo.AuthorSupervisorID(ctx, p.AuthorID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve author supervisor", "error", err, "author_id", p.AuthorID)
		supervisorID = 0
	}

	if !s.checker.CanManageContent(caller, action, p.Department, p.AuthorID, supervisorID) {
		s.logger.WarnContext(ctx, "post write denied",
			"user_id", caller.UserID,
			"post_id", p.ID,
			"action", action)
		return ErrForbidden
	}
	return nil
}

// ToggleReaction adds the caller's reaction of the given type, or removes it
// when already present. Returns the post's reactions after the toggle.
func (s *Service) ToggleReaction(ctx context.Context, caller *authz.Principal, postID int64, dto ReactionDTO) ([]Reaction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	added, err := s.repo.ToggleReaction(ctx, postID, caller.UserID, caller.DisplayName, dto.ReactionType)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to toggle reaction", "error", err, "post_id", postID, "user_id", caller.UserID)
		return nil, err
	}

	s.logger.InfoContext(ctx, "reaction toggled",
		"post_id", postID,
		"user_id", caller.UserID,
		"reaction_type", dto.ReactionType,
		"added", added)

	return s.repo.ListReactions(ctx, postID)
}

func (s *Service) AddComment(ctx context.Context, caller *authz.Principal, postID int64, dto CommentDTO) (*Comment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	c := &Comment{
		PostID:     postID,
		AuthorID:   caller.UserID,
		AuthorName: caller.DisplayName,
		Body:       dto.Body,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.AddComment(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "failed to add comment", "error", err, "post_id", postID)
		return nil, err
	}
	return c, nil
}

func (s *Service) ListComments(ctx context.Context, postID int64) ([]Comment, error) {
	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, postID)
}

// DeleteComment removes a comment. The comment author may always delete
// their own comment; beyond that, the author's supervisor, a department
// delete-claim holder, and the global manager may delete.
func (s *Service) DeleteComment(ctx context.Context, caller *authz.Principal, commentID int64) error {
	c, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}

	if caller.UserID != c.AuthorID {
		p, err := s.repo.GetByID(ctx, c.PostID)
		if err != nil {
			return err
		}

		supervisorID, err := s.repo.AuthorSupervisorID(ctx, c.AuthorID)
		if err != nil {
			supervisorID = 0
		}

		if !s.checker.CanManageContent(caller, authz.ActionDelete, p.Department, c.AuthorID, supervisorID) {
			return ErrForbidden
		}
	}

	return s.repo.DeleteComment(ctx, commentID)
}
