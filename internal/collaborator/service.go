package collaborator

import (
	"context"
	"log/slog"
	"sort"

	"github.com/coopnet/intranet-api/internal/authz"
)

// Repository defines the data access methods for collaborator profiles and
// activity tags.
type Repository interface {
	Create(ctx context.Context, c *Collaborator) error
	GetByID(ctx context.Context, id int64) (*Collaborator, error)
	GetByEmail(ctx context.Context, email string) (*Collaborator, error)
	Update(ctx context.Context, c *Collaborator) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Collaborator, error)

	ReplaceTags(ctx context.Context, collaboratorID int64, tags []string) error
	TagsByCollaborator(ctx context.Context) (map[int64][]string, error)

	// RoleNamesByEmail returns the role names of the login identity sharing
	// the collaborator's email, empty when no such identity exists.
	RoleNamesByEmail(ctx context.Context, email string) ([]string, error)
}

// Service handles collaborator profile and org-chart business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// supervisorAllowed reports whether the collaborator's roles permit a
// supervisor link. Only subordinate-tier roles report to someone; managers
// and admins have no supervisor in the chart.
func (s *Service) supervisorAllowed(ctx context.Context, email string) bool {
	names, err := s.repo.RoleNamesByEmail(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve roles for collaborator", "error", err, "email", email)
		return false
	}
	return authz.IsSubordinateTierRole(names)
}

func (s *Service) Create(ctx context.Context, dto CreateCollaboratorDTO) (*Collaborator, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := &Collaborator{
		Email:        dto.Email,
		Name:         dto.Name,
		JobTitle:     dto.JobTitle,
		UnitID:       dto.UnitID,
		SupervisorID: dto.SupervisorID,
	}

	if c.SupervisorID != nil {
		if !s.supervisorAllowed(ctx, c.Email) {
			s.logger.InfoContext(ctx, "dropping supervisor for non-subordinate collaborator", "email", c.Email)
			c.SupervisorID = nil
		} else if _, err := s.repo.GetByID(ctx, *c.SupervisorID); err != nil {
			return nil, ErrBadSupervisor
		}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "collaborator created", "collaborator_id", c.ID, "email", c.Email)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Collaborator, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateCollaboratorDTO) (*Collaborator, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Name = dto.Name
	c.JobTitle = dto.JobTitle
	c.UnitID = dto.UnitID
	c.SupervisorID = dto.SupervisorID

	if c.SupervisorID != nil {
		if *c.SupervisorID == c.ID {
			return nil, ErrBadSupervisor
		}
		if !s.supervisorAllowed(ctx, c.Email) {
			c.SupervisorID = nil
		} else if _, err := s.repo.GetByID(ctx, *c.SupervisorID); err != nil {
			return nil, ErrBadSupervisor
		}
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Collaborator, error) {
	collaborators, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, collaborators); err != nil {
		return nil, err
	}
	return collaborators, nil
}

func (s *Service) SetTags(ctx context.Context, id int64, dto TagsDTO) (*Collaborator, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceTags(ctx, id, dto.Tags); err != nil {
		return nil, err
	}
	c.Tags = dto.Tags
	return c, nil
}

func (s *Service) attachTags(ctx context.Context, collaborators []*Collaborator) error {
	tags, err := s.repo.TagsByCollaborator(ctx)
	if err != nil {
		return err
	}
	for _, c := range collaborators {
		c.Tags = tags[c.ID]
	}
	return nil
}

// OrgChart builds the reporting tree. Collaborators with no supervisor, or
// whose supervisor is missing, become roots; each node's reports are sorted
// by name.
func (s *Service) OrgChart(ctx context.Context) ([]*OrgNode, error) {
	collaborators, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, collaborators); err != nil {
		return nil, err
	}

	nodes := make(map[int64]*OrgNode, len(collaborators))
	for _, c := range collaborators {
		nodes[c.ID] = &OrgNode{Collaborator: *c}
	}

	var roots []*OrgNode
	for _, c := range collaborators {
		node := nodes[c.ID]
		if c.SupervisorID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.SupervisorID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Reports = append(parent.Reports, node)
	}

	var sortReports func(ns []*OrgNode)
	sortReports = func(ns []*OrgNode) {
		sort.Slice(ns, func(i, j int) bool { return ns[i].Name < ns[j].Name })
		for _, n := range ns {
			sortReports(n.Reports)
		}
	}
	sortReports(roots)

	return roots, nil
}
