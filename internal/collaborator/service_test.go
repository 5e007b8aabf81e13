package collaborator_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coopnet/intranet-api/internal/collaborator"
)

func TestCollaboratorService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CollaboratorService Suite")
}

// Mock repository for testing
type mockCollaboratorRepository struct {
	collaborators map[int64]*collaborator.Collaborator
	tags          map[int64][]string
	rolesByEmail  map[string][]string
	nextID        int64
}

func newMockCollaboratorRepository() *mockCollaboratorRepository {
	return &mockCollaboratorRepository{
		collaborators: make(map[int64]*collaborator.Collaborator),
		tags:          make(map[int64][]string),
		rolesByEmail:  make(map[string][]string),
		nextID:        1,
	}
}

func (m *mockCollaboratorRepository) Create(_ context.Context, c *collaborator.Collaborator) error {
	for _, existing := range m.collaborators {
		if existing.Email == c.Email {
			return collaborator.ErrDuplicateEmail
		}
	}
	c.ID = m.nextID
	m.nextID++
	clone := *c
	m.collaborators[c.ID] = &clone
	return nil
}

func (m *mockCollaboratorRepository) GetByID(_ context.Context, id int64) (*collaborator.Collaborator, error) {
	c, ok := m.collaborators[id]
	if !ok {
		return nil, collaborator.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockCollaboratorRepository) GetByEmail(_ context.Context, email string) (*collaborator.Collaborator, error) {
	for _, c := range m.collaborators {
		if c.Email == email {
			clone := *c
			return &clone, nil
		}
	}
	return nil, collaborator.ErrNotFound
}

func (m *mockCollaboratorRepository) Update(_ context.Context, c *collaborator.Collaborator) error {
	if _, ok := m.collaborators[c.ID]; !ok {
		return collaborator.ErrNotFound
	}
	clone := *c
	m.collaborators[c.ID] = &clone
	return nil
}

func (m *mockCollaboratorRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.collaborators[id]; !ok {
		return collaborator.ErrNotFound
	}
	delete(m.collaborators, id)
	delete(m.tags, id)
	return nil
}

func (m *mockCollaboratorRepository) List(_ context.Context) ([]*collaborator.Collaborator, error) {
	out := make([]*collaborator.Collaborator, 0, len(m.collaborators))
	for id := int64(1); id < m.nextID; id++ {
		if c, ok := m.collaborators[id]; ok {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockCollaboratorRepository) ReplaceTags(_ context.Context, collaboratorID int64, tags []string) error {
	m.tags[collaboratorID] = append([]string(nil), tags...)
	return nil
}

func (m *mockCollaboratorRepository) TagsByCollaborator(_ context.Context) (map[int64][]string, error) {
	return m.tags, nil
}

func (m *mockCollaboratorRepository) RoleNamesByEmail(_ context.Context, email string) ([]string, error) {
	return m.rolesByEmail[email], nil
}

var _ = Describe("CollaboratorService", func() {
	var (
		repo    *mockCollaboratorRepository
		service *collaborator.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockCollaboratorRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = collaborator.NewService(repo, logger)
		ctx = context.Background()
	})

	seed := func(email, name, roleName string) *collaborator.Collaborator {
		if roleName != "" {
			repo.rolesByEmail[email] = []string{roleName}
		}
		c, err := service.Create(ctx, collaborator.CreateCollaboratorDTO{Email: email, Name: name})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	Describe("Create", func() {
		It("should normalize the email", func() {
			c, err := service.Create(ctx, collaborator.CreateCollaboratorDTO{
				Email: "  Rafael.Lima@Coopnet.COM.BR ",
				Name:  "Rafael Lima",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Email).To(Equal("rafael.lima@coopnet.com.br"))
		})

		It("should reject an invalid email", func() {
			_, err := service.Create(ctx, collaborator.CreateCollaboratorDTO{Email: "not-an-email", Name: "X"})
			Expect(err).To(HaveOccurred())
		})

		It("should keep the supervisor for a subordinate-tier collaborator", func() {
			boss := seed("helena@coopnet.com.br", "Helena Prado", "Gerente CA")
			repo.rolesByEmail["rafael@coopnet.com.br"] = []string{"Colaborador CA"}

			c, err := service.Create(ctx, collaborator.CreateCollaboratorDTO{
				Email:        "rafael@coopnet.com.br",
				Name:         "Rafael Lima",
				SupervisorID: &boss.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SupervisorID).NotTo(BeNil())
			Expect(*c.SupervisorID).To(Equal(boss.ID))
		})

		It("should silently drop the supervisor for a manager", func() {
			boss := seed("admin@coopnet.com.br", "Administrador", "Administrador")
			repo.rolesByEmail["helena@coopnet.com.br"] = []string{"Gerente CA"}

			c, err := service.Create(ctx, collaborator.CreateCollaboratorDTO{
				Email:        "helena@coopnet.com.br",
				Name:         "Helena Prado",
				SupervisorID: &boss.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SupervisorID).To(BeNil())
		})

		It("should drop the supervisor when no login identity shares the email", func() {
			boss := seed("helena@coopnet.com.br", "Helena Prado", "Gerente CA")

			c, err := service.Create(ctx, collaborator.CreateCollaboratorDTO{
				Email:        "externo@coopnet.com.br",
				Name:         "Sem Login",
				SupervisorID: &boss.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SupervisorID).To(BeNil())
		})

		It("should reject a supervisor that does not exist", func() {
			repo.rolesByEmail["rafael@coopnet.com.br"] = []string{"Colaborador CA"}
			missing := int64(999)

			_, err := service.Create(ctx, collaborator.CreateCollaboratorDTO{
				Email:        "rafael@coopnet.com.br",
				Name:         "Rafael Lima",
				SupervisorID: &missing,
			})
			Expect(err).To(MatchError(collaborator.ErrBadSupervisor))
		})
	})

	Describe("Update", func() {
		It("should reject self-supervision", func() {
			c := seed("rafael@coopnet.com.br", "Rafael Lima", "Colaborador CA")

			_, err := service.Update(ctx, c.ID, collaborator.UpdateCollaboratorDTO{
				Name:         c.Name,
				SupervisorID: &c.ID,
			})
			Expect(err).To(MatchError(collaborator.ErrBadSupervisor))
		})

		It("should drop the supervisor when the collaborator's role is not subordinate-tier", func() {
			boss := seed("admin@coopnet.com.br", "Administrador", "Administrador")
			c := seed("helena@coopnet.com.br", "Helena Prado", "Gerente CA")

			updated, err := service.Update(ctx, c.ID, collaborator.UpdateCollaboratorDTO{
				Name:         "Helena Prado",
				SupervisorID: &boss.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.SupervisorID).To(BeNil())
		})
	})

	Describe("SetTags", func() {
		It("should trim, dedupe and store activity tags", func() {
			c := seed("rafael@coopnet.com.br", "Rafael Lima", "Colaborador CA")

			updated, err := service.SetTags(ctx, c.ID, collaborator.TagsDTO{
				Tags: []string{" férias ", "férias", "", "treinamento"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Tags).To(Equal([]string{"férias", "treinamento"}))
		})

		It("should fail for an unknown collaborator", func() {
			_, err := service.SetTags(ctx, 999, collaborator.TagsDTO{Tags: []string{"férias"}})
			Expect(err).To(MatchError(collaborator.ErrNotFound))
		})
	})

	Describe("OrgChart", func() {
		link := func(c *collaborator.Collaborator, supervisorID int64) {
			_, err := service.Update(ctx, c.ID, collaborator.UpdateCollaboratorDTO{
				Name:         c.Name,
				SupervisorID: &supervisorID,
			})
			Expect(err).NotTo(HaveOccurred())
		}

		It("should nest reports under their supervisor, sorted by name", func() {
			boss := seed("helena@coopnet.com.br", "Helena Prado", "Gerente CA")
			zeca := seed("zeca@coopnet.com.br", "Zeca Tavares", "Colaborador CA")
			ana := seed("ana@coopnet.com.br", "Ana Borges", "Colaborador CA")
			link(zeca, boss.ID)
			link(ana, boss.ID)

			roots, err := service.OrgChart(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roots).To(HaveLen(1))
			Expect(roots[0].Name).To(Equal("Helena Prado"))
			Expect(roots[0].Reports).To(HaveLen(2))
			Expect(roots[0].Reports[0].Name).To(Equal("Ana Borges"))
			Expect(roots[0].Reports[1].Name).To(Equal("Zeca Tavares"))
		})

		It("should promote collaborators with a missing supervisor to roots", func() {
			orphan := seed("ana@coopnet.com.br", "Ana Borges", "Colaborador CA")
			missing := int64(999)
			repo.collaborators[orphan.ID].SupervisorID = &missing

			roots, err := service.OrgChart(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roots).To(HaveLen(1))
			Expect(roots[0].Name).To(Equal("Ana Borges"))
		})

		It("should attach activity tags to chart nodes", func() {
			c := seed("rafael@coopnet.com.br", "Rafael Lima", "Colaborador CA")
			_, err := service.SetTags(ctx, c.ID, collaborator.TagsDTO{Tags: []string{"home office"}})
			Expect(err).NotTo(HaveOccurred())

			roots, err := service.OrgChart(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roots[0].Tags).To(Equal([]string{"home office"}))
		})
	})
})
