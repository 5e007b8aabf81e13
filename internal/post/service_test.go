package post_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coopnet/intranet-api/internal/authz"
	"github.com/coopnet/intranet-api/internal/post"
)

func TestPostService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PostService Suite")
}

// Mock repository for testing
type mockPostRepository struct {
	posts       map[int64]*post.Post
	reactions   map[int64][]post.Reaction
	comments    map[int64]*post.Comment
	supervisors map[int64]int64
	lastFilter  post.FeedFilter
	nextID      int64
}

func newMockPostRepository() *mockPostRepository {
	return &mockPostRepository{
		posts:       make(map[int64]*post.Post),
		reactions:   make(map[int64][]post.Reaction),
		comments:    make(map[int64]*post.Comment),
		supervisors: make(map[int64]int64),
		nextID:      1,
	}
}

func (m *mockPostRepository) Create(_ context.Context, p *post.Post) error {
	p.ID = m.nextID
	m.nextID++
	m.posts[p.ID] = p
	return nil
}

func (m *mockPostRepository) GetByID(_ context.Context, id int64) (*post.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	return p, nil
}

func (m *mockPostRepository) Update(_ context.Context, p *post.Post) error {
	if _, ok := m.posts[p.ID]; !ok {
		return post.ErrPostNotFound
	}
	m.posts[p.ID] = p
	return nil
}

func (m *mockPostRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return post.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *mockPostRepository) FeedPage(_ context.Context, filter post.FeedFilter) ([]*post.Post, int64, error) {
	m.lastFilter = filter
	var result []*post.Post
	for _, p := range m.posts {
		if p.Department == "" {
			result = append(result, p)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockPostRepository) DepartmentPage(_ context.Context, department string, _, _ int) ([]*post.Post, int64, error) {
	var result []*post.Post
	for _, p := range m.posts {
		if p.Department == department {
			result = append(result, p)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockPostRepository) AuthorSupervisorID(_ context.Context, authorID int64) (int64, error) {
	return m.supervisors[authorID], nil
}

func (m *mockPostRepository) ToggleReaction(_ context.Context, postID, authorID int64, authorName, reactionType string) (bool, error) {
	reactions := m.reactions[postID]
	for i, r := range reactions {
		if r.AuthorID == authorID && r.ReactionType == reactionType {
			m.reactions[postID] = append(reactions[:i], reactions[i+1:]...)
			return false, nil
		}
	}
	m.reactions[postID] = append(reactions, post.Reaction{
		PostID: postID, AuthorID: authorID, AuthorName: authorName,
		ReactionType: reactionType, CreatedAt: time.Now(),
	})
	return true, nil
}

func (m *mockPostRepository) ListReactions(_ context.Context, postID int64) ([]post.Reaction, error) {
	return m.reactions[postID], nil
}

func (m *mockPostRepository) AddComment(_ context.Context, c *post.Comment) error {
	c.ID = m.nextID
	m.nextID++
	m.comments[c.ID] = c
	return nil
}

func (m *mockPostRepository) GetComment(_ context.Context, id int64) (*post.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, post.ErrCommentNotFound
	}
	return c, nil
}

func (m *mockPostRepository) DeleteComment(_ context.Context, id int64) error {
	if _, ok := m.comments[id]; !ok {
		return post.ErrCommentNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *mockPostRepository) ListComments(_ context.Context, postID int64) ([]post.Comment, error) {
	var result []post.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			result = append(result, *c)
		}
	}
	return result, nil
}

var _ = Describe("PostService", func() {
	var (
		repo    *mockPostRepository
		service *post.Service
		ctx     context.Context
	)

	adminCaller := &authz.Principal{UserID: 1, DisplayName: "Admin", Tier: authz.TierAdmin, Claims: []string{authz.ClaimManageAll}}
	caCaller := &authz.Principal{UserID: 2, DisplayName: "Helena", Tier: authz.TierAdministrativeCenter, UnitID: "CA-01", Claims: []string{authz.ClaimViewCA, authz.ClaimManageOwnPosts}}
	noTierCaller := &authz.Principal{UserID: 3, DisplayName: "Visitante", Tier: authz.TierNone}

	BeforeEach(func() {
		repo = newMockPostRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = post.NewService(repo, authz.NewChecker(), logger)
		ctx = context.Background()
	})

	Describe("Feed", func() {
		Context("when the caller has no role tier", func() {
			It("should refuse instead of returning an empty page", func() {
				_, err := service.Feed(ctx, noTierCaller, 1, 20)
				Expect(err).To(MatchError(post.ErrNoFeedAccess))
			})
		})

		Context("when the caller is admin-tier", func() {
			It("should lift the visibility predicate", func() {
				_, err := service.Feed(ctx, adminCaller, 1, 20)
				Expect(err).NotTo(HaveOccurred())
				Expect(repo.lastFilter.Admin).To(BeTrue())
			})
		})

		Context("when the caller is scoped", func() {
			It("should pass tier and unit to the repository", func() {
				_, err := service.Feed(ctx, caCaller, 1, 20)
				Expect(err).NotTo(HaveOccurred())
				Expect(repo.lastFilter.Admin).To(BeFalse())
				Expect(repo.lastFilter.Tier).To(Equal(authz.TierAdministrativeCenter))
				Expect(repo.lastFilter.UnitID).To(Equal("CA-01"))
			})
		})

		It("should clamp paging parameters", func() {
			_, err := service.Feed(ctx, adminCaller, -3, 5000)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Page).To(Equal(1))
			Expect(repo.lastFilter.PageSize).To(Equal(100))
		})
	})

	Describe("CreateFeedPost", func() {
		It("should snapshot the author's display name", func() {
			created, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "bom dia"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.AuthorID).To(Equal(caCaller.UserID))
			Expect(created.AuthorName).To(Equal("Helena"))
			Expect(created.Visibility).To(Equal(post.VisibilityOrganizationWide))
		})

		It("should reject callers without a tier", func() {
			_, err := service.CreateFeedPost(ctx, noTierCaller, post.CreatePostDTO{Body: "oi"})
			Expect(err).To(MatchError(post.ErrNoFeedAccess))
		})

		It("should reject an invalid visibility value", func() {
			_, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "oi", Visibility: "everyone"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("CreateDepartmentPost", func() {
		ciclista := &authz.Principal{UserID: 4, DisplayName: "Rafael", Tier: authz.TierAdministrativeCenter, Claims: []string{authz.CreatePostClaim("Cc")}}

		It("should allow a holder of the department's create claim", func() {
			created, err := service.CreateDepartmentPost(ctx, ciclista, "Cc", post.CreatePostDTO{Body: "novo fluxo"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Department).To(Equal("Cc"))
			Expect(created.Visibility).To(Equal(post.VisibilityOrganizationWide))
		})

		It("should refuse the same caller in another department", func() {
			_, err := service.CreateDepartmentPost(ctx, ciclista, "Ne", post.CreatePostDTO{Body: "novo fluxo"})
			Expect(err).To(MatchError(post.ErrForbidden))
		})

		It("should allow the global override everywhere", func() {
			_, err := service.CreateDepartmentPost(ctx, adminCaller, "Ne", post.CreatePostDTO{Body: "aviso"})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("UpdatePost", func() {
		It("should allow the author with the own-posts claim", func() {
			created, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "v1"})
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.UpdatePost(ctx, caCaller, created.ID, post.UpdatePostDTO{Body: "v2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Body).To(Equal("v2"))
		})

		It("should allow the author's supervisor with the subordinates claim", func() {
			created, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "v1"})
			Expect(err).NotTo(HaveOccurred())

			supervisor := &authz.Principal{UserID: 9, Tier: authz.TierAdministrativeCenter, Claims: []string{authz.ClaimManageSubordinatesPosts}}
			repo.supervisors[caCaller.UserID] = supervisor.UserID

			_, err = service.UpdatePost(ctx, supervisor, created.ID, post.UpdatePostDTO{Body: "v2"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should refuse an unrelated caller", func() {
			created, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "v1"})
			Expect(err).NotTo(HaveOccurred())

			stranger := &authz.Principal{UserID: 8, Tier: authz.TierBranch, Claims: []string{authz.ClaimManageOwnPosts}}
			_, err = service.UpdatePost(ctx, stranger, created.ID, post.UpdatePostDTO{Body: "v2"})
			Expect(err).To(MatchError(post.ErrForbidden))
		})
	})

	Describe("ToggleReaction", func() {
		It("should add on first call and remove on second", func() {
			created, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "post"})
			Expect(err).NotTo(HaveOccurred())

			reactions, err := service.ToggleReaction(ctx, adminCaller, created.ID, post.ReactionDTO{ReactionType: "like"})
			Expect(err).NotTo(HaveOccurred())
			Expect(reactions).To(HaveLen(1))

			reactions, err = service.ToggleReaction(ctx, adminCaller, created.ID, post.ReactionDTO{ReactionType: "like"})
			Expect(err).NotTo(HaveOccurred())
			Expect(reactions).To(BeEmpty())
		})

		It("should keep reactions of different types independent", func() {
			created, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "post"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ToggleReaction(ctx, adminCaller, created.ID, post.ReactionDTO{ReactionType: "like"})
			Expect(err).NotTo(HaveOccurred())
			reactions, err := service.ToggleReaction(ctx, adminCaller, created.ID, post.ReactionDTO{ReactionType: "celebrate"})
			Expect(err).NotTo(HaveOccurred())
			Expect(reactions).To(HaveLen(2))
		})

		It("should fail for a missing post", func() {
			_, err := service.ToggleReaction(ctx, adminCaller, 404, post.ReactionDTO{ReactionType: "like"})
			Expect(err).To(MatchError(post.ErrPostNotFound))
		})
	})

	Describe("DeleteComment", func() {
		It("should allow the comment author", func() {
			created, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "post"})
			Expect(err).NotTo(HaveOccurred())

			comment, err := service.AddComment(ctx, caCaller, created.ID, post.CommentDTO{Body: "meu comentário"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteComment(ctx, caCaller, comment.ID)).To(Succeed())
		})

		It("should allow the comment author even without any content claims", func() {
			created, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "post"})
			Expect(err).NotTo(HaveOccurred())

			commenter := &authz.Principal{UserID: 7, DisplayName: "Juliana", Tier: authz.TierBranch}
			comment, err := service.AddComment(ctx, commenter, created.ID, post.CommentDTO{Body: "concordo"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteComment(ctx, commenter, comment.ID)).To(Succeed())
		})

		It("should refuse an unrelated caller", func() {
			created, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "post"})
			Expect(err).NotTo(HaveOccurred())

			comment, err := service.AddComment(ctx, caCaller, created.ID, post.CommentDTO{Body: "meu comentário"})
			Expect(err).NotTo(HaveOccurred())

			stranger := &authz.Principal{UserID: 8, Tier: authz.TierBranch}
			Expect(service.DeleteComment(ctx, stranger, comment.ID)).To(MatchError(post.ErrForbidden))
		})

		It("should allow the comment author's supervisor with the subordinates claim", func() {
			created, err := service.CreateFeedPost(ctx, caCaller, post.CreatePostDTO{Body: "post"})
			Expect(err).NotTo(HaveOccurred())

			comment, err := service.AddComment(ctx, caCaller, created.ID, post.CommentDTO{Body: "meu comentário"})
			Expect(err).NotTo(HaveOccurred())

			supervisor := &authz.Principal{UserID: 9, Tier: authz.TierAdministrativeCenter, Claims: []string{authz.ClaimManageSubordinatesPosts}}
			repo.supervisors[caCaller.UserID] = supervisor.UserID

			Expect(service.DeleteComment(ctx, supervisor, comment.ID)).To(Succeed())
		})
	})
})
