package authz_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coopnet/intranet-api/internal/authz"
)

var _ = Describe("PolicyRegistry", func() {
	var (
		registry *authz.PolicyRegistry
		logger   *slog.Logger
		okNext   http.Handler
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		registry = authz.NewPolicyRegistry(authz.NewChecker(), logger)
		okNext = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(mw func(http.Handler) http.Handler, principal *authz.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if principal != nil {
			req = req.WithContext(authz.ContextWithPrincipal(req.Context(), principal))
		}
		rec := httptest.NewRecorder()
		mw(okNext).ServeHTTP(rec, req)
		return rec
	}

	Describe("Policy", func() {
		Context("for any policy name, including previously-unseen strings", func() {
			names := []string{"CanManageAll", "CcCreatePost", "SomethingNobodyRegistered"}

			It("should allow a principal holding the matching claim", func() {
				for _, name := range names {
					principal := &authz.Principal{UserID: 1, Claims: []string{name}}
					rec := serve(registry.Policy(name), principal)
					Expect(rec.Code).To(Equal(http.StatusOK), "policy %s", name)
				}
			})

			It("should deny a principal without the matching claim", func() {
				for _, name := range names {
					principal := &authz.Principal{UserID: 1, Claims: []string{"SomeOtherClaim"}}
					rec := serve(registry.Policy(name), principal)
					Expect(rec.Code).To(Equal(http.StatusForbidden), "policy %s", name)
					Expect(rec.Body.String()).To(ContainSubstring("Forbidden: insufficient permissions"))
				}
			})
		})

		Context("when no principal is in context", func() {
			It("should respond unauthorized", func() {
				rec := serve(registry.Policy("CanManageAll"), nil)
				Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			})
		})
	})

	Describe("PolicyAnyOf", func() {
		It("should allow a principal holding any one of the claims", func() {
			mw := registry.PolicyAnyOf(authz.ClaimManageUsers, authz.ClaimManageAll)

			admin := &authz.Principal{UserID: 1, Claims: []string{authz.ClaimManageAll}}
			Expect(serve(mw, admin).Code).To(Equal(http.StatusOK))

			delegate := &authz.Principal{UserID: 2, Claims: []string{authz.ClaimManageUsers}}
			Expect(serve(mw, delegate).Code).To(Equal(http.StatusOK))
		})

		It("should deny a principal holding none of the claims", func() {
			mw := registry.PolicyAnyOf(authz.ClaimManageUsers, authz.ClaimManageAll)
			principal := &authz.Principal{UserID: 3, Claims: []string{authz.ClaimManageOwnPosts}}
			Expect(serve(mw, principal).Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("Validate", func() {
		It("should pass when every referenced policy names a known claim type", func() {
			registry.Policy(authz.ClaimManageAll)
			registry.Policy(authz.CreatePostClaim("Cc"))
			Expect(registry.Validate()).To(Succeed())
		})

		It("should fail on a misspelled policy name", func() {
			registry.Policy("CanMangeAll")
			err := registry.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("CanMangeAll"))
		})

		It("should accept admin-registered claim types", func() {
			registry.Policy("CanExportReports")
			Expect(registry.Validate()).NotTo(Succeed())

			registry.RegisterClaimTypes([]string{"CanExportReports"})
			Expect(registry.Validate()).To(Succeed())
		})
	})
})

var _ = Describe("Checker", func() {
	checker := authz.NewChecker()

	Describe("CanManageContent", func() {
		It("should always allow the global override", func() {
			p := &authz.Principal{UserID: 9, Claims: []string{authz.ClaimManageAll}}
			Expect(checker.CanManageContent(p, authz.ActionCreate, "Ne", 0, 0)).To(BeTrue())
			Expect(checker.CanManageContent(p, authz.ActionDelete, "Cc", 42, 0)).To(BeTrue())
		})

		It("should scope module claims to the department prefix", func() {
			p := &authz.Principal{UserID: 9, Claims: []string{authz.CreatePostClaim("Cc")}}
			Expect(checker.CanManageContent(p, authz.ActionCreate, "Cc", 0, 0)).To(BeTrue())
			Expect(checker.CanManageContent(p, authz.ActionCreate, "Ne", 0, 0)).To(BeFalse())
		})

		It("should allow the author with the own-posts claim on update and delete", func() {
			p := &authz.Principal{UserID: 7, Claims: []string{authz.ClaimManageOwnPosts}}
			Expect(checker.CanManageContent(p, authz.ActionUpdate, "Cc", 7, 0)).To(BeTrue())
			Expect(checker.CanManageContent(p, authz.ActionUpdate, "Cc", 8, 0)).To(BeFalse())
			Expect(checker.CanManageContent(p, authz.ActionCreate, "Cc", 7, 0)).To(BeFalse())
		})

		It("should allow the author's supervisor with the subordinates claim", func() {
			p := &authz.Principal{UserID: 5, Claims: []string{authz.ClaimManageSubordinatesPosts}}
			Expect(checker.CanManageContent(p, authz.ActionDelete, "", 8, 5)).To(BeTrue())
			Expect(checker.CanManageContent(p, authz.ActionDelete, "", 8, 6)).To(BeFalse())
		})

		It("should never consult display names or unset ids", func() {
			p := &authz.Principal{UserID: 0, DisplayName: "Admin", Claims: []string{authz.ClaimManageOwnPosts, authz.ClaimManageSubordinatesPosts}}
			// author id 0 means unknown, not "matches a zero-id principal"
			Expect(checker.CanManageContent(p, authz.ActionDelete, "", 0, 0)).To(BeFalse())
		})
	})
})
