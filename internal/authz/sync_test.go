package authz_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coopnet/intranet-api/internal/authz"
)

// Mock claim store for testing
type mockClaimStore struct {
	userRoles   map[int64][]string
	roleBundles map[string][]string
	userClaims  map[int64][]string
	addError    error
	removeError error
}

func newMockClaimStore() *mockClaimStore {
	return &mockClaimStore{
		userRoles:   make(map[int64][]string),
		roleBundles: make(map[string][]string),
		userClaims:  make(map[int64][]string),
	}
}

func (m *mockClaimStore) UserRoleNames(_ context.Context, userID int64) ([]string, error) {
	return m.userRoles[userID], nil
}

func (m *mockClaimStore) RoleBundle(_ context.Context, roleName string) ([]string, error) {
	return m.roleBundles[roleName], nil
}

func (m *mockClaimStore) AllBundleClaimTypes(_ context.Context) ([]string, error) {
	set := make(map[string]struct{})
	for _, bundle := range m.roleBundles {
		for _, claim := range bundle {
			set[claim] = struct{}{}
		}
	}
	all := make([]string, 0, len(set))
	for claim := range set {
		all = append(all, claim)
	}
	return all, nil
}

func (m *mockClaimStore) UserClaims(_ context.Context, userID int64) ([]string, error) {
	return append([]string(nil), m.userClaims[userID]...), nil
}

func (m *mockClaimStore) AddUserClaim(_ context.Context, userID int64, claimType string) error {
	if m.addError != nil {
		return m.addError
	}
	m.userClaims[userID] = append(m.userClaims[userID], claimType)
	return nil
}

func (m *mockClaimStore) RemoveUserClaim(_ context.Context, userID int64, claimType string) error {
	if m.removeError != nil {
		return m.removeError
	}
	claims := m.userClaims[userID]
	for i, c := range claims {
		if c == claimType {
			m.userClaims[userID] = append(claims[:i], claims[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ = Describe("Syncer", func() {
	var (
		store  *mockClaimStore
		syncer *authz.Syncer
		ctx    context.Context
	)

	const userID = int64(10)

	BeforeEach(func() {
		store = newMockClaimStore()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		syncer = authz.NewSyncer(store, authz.NewClaimCache(nil, "test"), logger)
		ctx = context.Background()

		store.roleBundles["Gerente CA"] = []string{authz.ClaimViewCA, authz.ClaimManageSubordinatesPosts, authz.ClaimManageOwnPosts}
		store.roleBundles["Colaborador UA"] = []string{authz.ClaimViewUA, authz.ClaimManageOwnPosts}
	})

	Context("when the user gains a role", func() {
		It("should add exactly the role's bundle", func() {
			store.userRoles[userID] = []string{"Gerente CA"}

			expected, err := syncer.Sync(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(expected).To(ConsistOf(authz.ClaimViewCA, authz.ClaimManageSubordinatesPosts, authz.ClaimManageOwnPosts))

			held, _ := store.UserClaims(ctx, userID)
			Expect(held).To(ConsistOf(expected))
		})
	})

	Context("when the user switches roles", func() {
		It("should remove stale bundle claims and add the new bundle", func() {
			store.userRoles[userID] = []string{"Colaborador UA"}
			store.userClaims[userID] = []string{authz.ClaimViewCA, authz.ClaimManageSubordinatesPosts, authz.ClaimManageOwnPosts}

			expected, err := syncer.Sync(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(expected).To(ConsistOf(authz.ClaimViewUA, authz.ClaimManageOwnPosts))

			held, _ := store.UserClaims(ctx, userID)
			Expect(held).To(ConsistOf(authz.ClaimViewUA, authz.ClaimManageOwnPosts))
		})
	})

	Context("when the user holds ad hoc claims outside every bundle", func() {
		It("should leave them untouched", func() {
			store.userRoles[userID] = []string{"Colaborador UA"}
			store.userClaims[userID] = []string{"CanExportReports"}

			_, err := syncer.Sync(ctx, userID)
			Expect(err).NotTo(HaveOccurred())

			held, _ := store.UserClaims(ctx, userID)
			Expect(held).To(ContainElement("CanExportReports"))
		})
	})

	Context("when called twice without role changes", func() {
		It("should be idempotent", func() {
			store.userRoles[userID] = []string{"Gerente CA", "Colaborador UA"}

			first, err := syncer.Sync(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			afterFirst, _ := store.UserClaims(ctx, userID)

			second, err := syncer.Sync(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			afterSecond, _ := store.UserClaims(ctx, userID)

			Expect(second).To(Equal(first))
			sort.Strings(afterFirst)
			sort.Strings(afterSecond)
			Expect(afterSecond).To(Equal(afterFirst))
		})
	})

	Context("when an individual add fails", func() {
		It("should continue instead of rolling back", func() {
			store.userRoles[userID] = []string{"Colaborador UA"}
			store.userClaims[userID] = []string{authz.ClaimViewCA}
			store.addError = errors.New("constraint violation")

			expected, err := syncer.Sync(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(expected).To(ConsistOf(authz.ClaimViewUA, authz.ClaimManageOwnPosts))

			// the stale bundle claim was still removed
			held, _ := store.UserClaims(ctx, userID)
			Expect(held).NotTo(ContainElement(authz.ClaimViewCA))
		})
	})

	Context("with no roles assigned", func() {
		It("should strip every bundle-managed claim", func() {
			store.userClaims[userID] = []string{authz.ClaimViewCA, "CanExportReports"}

			expected, err := syncer.Sync(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(expected).To(BeEmpty())

			held, _ := store.UserClaims(ctx, userID)
			Expect(held).To(ConsistOf("CanExportReports"))
		})
	})
})
