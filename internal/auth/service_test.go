package auth_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/coopnet/intranet-api/internal/auth"
	"github.com/coopnet/intranet-api/internal/authz"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AuthService Suite")
}

// Mock repository for testing
type mockAuthRepository struct {
	credentials map[string]struct {
		userID int64
		hash   string
	}
	principals map[int64]*authz.Principal
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		credentials: make(map[string]struct {
			userID int64
			hash   string
		}),
		principals: make(map[int64]*authz.Principal),
	}
}

func (m *mockAuthRepository) addUser(userID int64, email, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	Expect(err).NotTo(HaveOccurred())
	m.credentials[email] = struct {
		userID int64
		hash   string
	}{userID, string(hash)}
}

func (m *mockAuthRepository) GetCredentials(_ context.Context, email string) (int64, string, error) {
	cred, ok := m.credentials[email]
	if !ok {
		return 0, "", auth.ErrInvalidCredentials
	}
	return cred.userID, cred.hash, nil
}

func (m *mockAuthRepository) GetPrincipal(_ context.Context, userID int64) (*authz.Principal, error) {
	p, ok := m.principals[userID]
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	return p, nil
}

var _ = Describe("AuthService", func() {
	var (
		repo     *mockAuthRepository
		tokenGen *auth.JWTTokenGenerator
		service  *auth.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		repo = newMockAuthRepository()
		tokenGen = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(repo, tokenGen, bcrypt.MinCost)
		ctx = context.Background()

		repo.addUser(1, "helena@coopnet.com.br", "segredo123")
	})

	Describe("Authenticate", func() {
		It("should return a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(ctx, auth.LoginDTO{
				Email:    "helena@coopnet.com.br",
				Password: "segredo123",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(1)))
			Expect(claims.Email).To(Equal("helena@coopnet.com.br"))
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{
				Email:    "helena@coopnet.com.br",
				Password: "errada",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("should reject an unknown email with the same error", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{
				Email:    "ninguem@coopnet.com.br",
				Password: "segredo123",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("should reject a missing password", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "helena@coopnet.com.br"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RefreshTokens", func() {
		It("should issue a new pair from a valid refresh token", func() {
			tokens, err := service.Authenticate(ctx, auth.LoginDTO{
				Email:    "helena@coopnet.com.br",
				Password: "segredo123",
			})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(ctx, tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(1)))
		})

		It("should reject a garbage token", func() {
			_, err := service.RefreshTokens(ctx, "not-a-token")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("JWTTokenGenerator", func() {
		It("should report an expired access token as expired, not invalid", func() {
			expired := &auth.JWTTokenGenerator{
				AccessTokenSecret:  []byte("access-secret"),
				RefreshTokenSecret: []byte("refresh-secret"),
				AccessTokenTTL:     -time.Minute,
				RefreshTokenTTL:    7 * 24 * time.Hour,
			}
			token, err := expired.GenerateAccessToken(1, "helena@coopnet.com.br")
			Expect(err).NotTo(HaveOccurred())

			_, err = expired.ValidateToken(token)
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})

		It("should reject a token signed with a different secret", func() {
			other := auth.NewJWTTokenGenerator("outro-segredo", "outro-refresh", 15*time.Minute, time.Hour)
			token, err := other.GenerateAccessToken(1, "helena@coopnet.com.br")
			Expect(err).NotTo(HaveOccurred())

			_, err = tokenGen.ValidateToken(token)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("GetPrincipal", func() {
		It("should load the caller's claims and tier", func() {
			repo.principals[1] = &authz.Principal{
				UserID: 1,
				Email:  "helena@coopnet.com.br",
				Claims: []string{authz.ClaimViewCA},
				Tier:   authz.TierAdministrativeCenter,
				UnitID: "CA-01",
			}

			p, err := service.GetPrincipal(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Tier).To(Equal(authz.TierAdministrativeCenter))
			Expect(p.Claims).To(ContainElement(authz.ClaimViewCA))
		})
	})
})
