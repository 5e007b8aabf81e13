package authz

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// PolicyRegistry synthesizes authorization policies from bare names: policy
// "X" means "caller holds claim (X, true)". No policy needs registering
// before use; any string handed to Policy becomes a live policy. Every name
// referenced at route-registration time is recorded so Validate can reject
// typos at startup instead of minting permanently ungrantable policies.
type PolicyRegistry struct {
	checker *Checker
	logger  *slog.Logger

	mu         sync.Mutex
	known      map[string]struct{}
	referenced map[string]struct{}
}

func NewPolicyRegistry(checker *Checker, logger *slog.Logger) *PolicyRegistry {
	known := make(map[string]struct{})
	for _, c := range BuiltinClaimTypes() {
		known[c] = struct{}{}
	}
	return &PolicyRegistry{
		checker:    checker,
		logger:     logger,
		known:      known,
		referenced: make(map[string]struct{}),
	}
}

// RegisterClaimTypes adds admin-defined claim types (the available-claims
// registry) to the set Validate accepts.
func (pr *PolicyRegistry) RegisterClaimTypes(claimTypes []string) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	for _, c := range claimTypes {
		pr.known[c] = struct{}{}
	}
}

// Policy returns a chi middleware requiring an authenticated principal that
// holds the claim named by the policy. The middleware itself never rejects a
// policy name as unknown; lacking the claim yields the standard forbidden
// response.
func (pr *PolicyRegistry) Policy(name string) func(http.Handler) http.Handler {
	pr.mu.Lock()
	pr.referenced[name] = struct{}{}
	pr.mu.Unlock()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				pr.logger.Warn("policy check failed: no principal in context", "policy", name)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := pr.checker.Has(r.Context(), principal, name)
			if err != nil {
				pr.logger.ErrorContext(r.Context(), "policy check failed", "error", err, "user_id", principal.UserID, "policy", name)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				pr.logger.WarnContext(r.Context(), "access denied: missing claim for policy",
					"user_id", principal.UserID,
					"policy", name)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PolicyAnyOf returns a middleware passing a principal that holds any of the
// named claims. Routes use it to accept a specific grant or the CanManageAll
// override without widening the single-policy contract.
func (pr *PolicyRegistry) PolicyAnyOf(names ...string) func(http.Handler) http.Handler {
	pr.mu.Lock()
	for _, name := range names {
		pr.referenced[name] = struct{}{}
	}
	pr.mu.Unlock()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				pr.logger.Warn("policy check failed: no principal in context", "policies", names)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !principal.HasAnyClaim(names...) {
				pr.logger.WarnContext(r.Context(), "access denied: missing claim for policy",
					"user_id", principal.UserID,
					"policies", names)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Validate fails when a route referenced a policy name that matches no known
// claim type. Called once after route registration so a misspelled policy
// aborts startup rather than silently denying everyone forever.
func (pr *PolicyRegistry) Validate() error {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	var unknown []string
	for name := range pr.referenced {
		if _, ok := pr.known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("policies reference unknown claim types: %s", strings.Join(unknown, ", "))
	}
	return nil
}
