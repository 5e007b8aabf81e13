package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"

	"github.com/coopnet/intranet-api/internal/admin"
	"github.com/coopnet/intranet-api/internal/auth"
	"github.com/coopnet/intranet-api/internal/authz"
	"github.com/coopnet/intranet-api/internal/collaborator"
	"github.com/coopnet/intranet-api/internal/department"
	"github.com/coopnet/intranet-api/internal/guide"
	"github.com/coopnet/intranet-api/internal/post"
	"github.com/coopnet/intranet-api/internal/transport/middleware"
	"github.com/coopnet/intranet-api/internal/transport/swagger"
)

// Handlers bundles the per-module HTTP handlers wired by the server command.
type Handlers struct {
	Auth         *auth.Handler
	Post         *post.Handler
	Department   *department.Handler
	Collaborator *collaborator.Handler
	Admin        *admin.Handler
	Guide        *guide.Handler
}

// RouterConfig carries the transport-level settings routing needs.
type RouterConfig struct {
	AllowedOrigins string
	MetricsEnabled bool
	UploadDir      string
}

// RegisterAllRoutes mounts every route and then validates that each policy
// referenced during registration names a known claim type, so a typo in a
// policy name aborts startup instead of minting an ungrantable policy.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, rdb *redis.Client, handlers Handlers, policies *authz.PolicyRegistry, cfg RouterConfig, logger *slog.Logger) error {
	healthHandler := NewHealthHandler(db, rdb)

	// Apply global middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if cfg.MetricsEnabled {
		router.Use(middleware.Instrument)
		router.Handle("/metrics", middleware.MetricsHandler())
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Uploaded media files
	if cfg.UploadDir != "" {
		router.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	manageUsers := policies.PolicyAnyOf(authz.ClaimManageUsers, authz.ClaimManageAll)
	manageGuides := policies.PolicyAnyOf(authz.ClaimManageGuides, authz.ClaimManageAll)

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.RefreshToken)
			sr.Post("/logout", handlers.Auth.Logout)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			pr.Get("/auth/me", handlers.Auth.Me)

			// Generic feed
			pr.Route("/posts", func(fr chi.Router) {
				fr.Get("/", handlers.Post.Feed)
				fr.Post("/", handlers.Post.CreatePost)
				fr.Get("/{id}", handlers.Post.GetPost)
				fr.Put("/{id}", handlers.Post.UpdatePost)
				fr.Delete("/{id}", handlers.Post.DeletePost)
				fr.Post("/{id}/reactions", handlers.Post.ToggleReaction)
				fr.Get("/{id}/comments", handlers.Post.ListComments)
				fr.Post("/{id}/comments", handlers.Post.AddComment)
			})
			pr.Delete("/comments/{id}", handlers.Post.DeleteComment)
			pr.Post("/media", handlers.Post.UploadMedia)

			// Department sections. Write authorization happens in the service
			// against the department's claim prefix.
			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", handlers.Department.List)
				dr.Get("/{department}/posts", handlers.Department.Feed)
				dr.Post("/{department}/posts", handlers.Department.CreatePost)
			})

			// Collaborators and org chart
			pr.Route("/collaborators", func(cr chi.Router) {
				cr.Get("/", handlers.Collaborator.List)
				cr.Get("/{id}", handlers.Collaborator.Get)

				cr.Group(func(mr chi.Router) {
					mr.Use(manageUsers)
					mr.Post("/", handlers.Collaborator.Create)
					mr.Put("/{id}", handlers.Collaborator.Update)
					mr.Delete("/{id}", handlers.Collaborator.Delete)
					mr.Put("/{id}/tags", handlers.Collaborator.SetTags)
				})
			})
			pr.Get("/orgchart", handlers.Collaborator.OrgChart)

			// Admin panel
			pr.Group(func(ar chi.Router) {
				ar.Use(manageUsers)

				ar.Route("/users", func(ur chi.Router) {
					ur.Get("/", handlers.Admin.ListUsers)
					ur.Post("/", handlers.Admin.CreateUser)
					ur.Get("/{id}", handlers.Admin.GetUser)
					ur.Put("/{id}/roles", handlers.Admin.UpdateUserRoles)
					ur.Post("/{id}/claims", handlers.Admin.GrantClaim)
					ur.Delete("/{id}/claims/{claimType}", handlers.Admin.RevokeClaim)
					ur.Post("/{id}/sync", handlers.Admin.SyncUser)
				})

				ar.Route("/roles", func(rr chi.Router) {
					rr.Get("/", handlers.Admin.ListRoles)
					rr.Post("/", handlers.Admin.CreateRole)
					rr.Put("/{id}", handlers.Admin.UpdateRole)
					rr.Delete("/{id}", handlers.Admin.DeleteRole)
				})

				ar.Route("/claims", func(cr chi.Router) {
					cr.Get("/", handlers.Admin.ListAvailableClaims)
					cr.Post("/", handlers.Admin.CreateAvailableClaim)
					cr.Delete("/{id}", handlers.Admin.DeleteAvailableClaim)
				})
			})

			// Orientador builder
			pr.Route("/guides/buttons", func(gr chi.Router) {
				gr.Get("/", handlers.Guide.ListButtons)
				gr.Get("/{id}/table", handlers.Guide.GetTable)

				gr.Group(func(mr chi.Router) {
					mr.Use(manageGuides)
					mr.Post("/", handlers.Guide.CreateButton)
					mr.Put("/order", handlers.Guide.Reorder)
					mr.Put("/{id}", handlers.Guide.UpdateButton)
					mr.Delete("/{id}", handlers.Guide.DeleteButton)
					mr.Put("/{id}/table", handlers.Guide.SaveTable)
				})
			})
		})
	})

	return policies.Validate()
}
