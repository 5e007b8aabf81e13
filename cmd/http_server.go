package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/coopnet/intranet-api/internal"
	"github.com/coopnet/intranet-api/internal/admin"
	adminPostgres "github.com/coopnet/intranet-api/internal/admin/postgres"
	"github.com/coopnet/intranet-api/internal/auth"
	authPostgres "github.com/coopnet/intranet-api/internal/auth/postgres"
	"github.com/coopnet/intranet-api/internal/authz"
	"github.com/coopnet/intranet-api/internal/collaborator"
	collaboratorPostgres "github.com/coopnet/intranet-api/internal/collaborator/postgres"
	"github.com/coopnet/intranet-api/internal/department"
	"github.com/coopnet/intranet-api/internal/guide"
	guidePostgres "github.com/coopnet/intranet-api/internal/guide/postgres"
	"github.com/coopnet/intranet-api/internal/post"
	postPostgres "github.com/coopnet/intranet-api/internal/post/postgres"
	"github.com/coopnet/intranet-api/internal/transport/middleware"
	"github.com/coopnet/intranet-api/internal/transport/rest"
	"github.com/coopnet/intranet-api/internal/transport/swagger"
	"github.com/coopnet/intranet-api/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Redis    *redis.Client
	Router   *chi.Mux
	Handlers rest.Handlers
	Policies *authz.PolicyRegistry
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
		if deps.Redis != nil {
			if err := deps.Redis.Close(); err != nil {
				slog.Error("Redis close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	return rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Redis, deps.Handlers, deps.Policies, rest.RouterConfig{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		MetricsEnabled: deps.Config.Observability.Metrics.Enabled,
		UploadDir:      deps.Config.Media.UploadDir,
	}, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	var rdb *redis.Client
	if config.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
	}
	claimCache := authz.NewClaimCache(rdb, "intranet")

	if config.Observability.Metrics.Enabled {
		middleware.InitMetrics()
	}

	// authorization core
	checker := authz.NewChecker()
	policies := authz.NewPolicyRegistry(checker, lg)

	// auth
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authRepo := authPostgres.NewRepository(gormDB, claimCache)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	// posts and departments
	postRepo := postPostgres.NewRepository(gormDB)
	postService := post.NewService(postRepo, checker, lg)
	postHandler := post.NewHandler(postService, config.Media.UploadDir, config.Media.MaxUploadMB, lg)
	departmentHandler := department.NewHandler(postService, lg)

	// collaborators
	collaboratorRepo := collaboratorPostgres.NewRepository(gormDB)
	collaboratorService := collaborator.NewService(collaboratorRepo, lg)
	collaboratorHandler := collaborator.NewHandler(collaboratorService, lg)

	// admin
	adminRepo := adminPostgres.NewRepository(gormDB)
	syncer := authz.NewSyncer(adminRepo, claimCache, lg)
	adminService := admin.NewService(adminRepo, syncer, claimCache, config.Security.BCryptCost, lg)
	adminHandler := admin.NewHandler(adminService, lg)

	// admin-registered claim types join the policy validation set
	if available, err := adminRepo.ListAvailableClaims(context.Background()); err == nil {
		types := make([]string, len(available))
		for i, c := range available {
			types[i] = c.ClaimType
		}
		policies.RegisterClaimTypes(types)
	} else {
		lg.Warn("failed to load available claims for policy validation", "error", err)
	}

	// orientador
	guideRepo := guidePostgres.NewRepository(gormDB)
	guideService := guide.NewService(guideRepo, lg)
	guideHandler := guide.NewHandler(guideService, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Redis:  rdb,
		Router: chi.NewRouter(),
		Handlers: rest.Handlers{
			Auth:         authHandler,
			Post:         postHandler,
			Department:   departmentHandler,
			Collaborator: collaboratorHandler,
			Admin:        adminHandler,
			Guide:        guideHandler,
		},
		Policies: policies,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
