package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cohortiq/cohort-engine/pkg/audit"
	"github.com/cohortiq/cohort-engine/pkg/auth"
	"github.com/cohortiq/cohort-engine/pkg/config"
	"github.com/cohortiq/cohort-engine/pkg/database"
	"github.com/cohortiq/cohort-engine/pkg/handlers"
	"github.com/cohortiq/cohort-engine/pkg/llm"
	"github.com/cohortiq/cohort-engine/pkg/logging"
	"github.com/cohortiq/cohort-engine/pkg/mcp"
	mcpauth "github.com/cohortiq/cohort-engine/pkg/mcp/auth"
	mcptools "github.com/cohortiq/cohort-engine/pkg/mcp/tools"
	"github.com/cohortiq/cohort-engine/pkg/middleware"
	"github.com/cohortiq/cohort-engine/pkg/repositories"
	"github.com/cohortiq/cohort-engine/pkg/services"
	"github.com/cohortiq/cohort-engine/pkg/session"
	"github.com/cohortiq/cohort-engine/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", cfg.Database.User+"@"+cfg.Database.Host+"/"+cfg.Database.Database),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("mcp_key_set", cfg.MCP.APIKey != ""))

	ctx := context.Background()

	db, err := database.Connect(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run over database/sql; the pgx pool stays request-only.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Fatal("Failed to create token manager", zap.Error(err))
	}

	cookies := auth.DeriveCookieSettings(cfg.BaseURL, cfg.CookieDomain)
	sessions, err := session.NewManager(cfg.Session.Secret, cookies.Secure)
	if err != nil {
		logger.Fatal("Failed to create session manager", zap.Error(err))
	}

	llmClient, err := llm.NewClient(&llm.Config{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout(),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create model client", zap.Error(err))
	}

	auditor := audit.NewSecurityAuditor(logger)
	userRepo := repositories.NewUserRepository(db)
	activityRepo := repositories.NewActivityRepository(db)

	activityService := services.NewActivityService(activityRepo, logger)
	templateService := services.NewTemplateService(activityService, logger)
	assistantService := services.NewAssistantService(llmClient, activityService, auditor, logger)
	authService := services.NewAuthService(userRepo, tokens, activityService, auditor, &cfg.Auth, logger)

	if err := authService.EnsureAdminUser(ctx); err != nil {
		logger.Fatal("Failed to ensure admin user", zap.Error(err))
	}

	authMiddleware := auth.NewMiddleware(auth.NewAuthService(tokens, logger), logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSchemasHandler(logger).RegisterRoutes(mux)
	handlers.NewTemplatesHandler(templateService, sessions, logger).RegisterRoutes(mux)
	handlers.NewAssistantHandler(assistantService, sessions, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewWorkspaceHandler(sessions, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAuthHandler(authService, tokens, sessions, cfg, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewActivityHandler(activityService, logger).RegisterRoutes(mux, authMiddleware)

	mux.Handle("GET /metrics", promhttp.Handler())

	// MCP exposes the deterministic tools only; the /mcp endpoint carries its
	// own bearer-key gate instead of the cookie/JWT middleware.
	mcpServer := mcp.NewServer("cohort-engine", cfg.Version, logger)
	mcptools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
	mcptools.RegisterSchemaTools(mcpServer.MCP())
	mcptools.RegisterTemplateTools(mcpServer.MCP())
	mcpGate := mcpauth.NewMiddleware(cfg.MCP.APIKey, logger)
	mux.Handle("/mcp", mcpGate.RequireKey(middleware.MCPRequestLogger(logger)(mcpServer.NewStreamableHTTPServer())))

	// Serve the embedded UI shell at the root.
	dist, err := fs.Sub(ui.DistFS(), "dist")
	if err != nil {
		logger.Fatal("Failed to open embedded UI", zap.Error(err))
	}
	mux.Handle("/", http.FileServer(http.FS(dist)))

	handler := middleware.RequestLogger(logger)(middleware.Metrics(mux))

	srv := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting cohort-engine",
		zap.String("addr", srv.Addr),
		zap.String("version", cfg.Version),
		zap.Bool("tls", cfg.TLSCertPath != ""))

	if cfg.TLSCertPath != "" {
		err = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
