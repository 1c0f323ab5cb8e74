package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	appai "github.com/gitrospector/gitrospector/internal/application/ai"
	appanalysis "github.com/gitrospector/gitrospector/internal/application/analysis"
	"github.com/gitrospector/gitrospector/internal/config"
	domain "github.com/gitrospector/gitrospector/internal/domain/analysis"
	openaiclient "github.com/gitrospector/gitrospector/internal/infra/ai/openai"
	"github.com/gitrospector/gitrospector/internal/infra/analyzer/treesitter"
	memorydb "github.com/gitrospector/gitrospector/internal/infra/db/memory"
	mysqldb "github.com/gitrospector/gitrospector/internal/infra/db/mysql"
	postgresdb "github.com/gitrospector/gitrospector/internal/infra/db/postgres"
	"github.com/gitrospector/gitrospector/internal/infra/httpserver"
	gitclone "github.com/gitrospector/gitrospector/internal/infra/vcs/git"
	"github.com/gitrospector/gitrospector/internal/infra/workspace"
	"github.com/gitrospector/gitrospector/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// init run-history repo
	var repo domain.Repository
	checkers := map[string]middleware.HealthChecker{}
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		repo = mysqldb.NewAnalysisRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "postgres":
		db, err := postgresdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		repo = postgresdb.NewAnalysisRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "":
		log.Println("no database configured, run history kept in memory")
		repo = memorydb.NewAnalysisRepository()
	default:
		log.Fatalf("unknown database driver: %s", cfg.Database.Driver)
	}

	// init service
	svc := &appanalysis.Service{
		Repo:       repo,
		Fetcher:    gitclone.NewCloner(cfg.Clone.Depth),
		Builder:    treesitter.NewBuilder(cfg.Analyzer.MaxFileBytes),
		Workspaces: workspace.New(cfg.Workspace.BaseDir),
		Clock:      appanalysis.SystemClock{},
	}

	// AI summary is optional
	var aiSvc *appai.Service
	if cfg.AI.APIKey != "" {
		aiSvc = appai.NewService(openaiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model))
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Mount("/", httpserver.NewRouter(svc, aiSvc, httpserver.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		HealthCheckers: checkers,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// No write timeout: clone and analysis run for as long as they
		// need and there is no enforced deadline around them.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
