package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/consultologist/consultd/internal/adapter/foundry"
	consulthttp "github.com/consultologist/consultd/internal/adapter/http"
	"github.com/consultologist/consultd/internal/adapter/identity"
	consultnats "github.com/consultologist/consultd/internal/adapter/nats"
	consultotel "github.com/consultologist/consultd/internal/adapter/otel"
	"github.com/consultologist/consultd/internal/adapter/postgres"
	"github.com/consultologist/consultd/internal/adapter/ristretto"
	"github.com/consultologist/consultd/internal/adapter/ws"
	"github.com/consultologist/consultd/internal/config"
	"github.com/consultologist/consultd/internal/logger"
	"github.com/consultologist/consultd/internal/middleware"
	"github.com/consultologist/consultd/internal/orchestrator"
	"github.com/consultologist/consultd/internal/resilience"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLogger := logger.New(cfg.Logging)
	defer closeLogger.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"agent_endpoint", cfg.Agents.Endpoint,
		"poll_interval", cfg.Agents.PollInterval,
		"max_attempts", cfg.Agents.MaxAttempts,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownOtel, err := consultotel.Init(ctx, cfg.Logging.Service, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOtel(shutdownCtx)
	}()

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// NATS audit trail. Optional: an empty URL disables it.
	var audit *consultnats.Publisher
	if cfg.NATS.URL != "" {
		audit, err = consultnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = audit.Close() }()
	}

	// Token cache + identity
	tokenCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer tokenCache.Close()

	tokens := identity.New(cfg.Identity, tokenCache)

	// --- Agent service client ---
	agents := foundry.NewClient(cfg.Agents.Endpoint, cfg.Agents.APIVersion, tokens)
	agents.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Cooldown))

	// --- Workflows ---
	hub := ws.NewHub()
	metrics, err := consultotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	newWorkflow := func(name, agentID string) *orchestrator.Orchestrator {
		orc := orchestrator.New(agents, orchestrator.Options{
			Workflow:     name,
			AgentID:      agentID,
			PollInterval: cfg.Agents.PollInterval,
			MaxAttempts:  cfg.Agents.MaxAttempts,
		}, log).WithMetrics(metrics)
		if audit != nil {
			orc = orc.WithAudit(audit)
		}
		orc.OnProgress(func(ctx context.Context, ev orchestrator.ProgressEvent) {
			hub.BroadcastEvent(ctx, ws.EventWorkflowStatus, ws.WorkflowStatusEvent{
				InvocationID: ev.InvocationID,
				Workflow:     ev.Workflow,
				ThreadID:     ev.ThreadID,
				RunID:        ev.RunID,
				Status:       string(ev.Status),
			})
		})
		return orc
	}

	handlers := &consulthttp.Handlers{
		Chat:    newWorkflow("chat", cfg.Agents.ChatAgentID),
		Extract: newWorkflow("extract", cfg.Agents.ExtractAgentID),
		Store:   postgres.NewStore(pool),
		Agents:  agents,
		Hub:     hub,
		Log:     log,
	}

	// --- HTTP ---
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(consulthttp.CORS(cfg.Server.CORSOrigin))
	r.Use(consulthttp.Logger)
	r.Use(consulthttp.SecurityHeaders)
	r.Use(consultotel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	consulthttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
