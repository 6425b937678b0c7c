// Package main is the entry point for the quote bot.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"quotebot/internal/adapters/discord"
	"quotebot/internal/adapters/ops"
	"quotebot/internal/adapters/postgres"
	"quotebot/internal/app"
	"quotebot/internal/domain"
	"quotebot/internal/platform/config"
	"quotebot/internal/platform/logging"
	"quotebot/internal/platform/metrics"
	"quotebot/internal/ports"
	"quotebot/internal/wordcloud"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the bot.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting quotebot",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize metrics on a private registry so the ops endpoint serves
	// only the bot's collectors
	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)

	// 5. Connect the quote store
	store, err := postgres.New(ctx, postgres.Config{
		URL:            cfg.Database.URL,
		MaxConns:       cfg.Database.MaxConns,
		MinConns:       cfg.Database.MinConns,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("connecting quote store: %w", err)
	}
	defer store.Close()

	// 6. Build the optional wordcloud renderer
	var renderer ports.CloudRenderer

	if cfg.Wordcloud.Enabled {
		r, rendererErr := wordcloud.New(wordcloud.Config{
			FontDir:      cfg.Wordcloud.FontDir,
			Size:         cfg.Wordcloud.Size,
			MinFontSize:  cfg.Wordcloud.MinFontSize,
			MaxFontSize:  cfg.Wordcloud.MaxFontSize,
			SizeExponent: cfg.Wordcloud.SizeExponent,
		})
		if rendererErr != nil {
			// The command degrades to a feature-unavailable reply.
			logger.Warn("wordcloud renderer unavailable", slog.Any("error", rendererErr))
		} else {
			renderer = r
			logger.Info("wordcloud renderer ready", slog.Any("fonts", r.Fonts()))
		}
	}

	// 7. Create the gateway so the resolver can share its session
	gateway, err := discord.New(discord.Config{
		Token:    cfg.Discord.Token,
		AppID:    cfg.Discord.AppID,
		GuildID:  cfg.Discord.GuildID,
		Presence: cfg.Discord.Presence,
		Recap: discord.RecapBounds{
			MinMessages: cfg.Recap.MinMessages,
			MaxMessages: cfg.Recap.MaxMessages,
			MaxHours:    cfg.Recap.MaxHours,
		},
	}, nil, m)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	// 8. Create the command service (application layer)
	service := app.NewService(app.ServiceConfig{
		Store:    store,
		Resolver: discord.NewResolver(gateway.Session()),
		Renderer: renderer,
		Metrics:  m,
		Limits: app.Limits{
			Quote: domain.QuoteLimits{
				MaxQuotationLength: cfg.Limits.MaxQuotationLength,
				MaxAuthorLength:    cfg.Limits.MaxAuthorLength,
			},
			MaxSearchResults: cfg.Limits.MaxSearchResults,
			MaxDeleteResults: cfg.Limits.MaxDeleteResults,
			LeaderboardSize:  cfg.Limits.LeaderboardSize,
			MaxCloudWords:    cfg.Wordcloud.MaxWords,
		},
		Timeouts: app.Timeouts{
			DeleteSelect: cfg.Workflow.DeleteSelectTimeout,
			EditSelect:   cfg.Workflow.EditSelectTimeout,
			EditSubmit:   cfg.Workflow.EditSubmitTimeout,
		},
		Recap: app.RecapLimits{
			DefaultMessages: cfg.Recap.DefaultMessages,
			MinMessages:     cfg.Recap.MinMessages,
			MaxMessages:     cfg.Recap.MaxMessages,
			MaxHours:        cfg.Recap.MaxHours,
		},
	})

	gateway.SetHandlers(service.Handlers())

	// 9. Register health checks
	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(store); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}
	if err := healthRegistry.Register(gateway); err != nil {
		return fmt.Errorf("registering gateway health check: %w", err)
	}

	// 10. Start the ops server (non-blocking)
	var opsErr <-chan error

	var opsServer *ops.Server
	if cfg.Ops.Enabled {
		buildInfo := ops.NewBuildInfo(Version, Commit, BuildTime)
		opsServer = ops.New(cfg.Ops, logger, healthRegistry, promRegistry, buildInfo)
		opsErr = opsServer.Start()
	}

	// 11. Connect to Discord and register the slash commands
	startCtx := logging.WithContext(ctx, logger)
	if err := gateway.Open(startCtx); err != nil {
		closeErr := gateway.Close()
		if closeErr != nil {
			logger.Error("gateway close error", slog.Any("error", closeErr))
		}

		return fmt.Errorf("opening gateway: %w", err)
	}

	logger.Info("quotebot running")

	// 12. Wait for shutdown signal
	return waitForShutdown(ctx, logger, gateway, opsServer, opsErr, cfg.Ops.ShutdownTimeout)
}

// waitForShutdown blocks until a shutdown signal is received or the ops
// server fails, then tears down the gateway and the ops server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	gateway *discord.Gateway,
	opsServer *ops.Server,
	opsErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-opsErr:
		if err != nil {
			return fmt.Errorf("ops server error: %w", err)
		}

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := gateway.Close(); err != nil {
		logger.Error("gateway close error", slog.Any("error", err))
	}

	if opsServer != nil {
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ops server shutdown: %w", err)
		}
	}

	logger.Info("shutdown complete")

	return nil
}
