// Package main is the entry point for the service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"

	"github.com/fennin3/tweet-image-bot/internal/adapters/assets"
	"github.com/fennin3/tweet-image-bot/internal/adapters/clients"
	"github.com/fennin3/tweet-image-bot/internal/adapters/clients/acl"
	"github.com/fennin3/tweet-image-bot/internal/adapters/evaluator"
	"github.com/fennin3/tweet-image-bot/internal/adapters/http"
	"github.com/fennin3/tweet-image-bot/internal/adapters/http/handlers"
	"github.com/fennin3/tweet-image-bot/internal/adapters/render"
	"github.com/fennin3/tweet-image-bot/internal/adapters/twitter"
	"github.com/fennin3/tweet-image-bot/internal/app"
	"github.com/fennin3/tweet-image-bot/internal/platform/config"
	"github.com/fennin3/tweet-image-bot/internal/platform/logging"
	"github.com/fennin3/tweet-image-bot/internal/platform/telemetry"
	"github.com/fennin3/tweet-image-bot/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
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
	logger := logging.New(&logging.Config{
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

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Create health registry
	healthRegistry := ports.NewHealthRegistry()

	// 6. Create quote client adapter (ACL pattern) over an instrumented client
	quoteHTTP, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating quote HTTP client: %w", err)
	}

	quoteClient := acl.NewQuoteClient(acl.QuoteClientConfig{
		Client: quoteHTTP,
		Logger: logger,
	})

	if err := healthRegistry.Register(quoteClient); err != nil {
		return fmt.Errorf("registering quote client health check: %w", err)
	}

	// 7. Create the evaluator over the OpenAI chat-completion API
	completer, err := evaluator.NewOpenAICompleter(evaluator.OpenAISettings{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("creating OpenAI completer: %w", err)
	}

	quoteEvaluator := evaluator.New(evaluator.Config{
		Completer: completer,
		Logger:    logger,
	})

	// 8. Create the asset store and renderer
	store, err := newAssetStore(ctx, &cfg.Assets)
	if err != nil {
		return fmt.Errorf("creating asset store: %w", err)
	}

	if checker, ok := store.(ports.HealthChecker); ok {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering asset store health check: %w", err)
		}
	}

	renderer := render.New(render.Config{
		Store:      store,
		OutputDir:  cfg.Render.OutputDir,
		Background: cfg.Render.Background,
		QuoteFont:  cfg.Render.QuoteFont,
		AuthorFont: cfg.Render.AuthorFont,
		CanvasSize: cfg.Render.CanvasSize,
		Logger:     logger,
	})

	// 9. Create the Twitter publisher with OAuth1-signed clients
	signing := twitter.SigningTransport(twitter.Credentials{
		ConsumerKey:    cfg.Twitter.ConsumerKey,
		ConsumerSecret: cfg.Twitter.ConsumerSecret,
		AccessToken:    cfg.Twitter.AccessToken,
		AccessSecret:   cfg.Twitter.AccessSecret,
	})

	uploadClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Twitter.UploadBaseURL,
		ServiceName: "twitter-upload",
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   signing,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating Twitter upload client: %w", err)
	}

	apiClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Twitter.APIBaseURL,
		ServiceName: "twitter-api",
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   signing,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating Twitter API client: %w", err)
	}

	publisher := twitter.New(twitter.Config{
		Upload: uploadClient,
		API:    apiClient,
		Logger: logger,
	})

	if err := healthRegistry.Register(publisher); err != nil {
		return fmt.Errorf("registering publisher health check: %w", err)
	}

	// 10. Create the pipeline service (application layer)
	pipeline := app.NewPipelineService(app.PipelineServiceConfig{
		QuoteClient: quoteClient,
		Evaluator:   quoteEvaluator,
		Renderer:    renderer,
		Publisher:   publisher,
		Threshold:   cfg.Pipeline.Threshold,
		Logger:      logger,
	})

	// 11. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo)
	postHandler := handlers.NewPostHandler(pipeline)

	// 12. Create HTTP server
	server := http.New(&cfg.Server, logger)

	// 13. Setup router with all middleware and routes
	routerCfg := http.RouterConfig{
		Logger:        logger,
		AppConfig:     &cfg.App,
		HealthHandler: healthHandler,
		PostHandler:   postHandler,
		Timeout:       http.DefaultRequestTimeout,
	}
	http.SetupRouter(server.Engine(), routerCfg)

	// 14. Start server (non-blocking)
	serverErr := server.Start()

	// 15. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// newAssetStore builds the configured asset store. The local store reads
// from a directory; the GCS store reads from a bucket using ambient
// application-default credentials.
func newAssetStore(ctx context.Context, cfg *config.AssetsConfig) (assets.Store, error) {
	switch cfg.Source {
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating GCS client: %w", err)
		}
		return assets.NewGCSStore(client, cfg.Bucket), nil
	default:
		return assets.NewLocalStore(cfg.Dir), nil
	}
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	// Listen for OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		// Server error during startup or runtime
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	// Graceful shutdown sequence
	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
