package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/text/language"

	"github.com/haukened/weave-edge/internal/edge/common/clock"
	"github.com/haukened/weave-edge/internal/edge/common/log"
	"github.com/haukened/weave-edge/internal/edge/config"
	"github.com/haukened/weave-edge/internal/edge/domain"
	"github.com/haukened/weave-edge/internal/edge/gateways/origin"
	"github.com/haukened/weave-edge/internal/edge/gateways/transport"
	"github.com/haukened/weave-edge/internal/edge/repos/statsstore"
	"github.com/haukened/weave-edge/internal/edge/services/edge"
	"github.com/haukened/weave-edge/internal/edge/services/render"
	"github.com/haukened/weave-edge/internal/edge/services/stats"
	"github.com/haukened/weave-edge/web"
)

const (
	version = "0.1.0-dev"
	appName = "weave-edged"

	// bbolt lock wait per stats read
	statsLockTimeout = 250 * time.Millisecond
)

// Application holds the wired server.
type Application struct {
	config    *config.AppConfig
	transport *transport.HTTPTransport
	handler   *edge.Handler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"app":        appName,
		"version":    version,
		"env":        cfg.Env,
		"log_level":  cfg.LogLevel,
		"port":       cfg.Port,
		"origin":     cfg.Origin,
		"asset_dir":  cfg.AssetDir,
		"origin_url": cfg.OriginURL,
		"stats_db":   cfg.StatsDB,
		"stats_key":  cfg.StatsKey,
		"locale":     cfg.Locale,
	}, "Starting weave-edge server")

	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Server failed")
	}

	log.Info(nil, "weave-edge server stopped gracefully")
}

// buildApplication constructs all components and wires them together.
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	logger := log.GetLogger()

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", cfg.Locale, err)
	}

	o, err := buildOrigin(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build origin: %w", err)
	}

	provider := stats.NewProvider(stats.ProviderOptions{
		Store:  buildStatsStore(cfg),
		Key:    cfg.StatsKey,
		Logger: logger,
	})

	handler := edge.NewHandler(edge.HandlerOptions{
		Origin:   o,
		Stats:    provider,
		Renderer: render.NewRenderer(domain.NewFormatter(tag)),
		Logger:   logger,
	})

	return &Application{
		config:    cfg,
		transport: transport.NewHTTPTransport(cfg.Addr(), clock.RealClock{}, logger),
		handler:   handler,
	}, nil
}

// buildOrigin selects the asset source named in configuration.
func buildOrigin(cfg *config.AppConfig, logger log.Logger) (edge.Origin, error) {
	switch origin.Kind(cfg.Origin) {
	case origin.KindHTTP:
		o, err := origin.NewHTTPOrigin(origin.HTTPOptions{
			BaseURL: cfg.OriginURL,
			Timeout: cfg.OriginTimeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		log.Info(map[string]any{"url": cfg.OriginURL, "timeout": cfg.OriginTimeout}, "HTTP origin configured")
		return o, nil
	case origin.KindDir:
		if cfg.AssetDir == "" {
			log.Info(nil, "Serving embedded default site")
			return origin.NewFSOrigin(web.Site()), nil
		}
		info, err := os.Stat(cfg.AssetDir)
		if err != nil {
			return nil, fmt.Errorf("asset dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("asset dir %s is not a directory", cfg.AssetDir)
		}
		log.Info(map[string]any{"dir": cfg.AssetDir}, "Directory origin configured")
		return origin.NewFSOrigin(os.DirFS(cfg.AssetDir)), nil
	default:
		return nil, fmt.Errorf("unknown origin %q", cfg.Origin)
	}
}

// buildStatsStore returns nil when the stats database is unusable, which the
// provider treats as a missing binding: pages render with placeholders.
func buildStatsStore(cfg *config.AppConfig) stats.Store {
	dir, err := os.Stat(filepath.Dir(cfg.StatsDB))
	if err != nil || !dir.IsDir() {
		log.Warn(map[string]any{"stats_db": cfg.StatsDB}, "Stats database directory missing, counters disabled")
		return nil
	}
	log.Info(map[string]any{"stats_db": cfg.StatsDB, "key": cfg.StatsKey}, "Stats store configured")
	return statsstore.NewFileReader(cfg.StatsDB, statsLockTimeout)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (app *Application) Run(ctx context.Context) error {
	if err := app.transport.Start(ctx, app.handler); err != nil {
		return fmt.Errorf("failed to start HTTP transport: %w", err)
	}

	log.Info(map[string]any{
		"address":   app.transport.Address(),
		"transport": "HTTP",
	}, "Edge server started")

	<-ctx.Done()
	log.Info(nil, "Shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()

	if err := app.transport.Stop(shutdownCtx); err != nil {
		log.Warn(map[string]any{"timeout": app.config.ShutdownTimeout, "error": err}, "Shutdown timeout exceeded")
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info(nil, "Graceful shutdown completed")
	return nil
}
