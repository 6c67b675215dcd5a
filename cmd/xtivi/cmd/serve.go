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

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/okarabulut/xtivi/internal/catalog"
	"github.com/okarabulut/xtivi/internal/config"
	"github.com/okarabulut/xtivi/internal/database"
	internalhttp "github.com/okarabulut/xtivi/internal/http"
	"github.com/okarabulut/xtivi/internal/http/handlers"
	"github.com/okarabulut/xtivi/internal/observability"
	"github.com/okarabulut/xtivi/internal/playback"
	"github.com/okarabulut/xtivi/internal/proxy"
	"github.com/okarabulut/xtivi/internal/repository"
	"github.com/okarabulut/xtivi/internal/version"
	"github.com/okarabulut/xtivi/pkg/httpclient"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the xtivi server",
	Long: `Start the xtivi HTTP server and API.

The server provides:
- REST API for panel authentication, catalog browsing, and playback
- Stream proxy so browser players never talk to the panel directly
- Health check endpoint
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("database", "xtivi.db", "Database file path")

	mustBindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	mustBindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	mustBindPFlag("database.path", serveCmd.Flags().Lookup("database"))
}

// mustBindPFlag binds a viper key to a cobra flag and panics if binding fails.
func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %q to key %q: %v", flag.Name, key, err))
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	logger := slog.Default()

	// Database
	db, err := database.New(cfg.Database, observability.WithComponent(logger, "database"))
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.DB)
	favoriteRepo := repository.NewFavoriteRepository(db.DB)
	historyRepo := repository.NewHistoryRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)

	// Resilient HTTP client for panel API calls, with a shared breaker so
	// health reporting sees panel state.
	breakerManager := httpclient.NewManager(logger)
	panelHTTPConfig := upstreamClientConfig(cfg.Upstream, logger)
	panelClient := breakerManager.ClientFor("panel", panelHTTPConfig)

	// Catalog service with TTL cache and scheduled refresh.
	catalogService := catalog.NewService(
		panelClient.StandardClient(),
		cfg.Catalog.CacheTTL,
		cfg.Catalog.RefreshCron,
		observability.WithComponent(logger, "catalog"),
	)
	if err := catalogService.StartRefresh(); err != nil {
		return fmt.Errorf("starting catalog refresh: %w", err)
	}
	defer catalogService.Stop()

	// Playback engine and fallback controller. Probes get their own plain
	// client; a probe failure is signal, not something to retry away.
	probeClient := &http.Client{Timeout: cfg.Playback.ProbeTimeout}
	engine := playback.NewEngine(playback.DefaultBackendFactory(probeClient, cfg.Playback.ProbeByteLimit))
	controller := playback.NewController(
		engine,
		playback.NewSlogSink(observability.WithComponent(logger, "playback")),
		playback.ControllerConfig{
			BackoffBase: cfg.Playback.BackoffBase,
			BackoffStep: cfg.Playback.BackoffStep,
			BackoffCap:  cfg.Playback.BackoffCap,
		},
	)
	defer controller.Dispose()

	// HTTP server
	server := internalhttp.NewServer(internalhttp.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		IdleTimeout:       2 * time.Minute,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	}, logger, version.Version)

	api := server.API()
	handlers.NewHealthHandler(version.Version).
		WithDB(db).
		WithBreakerManager(breakerManager).
		Register(api)
	handlers.NewAuthHandler(catalogService, userRepo).Register(api)
	handlers.NewCatalogHandler(catalogService).Register(api)
	handlers.NewPlaybackHandler(controller, observability.WithComponent(logger, "playback")).Register(api)
	handlers.NewFavoriteHandler(favoriteRepo).Register(api)
	handlers.NewHistoryHandler(historyRepo).Register(api)
	handlers.NewSettingsHandler(settingsRepo).Register(api)

	// Stream proxy rides the raw router; media bytes bypass the API layer.
	streamProxy := proxy.NewHandler(proxy.Config{
		HTTPClient: &http.Client{},
		UserAgent:  userAgent(cfg.Upstream),
	}, observability.WithComponent(logger, "proxy"))
	server.Router().Get("/stream/{kind}/{id}", streamProxy.ServeStream)
	server.Router().Get("/proxy", streamProxy.ServeProxy)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	logger.Info("starting xtivi",
		slog.String("version", version.Version),
		slog.String("database", cfg.Database.Path),
	)

	return server.ListenAndServe(ctx)
}

// upstreamClientConfig maps the upstream config onto the resilient client.
func upstreamClientConfig(cfg config.UpstreamConfig, logger *slog.Logger) httpclient.Config {
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Logger = logger

	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}
	if cfg.RetryAttempts > 0 {
		clientCfg.RetryAttempts = cfg.RetryAttempts
	}
	if cfg.RetryDelay > 0 {
		clientCfg.RetryDelay = cfg.RetryDelay
	}
	if cfg.CircuitThreshold > 0 {
		clientCfg.CircuitThreshold = cfg.CircuitThreshold
	}
	if cfg.CircuitTimeout > 0 {
		clientCfg.CircuitTimeout = cfg.CircuitTimeout
	}
	clientCfg.UserAgent = userAgent(cfg)

	return clientCfg
}

func userAgent(cfg config.UpstreamConfig) string {
	if cfg.UserAgent != "" {
		return cfg.UserAgent
	}
	return version.UserAgent()
}
