package main

// @title CoreMem API
// @version 1.0
// @description Semantic memory journal: stores notes enriched by a language model, answers questions from them, and keeps a log of past queries.

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coremem/coremem/config"
	"github.com/coremem/coremem/pkg/api"
	"github.com/coremem/coremem/pkg/api/events"
	"github.com/coremem/coremem/pkg/api/handlers"
	"github.com/coremem/coremem/pkg/controller"
	"github.com/coremem/coremem/pkg/logger"
	"github.com/coremem/coremem/pkg/metrics"
	"github.com/coremem/coremem/pkg/record"
	"github.com/coremem/coremem/pkg/semantic"
	"github.com/coremem/coremem/pkg/telemetry/tracing"
	"github.com/coremem/coremem/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	serverPort    = flag.Int("port", 0, "Override server port")
	logLevel      = flag.String("log-level", "", "Override log level")
	storageType   = flag.String("storage", "", "Override storage backend (memory, badger, redis)")
	modelProvider = flag.String("provider", "", "Override model provider (anthropic, openai, fake)")
	debugMode     = flag.Bool("debug", false, "Enable debug mode")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("CoreMem %s\n", version.String())
		os.Exit(0)
	}

	overrides := buildOverrides()
	cfg, err := config.Load(*configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)
	defer log.Close()

	if err := run(cfg, log, overrides); err != nil {
		log.Error("CoreMem exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger, overrides map[string]interface{}) error {
	log.Info("Starting CoreMem",
		"version", version.Version,
		"gitCommit", version.GitCommit,
		"environment", cfg.App.Environment,
		"storage", cfg.Storage.Type,
		"provider", cfg.Model.Provider,
	)
	log.Debug("Configuration loaded", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, tracing.ServiceInfo{
		Name:        cfg.App.Name,
		Version:     version.Version,
		Environment: cfg.App.Environment,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		tctx, tcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer tcancel()
		if err := shutdownTracing(tctx); err != nil {
			log.Warn("Error shutting down tracing", "error", err)
		}
	}()

	metricsCfg := metrics.DefaultConfig()
	metricsCfg.Enabled = cfg.Metrics.Enabled
	metricsCfg.Port = cfg.Metrics.Port
	metricsCfg.Path = cfg.Metrics.Path
	metricsManager := metrics.NewManager(metricsCfg)
	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	kv, err := openStorage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Error("Error closing storage", "error", err)
		}
	}()

	model, err := newModel(cfg.Model, metricsManager, log)
	if err != nil {
		return err
	}

	broadcaster := events.NewBroadcaster()
	defer broadcaster.Close()

	store := record.NewStore(kv, log, record.WithNamespace(cfg.Storage.Namespace))
	ctrl, err := controller.New(controller.Deps{
		Store:       store,
		Enricher:    semantic.NewEnricher(model.provider),
		Ranker:      semantic.NewRanker(model.provider),
		Synthesizer: semantic.NewSynthesizer(model.provider),
		Notifier:    broadcaster,
		Metrics:     metricsManager,
		Logger:      log.With("component", "controller"),
	})
	if err != nil {
		return fmt.Errorf("create controller: %w", err)
	}
	if err := ctrl.Open(ctx); err != nil {
		return fmt.Errorf("load collections: %w", err)
	}

	healthDeps := handlers.HealthDeps{
		Storage: kv,
		Model:   model.provider,
		Sizes: func() (int, int) {
			return len(ctrl.Memories(0)), len(ctrl.Interactions())
		},
	}
	if model.breaker != nil {
		healthDeps.Breaker = model.breaker
	}
	healthHandler := handlers.NewHealthHandler(healthDeps)

	apiHandlers := &api.Handlers{
		Memory:  handlers.NewMemoryHandler(ctrl, log, cfg.Server.HTTP.MaxBodyBytes),
		Search:  handlers.NewSearchHandler(ctrl, log, cfg.Server.HTTP.MaxBodyBytes),
		State:   handlers.NewStateHandler(ctrl, log),
		Health:  healthHandler,
		Metrics: metricsManager,
	}

	var ws *handlers.WebSocketHandler
	if cfg.Server.WebSocket.Enabled {
		ws = handlers.NewWebSocketHandler(log, handlers.WebSocketConfig{
			AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
			MaxConnections: cfg.Server.WebSocket.MaxConnections,
			PingInterval:   cfg.Server.WebSocket.PingInterval,
		})
		apiHandlers.WebSocket = ws
		go ws.Forward(ctx, broadcaster)
	}

	httpServer := api.NewHTTPServer(cfg, log, apiHandlers)
	serverErrChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()
	healthHandler.SetReady(true)

	if *configPath != "" {
		watchConfig(ctx, *configPath, overrides, log, model)
	}

	log.Info("CoreMem is running",
		"http_port", cfg.Server.Port,
		"metrics_port", cfg.Metrics.Port,
		"memories", len(ctrl.Memories(0)),
	)

	var runErr error
	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
		runErr = err
	}

	healthHandler.SetReady(false)

	shutdownTimeout := cfg.Server.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if ws != nil {
		ws.Close()
	}
	log.Info("Shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}

	log.Info("CoreMem stopped")
	return runErr
}

func watchConfig(ctx context.Context, path string, overrides map[string]interface{}, log logger.Logger, model *modelStack) {
	watcher, err := config.NewWatcher(path,
		config.WithWatcherLogger(log),
		config.WithOverrides(overrides),
	)
	if err != nil {
		log.Warn("Config hot reload disabled", "error", err)
		return
	}

	watcher.OnChange(func(next *config.Config) {
		level := logger.ParseLevel(next.Log.Level)
		if level != log.GetLevel() {
			log.SetLevel(level)
			log.Info("Log level changed", "level", next.Log.Level)
		}
		if model.limiter != nil && next.Model.RateLimit.Enabled {
			model.limiter.SetLimit(next.Model.RateLimit.RPS, next.Model.RateLimit.Burst)
			log.Info("Model rate limit changed",
				"rps", next.Model.RateLimit.RPS,
				"burst", next.Model.RateLimit.Burst,
			)
		}
	})

	go func() {
		defer watcher.Stop()
		if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
			log.Warn("Config watcher stopped", "error", err)
		}
	}()
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *storageType != "" {
		overrides["storage.type"] = *storageType
	}
	if *modelProvider != "" {
		overrides["model.provider"] = *modelProvider
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printHelp() {
	fmt.Printf("CoreMem - personal memory service\n\n")
	fmt.Printf("Usage: coremem [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  coremem                                   # Run with default config\n")
	fmt.Printf("  coremem -config coremem.yaml              # Use specific config file\n")
	fmt.Printf("  coremem -storage memory -provider fake    # Local demo without an API key\n")
	fmt.Printf("  coremem -version                          # Print version info\n")
}
