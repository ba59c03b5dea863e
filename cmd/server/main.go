// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	bridge "printer-bridge/internal/app"
	"printer-bridge/internal/config"
	"printer-bridge/internal/routes"
	"printer-bridge/internal/utils"
)

// Application represents the main application
type Application struct {
	config     *config.Config
	logger     *zap.Logger
	server     *http.Server
	components *bridge.Components
	registry   *prometheus.Registry

	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	configFile := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	application, err := NewApplication(*configFile)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Start(); err != nil {
		application.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, cfg.App.Name)
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	application := &Application{
		config: cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := application.initializeComponents(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	application.initializeServer()
	return application, nil
}

// initializeComponents wires the printer stack with a private metrics registry
func (app *Application) initializeComponents() error {
	var reg prometheus.Registerer
	if app.config.Metrics.Enabled {
		app.registry = prometheus.NewRegistry()
		app.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		reg = app.registry
	}

	initCtx, cancel := context.WithTimeout(app.ctx, 30*time.Second)
	defer cancel()

	components, err := bridge.New(initCtx, app.config, app.logger, reg)
	if err != nil {
		return err
	}
	app.components = components
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() {
	deps := routes.Dependencies{
		Session:   app.components.Session,
		Printer:   app.components.Printer,
		Events:    app.components.Bus,
		Listeners: app.components.Listeners,
	}
	if app.components.Database != nil {
		deps.DB = app.components.Database
	}
	if app.registry != nil {
		deps.Gatherer = app.registry
	}

	router := routes.NewRouter(app.config, app.logger, deps).SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, app.config.App.Name)
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	// background loops stop before the printer handle is released
	app.cancel()
	app.components.Close(ctx)

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start serves HTTP until a shutdown signal arrives
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.components.StartBackground(app.ctx)
	app.logger.Info("Background services started")

	app.waitForShutdown()
	return nil
}
