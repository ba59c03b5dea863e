// internal/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"printer-bridge/internal/config"
	"printer-bridge/internal/handler"
	"printer-bridge/internal/middleware"
	"printer-bridge/internal/utils"
)

// Dependencies holds everything the handlers need. DB is nil when the
// journal is disabled.
type Dependencies struct {
	DB        handler.Pinger
	Session   handler.StateSource
	Printer   handler.PrinterService
	Events    handler.EventSource
	Listeners handler.ListenerRegistry
	Gatherer  prometheus.Gatherer
}

// Router holds all dependencies for routing
type Router struct {
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

// NewRouter creates a new router instance
func NewRouter(config *config.Config, logger *zap.Logger, deps Dependencies) *Router {
	return &Router{
		config: config,
		logger: logger,
		deps:   deps,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger, "/health", "/ready", "/live", r.metricsPath()))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.deps.DB, r.deps.Session, r.config, r.logger)
	printerHandler := handler.NewPrinterHandler(r.deps.Printer, r.logger)
	wsHandler := handler.NewWebSocketHandler(r.deps.Events, r.deps.Listeners, r.config.Security.AllowedOrigins, r.logger)

	r.addHealthRoutes(router, healthHandler)
	r.addMetricsRoute(router)

	apiV1 := router.Group("/api/v1")
	r.addPrinterRoutes(apiV1, printerHandler)
	r.addDisplayRoutes(apiV1, printerHandler)
	r.addListenerRoutes(apiV1, printerHandler, wsHandler)
	apiV1.GET("/jobs", printerHandler.ListJobs)

	router.GET("/ws/events", wsHandler.HandleEventConnection)

	r.logger.Info("All routes configured successfully")
}

// addHealthRoutes sets up health check routes
func (r *Router) addHealthRoutes(router *gin.Engine, handler *handler.HealthHandler) {
	health := router.Group("")
	{
		health.GET("/health", handler.HealthCheck)
		health.GET("/ready", handler.ReadinessCheck)
		health.GET("/live", handler.LivenessCheck)
	}
}

func (r *Router) addMetricsRoute(router *gin.Engine) {
	if !r.config.Metrics.Enabled || r.deps.Gatherer == nil {
		return
	}
	router.GET(r.metricsPath(), gin.WrapH(promhttp.HandlerFor(r.deps.Gatherer, promhttp.HandlerOpts{})))
}

// addPrinterRoutes sets up printer routes
func (r *Router) addPrinterRoutes(api *gin.RouterGroup, handler *handler.PrinterHandler) {
	api.GET("/printers/search", handler.SearchPrinters)

	printer := api.Group("/printer")
	{
		printer.POST("/connect", handler.Connect)
		printer.POST("/disconnect", handler.Disconnect)
		printer.GET("/state", handler.GetState)
		printer.GET("/status", handler.GetStatus)
		printer.POST("/print", handler.Print)
		printer.POST("/print/legacy", handler.PrintLegacy)
		printer.POST("/drawer/open", handler.OpenCashDrawer)
	}
}

// addDisplayRoutes sets up customer display routes
func (r *Router) addDisplayRoutes(api *gin.RouterGroup, handler *handler.PrinterHandler) {
	display := api.Group("/display")
	{
		display.POST("/text", handler.ShowTextOnDisplay)
		display.POST("/clear", handler.ClearDisplay)
	}
}

// addListenerRoutes sets up listener routes
func (r *Router) addListenerRoutes(api *gin.RouterGroup, printerHandler *handler.PrinterHandler, wsHandler *handler.WebSocketHandler) {
	listeners := api.Group("/listeners")
	{
		listeners.GET("", printerHandler.GetListeners)
		listeners.POST("", printerHandler.AddListener)
		listeners.POST("/remove", printerHandler.RemoveListeners)
		listeners.GET("/websockets", wsHandler.GetConnectionStats)
	}
}

func (r *Router) metricsPath() string {
	if r.config.Metrics.Path == "" {
		return "/metrics"
	}
	return r.config.Metrics.Path
}
