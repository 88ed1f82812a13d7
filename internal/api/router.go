package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/lightstack-home/lightstack/internal/api/docs"
	"github.com/lightstack-home/lightstack/internal/api/handler"
	"github.com/lightstack-home/lightstack/internal/api/middleware"
	"github.com/lightstack-home/lightstack/internal/repository"
	"github.com/lightstack-home/lightstack/internal/service"
	"github.com/lightstack-home/lightstack/internal/ws"
)

const appVersion = "1.0.0"

type Dependencies struct {
	DB               repository.PgxPool
	ClientSendBuffer int
}

type Router struct {
	app       *fiber.App
	logger    *slog.Logger
	deps      *Dependencies
	wsHub     *ws.Hub
	cancelHub context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "LightStack API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	healthHandler := handler.NewHealthHandler(r.deps.DB, appVersion)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Repositories
	configRepo := repository.NewAlertConfigRepository(r.deps.DB)
	stateRepo := repository.NewAlertStateRepository(r.deps.DB)
	historyRepo := repository.NewHistoryRepository(r.deps.DB)

	// WebSocket hub, started before the services that publish into it
	r.wsHub = ws.NewHub(r.logger)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	r.cancelHub = hubCancel
	go r.wsHub.Run(hubCtx)

	// Services
	alertService := service.NewAlertService(r.deps.DB, configRepo, stateRepo, historyRepo, r.wsHub, r.logger)
	configService := service.NewConfigService(configRepo, stateRepo, r.logger)
	historyService := service.NewHistoryService(historyRepo, configRepo, stateRepo)

	// Handlers
	alertHandler := handler.NewAlertHandler(alertService, r.logger)
	configHandler := handler.NewConfigHandler(configService, r.logger)
	historyHandler := handler.NewHistoryHandler(historyService, r.logger)

	v1 := r.app.Group("/api/v1")

	// Alert routes. Fixed paths are registered ahead of the :alert_key
	// wildcards so "current" or "clear-all" never parse as keys.
	v1.Get("/alerts/active", alertHandler.Active)
	v1.Get("/alerts/current", alertHandler.Current)
	v1.Post("/alerts/clear-all", alertHandler.ClearAll)
	v1.Get("/alerts", alertHandler.List)
	v1.Get("/alerts/:alert_key", alertHandler.Get)
	v1.Post("/alerts/:alert_key/trigger", alertHandler.Trigger)
	v1.Post("/alerts/:alert_key/clear", alertHandler.Clear)

	// Config routes
	v1.Get("/alert-configs/summary", configHandler.Summary)
	v1.Get("/alert-configs", configHandler.List)
	v1.Post("/alert-configs", configHandler.Create)
	v1.Get("/alert-configs/:alert_key", configHandler.Get)
	v1.Patch("/alert-configs/:alert_key", configHandler.Update)
	v1.Delete("/alert-configs/:alert_key", configHandler.Delete)

	// History and stats routes
	v1.Get("/history", historyHandler.List)
	v1.Get("/history/:alert_key/recent", historyHandler.Recent)
	v1.Get("/stats/dashboard", historyHandler.Dashboard)

	// WebSocket endpoint
	dispatcher := ws.NewDispatcher(alertService, r.logger)
	wsHandler := ws.NewHandler(r.wsHub, dispatcher, alertService, r.deps.ClientSendBuffer, appVersion, r.logger)
	v1.Get("/ws", wsHandler.UpgradeMiddleware, wsHandler.Serve())
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Hub() *ws.Hub {
	return r.wsHub
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.cancelHub != nil {
		r.cancelHub()
	}

	return r.app.Shutdown()
}
