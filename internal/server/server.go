package server

import (
	"context"

	"food-rag-be/internal/bootstrap"
	"food-rag-be/internal/config"
	"food-rag-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:                1 * 1024 * 1024,
		EnableSplittingOnParsers: true,
		DisableStartupMessage:    cfg.IsProduction(),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept",
		AllowMethods:  "GET, POST, PUT, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type, X-Session-Id",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(serverutils.SuccessResponse("OK", fiber.Map{"status": "up"}))
	})

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("Server", "Server is running", map[string]interface{}{"port": s.cfg.App.Port})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.ChatSocketHandler.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api)
	c.FoodController.RegisterRoutes(api)
	c.PreferenceController.RegisterRoutes(api)
}
