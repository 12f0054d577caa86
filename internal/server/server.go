package server

import (
	"language-mirror-be/internal/config"
	"language-mirror-be/internal/controller"
	"language-mirror-be/internal/pkg/logger"
	"language-mirror-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app    *fiber.App
	cfg    *config.Config
	logger logger.ILogger
}

func NewServer(cfg *config.Config, log logger.ILogger, discussion *controller.DiscussionController, admin *controller.AdminController) *Server {
	app := fiber.New(fiber.Config{
		AppName: "language-mirror-be",
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
		},
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", nil))
	})

	api := app.Group("/api/v1")

	discussions := api.Group("/discussions")
	discussions.Post("/level", discussion.SetLevel)
	discussions.Post("/start", discussion.Start)
	discussions.Post("/message", discussion.Message)
	discussions.Post("/stop", discussion.Stop)
	discussions.Post("/feedback", discussion.Feedback)

	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)

	protected := adminGroup.Use(serverutils.NewJwtMiddleware(cfg.Admin.JWTSecret))
	protected.Get("/users", admin.ListUsers)
	protected.Get("/feedback", admin.ListFeedback)
	protected.Get("/sessions/:session_id/turns", admin.SessionTurns)
	protected.Get("/stats", admin.Stats)
	protected.Get("/logs", admin.Logs)
	protected.Post("/users/:telegram_id/reset-bonus", admin.ResetBonusFlag)

	return &Server{app: app, cfg: cfg, logger: log}
}

func (s *Server) Start() error {
	s.logger.Info("server", "http server listening", map[string]interface{}{
		"port": s.cfg.App.Port,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
