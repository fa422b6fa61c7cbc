package router

import (
	"strings"

	"cleanco-server/auth"
	"cleanco-server/config"
	"cleanco-server/errors"
	"cleanco-server/handlers"
	"cleanco-server/logger"
	"cleanco-server/metrics"
	"cleanco-server/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func New(cfg *config.Config, h *handlers.Handler, revoker auth.Revoker, m *metrics.Metrics, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "clean co server",
		ErrorHandler:          errors.Handler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.RequestLogging(log))
	app.Use(middleware.RequestMetrics(m))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.ReplaceAll(cfg.CORSAllowOrigins, " ", ""),
		AllowCredentials: true,
	}))

	SetupRoutes(app, cfg, h, revoker, m, log)
	return app
}

func SetupRoutes(app *fiber.App, cfg *config.Config, h *handlers.Handler, revoker auth.Revoker, m *metrics.Metrics, log *logger.Logger) {
	authorize := middleware.Authorize(cfg, revoker, m, log)

	app.Get("/", h.GetRoot)
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1")

	//Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/access-token", h.IssueAccessToken)
	authGroup.Post("/register", h.Register)
	authGroup.Post("/logout", authorize, h.Logout)

	//Services
	api.Get("/services", authorize, h.GetServices)

	//Bookings
	user := api.Group("/user")
	user.Post("/create-booking", h.CreateBooking)
	user.Delete("/cancel-booking/:bookingId", h.CancelBooking)
	user.Get("/bookings", authorize, h.GetUserBookings)
}
