package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"shop-bot/config"
	"shop-bot/handlers"
	"shop-bot/middleware"
	"shop-bot/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	// Initialize structured logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := services.InitMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer db.Disconnect(ctx)

	// Initialize services and indexes
	services.InitServices(db, cfg.DatabaseName)

	// Bootstrap the dashboard admin account
	if err := services.EnsureAdminUser(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		slog.Error("Failed to ensure admin user", "error", err)
	}

	// Chat gateway rate limiter, scoped to this gateway's lifetime
	limiter := services.NewRateLimiter(
		cfg.RateLimitMinSpacing,
		cfg.RateLimitWindow,
		cfg.RateLimitMaxPerWindow,
	)

	// Background cleanup of expired sessions and stale rate-limit windows
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	services.StartCleanup(cleanupCtx, limiter)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("Request error", "error", err, "status", code)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Bot-Secret",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path}\n",
	}))

	// Auth routes
	auth := app.Group("/auth")
	auth.Post("/login", handlers.Login)
	auth.Post("/logout", handlers.Logout)
	auth.Get("/me", handlers.GetCurrentUser)

	// Conversational endpoint (rate limited per client)
	api := app.Group("/api")
	api.Post("/chat", middleware.RateLimit(limiter), handlers.HandleChatMessage)

	// Bot-to-server machine endpoints (shared secret)
	bot := app.Group("/bot", middleware.RequireBotSecret(cfg.BotSecret))
	bot.Post("/orders", handlers.CreateBotOrder(cfg))
	bot.Post("/identity/link", handlers.LinkIdentity)

	// Dashboard API endpoints (session auth)
	dashboard := app.Group("/api/dashboard", middleware.RequireAuth)
	dashboard.Get("/customers", handlers.GetCustomers)
	dashboard.Get("/customers/search", handlers.SearchCustomers)
	dashboard.Get("/orders", handlers.GetOrders)
	dashboard.Get("/orders/:orderID", handlers.GetOrderDetails)
	dashboard.Get("/conversations/:sessionID", handlers.GetConversation)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "shop-bot",
		})
	})

	// Start server
	slog.Info("Server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
