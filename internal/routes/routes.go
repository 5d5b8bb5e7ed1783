package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/gratia-app/gratia-backend/internal/config"
	"github.com/gratia-app/gratia-backend/internal/handlers"
	"github.com/gratia-app/gratia-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	profileHandler *handlers.ProfileHandler,
	pairingHandler *handlers.PairingHandler,
	journalHandler *handlers.JournalHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes (JWT required) - apply middleware to individual
	// routes so public routes stay untouched
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	api.Get("/me", middleware.JWTProtected(cfg), profileHandler.Me)
	api.Put("/me", middleware.JWTProtected(cfg), profileHandler.UpdateMe)
	api.Post("/avatar/upload-url", middleware.JWTProtected(cfg), profileHandler.AvatarUploadURL)

	pairing := api.Group("/pairing", middleware.JWTProtected(cfg))
	pairing.Post("/request", pairingHandler.Request)
	pairing.Get("/status", pairingHandler.Status)
	pairing.Delete("/partner", pairingHandler.RemovePartner)
	pairing.Post("/acknowledge", pairingHandler.Acknowledge)
	pairing.Get("/history", pairingHandler.History)

	journal := api.Group("/journal", middleware.JWTProtected(cfg))
	journal.Get("/entries", journalHandler.Entries)
	journal.Put("/entries", journalHandler.SaveDay)
	journal.Patch("/entries/:id", journalHandler.UpdateEntry)
	journal.Delete("/entries/:id", journalHandler.DeleteEntry)
	journal.Get("/feed", journalHandler.Feed)
	journal.Post("/feed", journalHandler.Append)
}
