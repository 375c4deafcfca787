package api

import (
	"streamflix-api/internal/middleware"
	"streamflix-api/internal/services"

	"github.com/gin-gonic/gin"
)

// Handler bundles the services behind the HTTP API
type Handler struct {
	Auth          *services.AuthService
	Subscriptions *services.SubscriptionService
	Invitations   *services.InvitationService
	Profiles      *services.ProfileService
	Catalog       *services.CatalogService
	Watchlist     *services.WatchlistService
	History       *services.HistoryService
	Tokens        *services.TokenService
	FrontendURL   string
}

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.GET("/activate", h.Activate)
			auth.POST("/forgot-password", h.ForgotPassword)
			auth.POST("/reset-password", h.ResetPassword)
		}

		// Catalog routes, a token only narrows the listing to a profile
		movies := api.Group("/movies")
		movies.Use(middleware.OptionalAuthMiddleware(h.Tokens))
		{
			movies.GET("", h.ListMovies)
			movies.GET("/:id", h.GetMovie)
		}

		// Everything below requires a bearer token
		secured := api.Group("")
		secured.Use(middleware.AuthMiddleware(h.Tokens))
		{
			secured.GET("/accounts/me", h.GetMyAccount)

			subscriptions := secured.Group("/subscriptions")
			{
				subscriptions.GET("/me", h.GetMySubscription)
				subscriptions.GET("/plans", h.ListPlans)
				subscriptions.POST("/subscribe", h.Subscribe)
			}

			invitations := secured.Group("/invitations")
			{
				invitations.POST("", h.CreateInvitation)
				invitations.GET("/me", h.ListSentInvitations)
			}

			profiles := secured.Group("/profiles")
			{
				profiles.GET("", h.ListProfiles)
				profiles.POST("", h.CreateProfile)
				profiles.PUT("/:id", h.UpdateProfile)
				profiles.DELETE("/:id", h.DeleteProfile)
				profiles.GET("/:id/watchlist", h.ListWatchlist)
				profiles.POST("/:id/watchlist", h.AddToWatchlist)
				profiles.DELETE("/:id/watchlist/:itemId", h.RemoveFromWatchlist)
				profiles.GET("/:id/history", h.ListHistory)
				profiles.GET("/:id/history/continue-watching", h.ContinueWatching)
				profiles.POST("/:id/history", h.RecordHistory)
				profiles.PATCH("/:id/history/:historyId", h.UpdateHistory)
				profiles.DELETE("/:id/history/:historyId", h.RemoveHistory)
				profiles.DELETE("/:id/history", h.ClearHistory)
			}
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "streamflix-api",
		})
	})
}
