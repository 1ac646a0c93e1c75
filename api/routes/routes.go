package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pnl-league/competition-backend/internal/config"
	"github.com/pnl-league/competition-backend/internal/handlers"
	"github.com/pnl-league/competition-backend/internal/middleware"
	"github.com/pnl-league/competition-backend/internal/services"
)

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, drawService services.DrawService, userService services.UserService) *gin.Engine {
	// Create router
	router := gin.Default()

	// Add middleware
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Create handlers
	drawHandler := handlers.NewDrawHandler(drawService)
	userHandler := handlers.NewUserHandler(userService)

	// Public routes
	public := router.Group("/api/v1")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		// Competition entry and profiles
		public.POST("/traders/join", userHandler.Join)
		public.PUT("/traders/profile", userHandler.UpdateProfile)

		// Leaderboard and headline stats
		public.GET("/leaderboard", userHandler.Leaderboard)
		public.GET("/stats", userHandler.Stats)

		// Draw history
		draws := public.Group("/draws")
		{
			draws.GET("", drawHandler.GetRecentDraws)
			draws.GET("/:drawId", drawHandler.GetDrawByDrawID)
			draws.GET("/season/:seasonId", drawHandler.GetDrawsBySeason)
		}
	}

	return router
}
