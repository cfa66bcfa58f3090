package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vyam/fitness-app/internal/service"
)

// Services bundles the dependencies the HTTP layer needs.
type Services struct {
	Auth     service.AuthService
	Profile  service.ProfileService
	Catalog  service.CatalogService
	Sessions service.SessionService
}

// SetupRoutes registers every endpoint on router. gatherer backs /metrics;
// pass nil to leave it out.
func SetupRoutes(router *gin.Engine, svc Services, gatherer prometheus.Gatherer) {
	authHandler := NewAuthHandler(svc.Auth)
	profileHandler := NewProfileHandler(svc.Profile)
	workoutHandler := NewWorkoutHandler(svc.Catalog)
	sessionHandler := NewSessionHandler(svc.Sessions)

	authMiddleware := AuthMiddleware(svc.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.SignUp)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		profileGroup := protected.Group("/profile")
		{
			profileGroup.POST("", profileHandler.CreateProfile)
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PATCH("", profileHandler.UpdateProfile)
		}

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.POST("/refresh", workoutHandler.RefreshCatalog)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.GET("/:id/image-url", workoutHandler.GetImageURL)
		}

		favoritesGroup := protected.Group("/favorites")
		{
			favoritesGroup.GET("", profileHandler.ListFavorites)
			favoritesGroup.PUT("/:workoutId", profileHandler.AddFavorite)
			favoritesGroup.DELETE("/:workoutId", profileHandler.RemoveFavorite)
			favoritesGroup.POST("/:workoutId/toggle", profileHandler.ToggleFavorite)
		}

		historyGroup := protected.Group("/history")
		{
			historyGroup.GET("", profileHandler.GetHistory)
			historyGroup.GET("/stats", profileHandler.GetHistoryStats)
		}

		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.StartSession)
			sessionGroup.GET("/current", sessionHandler.GetCurrent)
			sessionGroup.GET("/current/events", sessionHandler.Events)
			sessionGroup.POST("/current/pause", sessionHandler.Pause)
			sessionGroup.POST("/current/resume", sessionHandler.Resume)
			sessionGroup.POST("/current/next", sessionHandler.Next)
			sessionGroup.POST("/current/previous", sessionHandler.Previous)
			sessionGroup.POST("/current/quit", sessionHandler.Quit)
		}
	}
}
