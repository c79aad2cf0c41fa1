// File: /routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serenity-api/auth"
	"serenity-api/config"
	"serenity-api/controllers"
	"serenity-api/middleware"
	"serenity-api/services"
)

// Deps carries everything route registration needs. All services are
// constructed once in main and passed down explicitly.
type Deps struct {
	Config       *config.Config
	Provider     auth.SessionProvider
	Registrar    auth.AccountRegistrar
	Validator    auth.TokenValidator
	Profiles     *services.ProfileService
	Friends      *services.FriendService
	EmailService *services.EmailService
}

func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	authController := controllers.NewAuthController(deps.Provider, deps.Registrar, deps.Profiles, deps.EmailService)
	userController := controllers.NewUserController(deps.Profiles)
	friendController := controllers.NewFriendController(deps.Friends, deps.Profiles)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(120, 30))

	// Auth routes (public)
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", authController.Register)
		authGroup.POST("/login", authController.Login)
		authGroup.POST("/verify-code", authController.VerifyCode)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.Validator))
	{
		protected.POST("/auth/logout", authController.Logout)
		protected.GET("/auth/me", authController.Me)

		users := protected.Group("/users")
		{
			users.GET("/profile", userController.GetProfile)
			users.PUT("/profile", userController.UpdateProfile)
		}

		friends := protected.Group("/friends")
		{
			friends.GET("/", friendController.GetFriends)
			friends.GET("/requests", friendController.GetPendingRequests)
			friends.POST("/request/:user_id", friendController.SendFriendRequest)
			friends.POST("/accept/:request_id", friendController.AcceptFriendRequest)
			friends.POST("/reject/:request_id", friendController.RejectFriendRequest)
			friends.DELETE("/:user_id", friendController.RemoveFriend)
		}
	}
}
