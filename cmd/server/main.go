package main

import (
	"fmt"
	"log"
	"net/http"

	"campuslink/backend/internal/auth"
	"campuslink/backend/internal/cache"
	"campuslink/backend/internal/config"
	"campuslink/backend/internal/database"
	"campuslink/backend/internal/handler"
	"campuslink/backend/internal/metrics"
	"campuslink/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Swagger imports
	_ "campuslink/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           CampusLink API
// @version         1.0
// @description     This is the API for the CampusLink service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL, config.AppConfig.ReplicaURLs())

	suggestionCache := cache.New(config.AppConfig.RedisAddr, config.AppConfig.RedisPassword)

	users := service.NewUserService(database.DB)
	connections := service.NewConnectionService(database.DB, suggestionCache)
	posts := service.NewPostService(database.DB, connections)

	authHandler := handler.NewAuthHandler(users)
	profileHandler := handler.NewProfileHandler(users)
	connectionHandler := handler.NewConnectionHandler(connections, users)
	postHandler := handler.NewPostHandler(posts)

	router := gin.Default()
	router.Use(metrics.Middleware())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
			authRoutes.POST("/reset-password", authHandler.ResetPassword)
		}

		// Profile routes
		profileRoutes := apiV1.Group("/profile")
		{
			me := profileRoutes.Group("/me")
			me.Use(auth.AuthMiddleware())
			{
				me.GET("", profileHandler.GetMe)
				me.PATCH("", profileHandler.UpdateMe)
				me.DELETE("", profileHandler.DeleteMe)
				me.POST("/verify-school-email", profileHandler.VerifySchoolEmail)
			}

			profileRoutes.GET("/search", auth.AuthMiddleware(), profileHandler.Search) // Must be before /:id
			profileRoutes.GET("/:id", profileHandler.GetProfile)
		}

		// Anyone may list a user's accepted connections
		apiV1.GET("/connections/user/:id", connectionHandler.UserConnections)

		// Connection routes (protected)
		connectionRoutes := apiV1.Group("/connections")
		connectionRoutes.Use(auth.AuthMiddleware())
		{
			connectionRoutes.POST("/request/:id", connectionHandler.Request)
			connectionRoutes.POST("/accept/:id", connectionHandler.Accept)
			connectionRoutes.POST("/reject/:id", connectionHandler.Reject)
			connectionRoutes.DELETE("/cancel/:id", connectionHandler.Cancel)
			connectionRoutes.DELETE("/remove/:id", connectionHandler.Remove)
			connectionRoutes.POST("/block/:id", connectionHandler.Block)
			connectionRoutes.DELETE("/unblock/:id", connectionHandler.Unblock)

			connectionRoutes.GET("/my-connections", connectionHandler.MyConnections)
			connectionRoutes.GET("/requests/received", connectionHandler.RequestsReceived)
			connectionRoutes.GET("/requests/sent", connectionHandler.RequestsSent)
			connectionRoutes.GET("/status/:id", connectionHandler.Status)
			connectionRoutes.GET("/mutual/:id", connectionHandler.Mutual)
			connectionRoutes.GET("/suggestions", connectionHandler.Suggestions)
			connectionRoutes.GET("/stats", connectionHandler.Stats)
		}

		// Post routes; reads work anonymously, writes require auth
		postRoutes := apiV1.Group("/posts")
		{
			public := postRoutes.Group("")
			public.Use(auth.OptionalAuthMiddleware())
			{
				public.GET("/public", postHandler.Public) // Must be before /:id
				public.GET("/user/:id", postHandler.UserPosts)
				public.GET("/:id", postHandler.Get)
				public.GET("/:id/comments", postHandler.Comments)
				public.GET("/comments/:id/replies", postHandler.Replies)
			}

			protected := postRoutes.Group("")
			protected.Use(auth.AuthMiddleware())
			{
				protected.POST("", postHandler.Create)
				protected.GET("/feed", postHandler.Feed)
				protected.PUT("/:id", postHandler.Update)
				protected.DELETE("/:id", postHandler.Delete)
				protected.POST("/:id/like", postHandler.ToggleLike)
				protected.GET("/:id/likes", postHandler.Likes)
				protected.POST("/:id/comments", postHandler.AddComment)
				protected.PUT("/comments/:id", postHandler.UpdateComment)
				protected.DELETE("/comments/:id", postHandler.DeleteComment)
			}
		}
	}

	addr := config.AppConfig.ServerAddr
	fmt.Printf("Server is running on %s\n", addr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(addr))
}
