package main

import (
	"fmt"
	"log"
	"net/http"

	"gameo/backend/internal/auth"
	"gameo/backend/internal/config"
	"gameo/backend/internal/database"
	"gameo/backend/internal/enrichment"
	"gameo/backend/internal/handler"
	"gameo/backend/internal/library"
	"gameo/backend/internal/psn"
	"gameo/backend/internal/steam"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "gameo/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Gameo API
// @version         1.0
// @description     This is the API for the Gameo service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.AppConfig

	// Connect to the database
	database.Connect(cfg.DatabaseURL)

	// Wire the sync/enrichment core
	enricher := enrichment.NewCoordinator(cfg.PSNSearchURL, enrichment.NewMemoryCache())
	steamClient := steam.NewClient(cfg.SteamAPIKey, cfg.SteamAPIURL, cfg.SteamStoreURL)
	psnAuth := psn.NewAuthenticator(cfg.PSNNpsso, cfg.PSNAuthURL)
	psnClient := psn.NewClient(psnAuth, cfg.PSNTrophyURL)
	libraryService := library.NewService(database.DB, enricher, cfg.SyncConcurrency)

	handler.Init(libraryService, enricher, steamClient, psnClient)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

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
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.PUT("/me", handler.UpdateProfile)
			userRoutes.GET("/:id", handler.GetUserByID)
		}

		// Game library routes (protected)
		gameRoutes := apiV1.Group("/games")
		gameRoutes.Use(auth.AuthMiddleware())
		{
			gameRoutes.GET("", handler.GetGames)
			gameRoutes.POST("", handler.AddGame)
			gameRoutes.GET("/enrich", handler.EnrichGame) // Must be before /:id
			gameRoutes.GET("/:id", handler.GetGameByID)
			gameRoutes.PUT("/:id", handler.UpdateGame)
			gameRoutes.DELETE("/:id", handler.DeleteGame)
		}

		// Post routes (feed is public, writes are protected)
		postRoutes := apiV1.Group("/posts")
		{
			postRoutes.GET("", auth.OptionalAuthMiddleware(), handler.GetFeed)
			postRoutes.GET("/:id", auth.OptionalAuthMiddleware(), handler.GetPostByID)
			postRoutes.GET("/:id/comments", handler.GetComments)

			protected := postRoutes.Group("")
			protected.Use(auth.AuthMiddleware())
			{
				protected.POST("", handler.CreatePost)
				protected.DELETE("/:id", handler.DeletePost)
				protected.POST("/:id/like", handler.ToggleLike)
				protected.POST("/:id/comments", handler.CreateComment)
				protected.DELETE("/:id/comments/:commentID", handler.DeleteComment)
			}
		}

		// Budget routes (protected)
		budgetRoutes := apiV1.Group("/budget")
		budgetRoutes.Use(auth.AuthMiddleware())
		{
			budgetRoutes.POST("", handler.CreateBudgetEntry)
			budgetRoutes.GET("", handler.GetBudgetEntries)
			budgetRoutes.GET("/summary", handler.GetBudgetSummary)
			budgetRoutes.PUT("/:id", handler.UpdateBudgetEntry)
			budgetRoutes.DELETE("/:id", handler.DeleteBudgetEntry)
		}

		// Integration routes (protected)
		integrationRoutes := apiV1.Group("/integrations")
		integrationRoutes.Use(auth.AuthMiddleware())
		{
			integrationRoutes.GET("", handler.GetLinkedAccounts)
			integrationRoutes.POST("/:provider", handler.LinkAccount)
			integrationRoutes.DELETE("/:provider", handler.UnlinkAccount)
			integrationRoutes.POST("/:provider/sync", handler.SyncLibrary)
		}
	}

	fmt.Println("Server is running on :" + cfg.Port)
	fmt.Println("Swagger UI is available at http://localhost:" + cfg.Port + "/swagger/index.html")
	log.Fatal(router.Run(":" + cfg.Port))
}
