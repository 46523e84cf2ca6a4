package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codedoctor/codedoctor/internal/handlers"
	"github.com/codedoctor/codedoctor/internal/repositories"
	"github.com/codedoctor/codedoctor/internal/services"
	"github.com/codedoctor/codedoctor/pkg/config"
	"github.com/codedoctor/codedoctor/pkg/database"
	"github.com/codedoctor/codedoctor/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.Init()

	// Initialize database
	if err := database.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize repositories
	agentRepo := repositories.NewAgentRepository(database.DB)
	mappingRepo := repositories.NewAgentRepoMappingRepository(database.DB)
	repoRepo := repositories.NewRepositoryRepository(database.DB)
	prRepo := repositories.NewPullRequestRepository(database.DB)
	evalRepo := repositories.NewEvaluationRepository(database.DB)
	runRepo := repositories.NewEvaluationRunRepository(database.DB)

	// Initialize services
	agentService := services.NewAgentService(agentRepo, mappingRepo)
	repositoryService := services.NewRepositoryService(repoRepo, mappingRepo, agentRepo)
	reviewService := services.NewReviewService(evalRepo)
	evaluationService := services.NewEvaluationService(database.DB, repoRepo, prRepo, evalRepo, runRepo)
	openaiService := services.NewOpenAIService()

	githubService, err := services.NewGitHubAppService()
	if err != nil {
		log.Fatalf("Failed to initialize GitHub App service: %v", err)
	}

	webhookService := services.NewWebhookService(
		githubService,
		githubService,
		openaiService,
		agentService,
		evaluationService,
		config.AppConfig.OpenAI.EvaluationVersion,
	)

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	agentHandler := handlers.NewAgentHandler(agentService)
	repositoryHandler := handlers.NewRepositoryHandler(repositoryService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Initialize router
	router := gin.Default()

	setupRoutes(router, webhookHandler, agentHandler, repositoryHandler, reviewHandler)

	// Setup server
	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

func setupRoutes(
	router *gin.Engine,
	webhookHandler *handlers.WebhookHandler,
	agentHandler *handlers.AgentHandler,
	repositoryHandler *handlers.RepositoryHandler,
	reviewHandler *handlers.ReviewHandler,
) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Running ...")
	})

	api := router.Group("/api")
	{
		api.GET("/webhook/github", webhookHandler.Liveness)
		api.POST("/webhook/github", webhookHandler.Handle)

		agents := api.Group("/agents")
		{
			agents.GET("", agentHandler.ListAgents)
			agents.GET("/:id", agentHandler.GetAgent)
			agents.POST("", agentHandler.CreateAgent)
			agents.PUT("/:id", agentHandler.UpdateAgent)
			agents.DELETE("/:id", agentHandler.DeleteAgent)
		}

		repos := api.Group("/repositories")
		{
			repos.GET("", repositoryHandler.ListRepositories)
			repos.GET("/with-agents", repositoryHandler.ListRepositoriesWithAgents)
			repos.GET("/github/:githubRepoId", repositoryHandler.GetRepositoryByGithubID)
			repos.GET("/fullname/*fullName", repositoryHandler.GetRepositoryByFullName)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("", reviewHandler.ListReviews)
			reviews.GET("/stats", reviewHandler.GetReviewStats)
			reviews.GET("/export", reviewHandler.ExportReviews)
		}
	}
}
