package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"

	"quizforge-backend/internal/config"
	"quizforge-backend/internal/database"
	"quizforge-backend/internal/handlers"
	"quizforge-backend/internal/middleware"
	"quizforge-backend/internal/repository"
	"quizforge-backend/internal/router"
	"quizforge-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting QuizForge Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL, int32(cfg.DatabaseMaxConns))
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Step 6: Initialize Blob Storage Client ────
	storageClient, err := storage.NewClient(context.Background())
	if err != nil {
		log.Fatalf("✗ Blob storage client initialization failed: %v", err)
	}
	defer storageClient.Close()
	log.Println("✓ Blob storage client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, redisClient, jwtAuth)
	uploadService := services.NewUploadService(storageClient, cfg.StorageBucket, cfg.StorageAccessID, []byte(cfg.StoragePrivateKey))
	extractService := services.NewExtractService(geminiService)
	youtubeService := services.NewYouTubeService(redisClient)
	planLimitService := services.NewPlanLimitService(userRepo, cfg.FreeDailyLimit)
	billingService := services.NewBillingService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripePriceID, cfg.FrontendURL, userRepo)

	translateService, err := services.NewTranslateService(cfg.TranslateAPIKey, redisClient)
	if err != nil {
		log.Fatalf("✗ Translate client initialization failed: %v", err)
	}
	defer translateService.Close()

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	generateHandler := handlers.NewGenerateHandler(geminiService, planLimitService)
	mediaHandler := handlers.NewMediaHandler(uploadService, extractService, geminiService, planLimitService)
	summaryHandler := handlers.NewSummaryHandler(geminiService, planLimitService)
	explainHandler := handlers.NewExplainHandler(geminiService, planLimitService)
	uploadHandler := handlers.NewUploadHandler(uploadService, extractService)
	youtubeHandler := handlers.NewYouTubeHandler(youtubeService, geminiService, geminiService, planLimitService)
	translateHandler := handlers.NewTranslateHandler(translateService)
	billingHandler := handlers.NewBillingHandler(billingService, userRepo)

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		generateHandler,
		mediaHandler,
		summaryHandler,
		explainHandler,
		uploadHandler,
		youtubeHandler,
		translateHandler,
		billingHandler,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ QuizForge Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
