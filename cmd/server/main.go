package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"riddle-game/internal/admin"
	"riddle-game/internal/auth"
	"riddle-game/internal/config"
	"riddle-game/internal/email"
	"riddle-game/internal/game"
	"riddle-game/internal/models"
	"riddle-game/pkg/cache"
	"riddle-game/pkg/database"
	"riddle-game/pkg/websocket"

	"github.com/gorilla/mux"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is required")
	}

	// Initialize database
	db, err := database.NewPostgresDB(&database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Riddle{},
		&models.Folder{},
		&models.GameState{},
		&models.UnlockedFolder{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache (OTP store + leaderboard projection)
	redisCache := cache.NewRedisCache(cfg.RedisAddr)

	// Initialize email delivery
	emailService, err := email.NewService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize WebSocket hub for leaderboard observers
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Initialize repositories
	authRepo := auth.NewRepository(db)
	gameRepo := game.NewRepository(db)
	adminRepo := admin.NewRepository(db)

	// Initialize services
	authService := auth.NewService(authRepo, redisCache, emailService, cfg.JWTSecret)
	gameService := game.NewService(gameRepo, redisCache, wsHub)
	adminService := admin.NewService(adminRepo)
	wsHub.SetLeaderboardProvider(gameService)

	// Initialize handlers
	authHandler := auth.NewHandler(authService)
	gameHandler := game.NewHandler(gameService)
	adminHandler := admin.NewHandler(adminService, gameService)

	// Setup router
	router := mux.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	// Auth routes - no JWT required
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/verify-otp", authHandler.VerifyOTP).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/resend-otp", authHandler.ResendOTP).Methods("POST", "OPTIONS")

	// Game routes - JWT required
	gameRouter := router.PathPrefix("/api/game").Subrouter()
	gameRouter.Use(auth.JWTMiddleware(cfg.JWTSecret))
	gameRouter.HandleFunc("/state", gameHandler.GetGameState).Methods("GET", "OPTIONS")
	gameRouter.HandleFunc("/folders", gameHandler.GetAllFolders).Methods("GET", "OPTIONS")
	gameRouter.HandleFunc("/folder/{folderId}", gameHandler.GetFolderDetails).Methods("GET", "OPTIONS")
	gameRouter.HandleFunc("/answer/{folderId}", gameHandler.SubmitAnswer).Methods("POST", "OPTIONS")

	// Admin routes - JWT + admin flag required
	adminRouter := router.PathPrefix("/api/admin").Subrouter()
	adminRouter.Use(auth.JWTMiddleware(cfg.JWTSecret), auth.AdminMiddleware)
	adminRouter.HandleFunc("/riddles", adminHandler.AddRiddle).Methods("POST", "OPTIONS")
	adminRouter.HandleFunc("/riddles", adminHandler.GetAllRiddles).Methods("GET")
	adminRouter.HandleFunc("/folders", adminHandler.AddFolder).Methods("POST", "OPTIONS")
	adminRouter.HandleFunc("/folders", adminHandler.GetAllFolders).Methods("GET")
	adminRouter.HandleFunc("/users", adminHandler.GetAllUsers).Methods("GET")
	adminRouter.HandleFunc("/users/{userId}/toggle-admin", adminHandler.ToggleAdminStatus).Methods("PUT", "OPTIONS")
	adminRouter.HandleFunc("/leaderboard", adminHandler.GetLeaderboard).Methods("GET")

	// WebSocket endpoint for live leaderboard
	router.HandleFunc("/ws/leaderboard", wsHub.HandleWebSocket)

	// Initialize random seed for OTP generation
	rand.Seed(time.Now().UnixNano())

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown setup
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}
