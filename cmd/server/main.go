package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/Aidos2201/ReelRivals/internal/catalog"
	"github.com/Aidos2201/ReelRivals/internal/config"
	"github.com/Aidos2201/ReelRivals/internal/database"
	"github.com/Aidos2201/ReelRivals/internal/handlers"
	"github.com/Aidos2201/ReelRivals/internal/jobs"
	"github.com/Aidos2201/ReelRivals/internal/repository"
	"github.com/Aidos2201/ReelRivals/internal/services"
	"github.com/Aidos2201/ReelRivals/pkg/email"
	"github.com/Aidos2201/ReelRivals/pkg/logger"
	"github.com/Aidos2201/ReelRivals/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// Connect to Redis for catalog caching
	redisClient, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Redis connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	activityRepo := repository.NewActivityRepository(db, cfg.ActivityFeedCap)
	challengeRepo := repository.NewChallengeRepository(db)
	codeRepo := repository.NewCodeRepository(db)

	// --- External collaborators ---
	provider := catalog.NewCachedProvider(
		catalog.NewClient(cfg.CatalogAPIKey, cfg.CatalogBaseURL),
		redisClient,
	)

	// --- Services ---
	userService := services.NewUserService(userRepo, codeRepo, email.SMTPSender{}, cfg)
	entryService := services.NewEntryService(entryRepo, activityRepo)
	friendService := services.NewFriendService(friendRepo, userRepo, activityRepo)
	activityService := services.NewActivityService(activityRepo)
	challengeService := services.NewChallengeService(challengeRepo, entryService, provider, activityRepo, cfg.QuizTimeLimitMin)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService)
	entryHandler := handlers.NewEntryHandler(entryService)
	friendHandler := handlers.NewFriendHandler(friendService)
	activityHandler := handlers.NewActivityHandler(activityService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	catalogHandler := handlers.NewCatalogHandler(provider)

	// Background sweep forcing overdue quizzes to completion
	quizExpiry := jobs.NewQuizExpiry(challengeService, cfg.QuizSweepEvery)
	quizExpiry.Start(context.Background())
	defer quizExpiry.Stop()

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Auth routes (the only unauthenticated surface)
	router.HandleFunc("/auth/request-code", userHandler.RequestCodeHandler).Methods("POST")
	router.HandleFunc("/auth/verify", userHandler.VerifyCodeHandler).Methods("POST")

	// User routes
	userRoutes := router.PathPrefix("/users").Subrouter()
	userRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	userRoutes.HandleFunc("", userHandler.GetUsersHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PUT")

	// Watch ledger routes
	entryRoutes := router.PathPrefix("/entries").Subrouter()
	entryRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	entryRoutes.HandleFunc("", entryHandler.UpsertEntryHandler).Methods("POST")
	entryRoutes.HandleFunc("", entryHandler.GetEntriesHandler).Methods("GET")
	entryRoutes.HandleFunc("", entryHandler.DeleteEntryHandler).Methods("DELETE")

	// Friendship routes
	socialRoutes := router.PathPrefix("/social").Subrouter()
	socialRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	socialRoutes.HandleFunc("/request", friendHandler.RequestHandler).Methods("POST")
	socialRoutes.HandleFunc("/accept", friendHandler.AcceptHandler).Methods("POST")
	socialRoutes.HandleFunc("/reject", friendHandler.RejectHandler).Methods("POST")
	socialRoutes.HandleFunc("/friends", friendHandler.FriendsHandler).Methods("GET")
	socialRoutes.HandleFunc("/requests/pending", friendHandler.PendingHandler).Methods("GET")
	socialRoutes.HandleFunc("/requests/outgoing", friendHandler.OutgoingHandler).Methods("GET")

	// Activity feed
	activityRoutes := router.PathPrefix("/activity").Subrouter()
	activityRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	activityRoutes.HandleFunc("", activityHandler.FeedHandler).Methods("GET")

	// Challenge routes
	challengeRoutes := router.PathPrefix("/challenges").Subrouter()
	challengeRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	challengeRoutes.HandleFunc("", challengeHandler.CreateHandler).Methods("POST")
	challengeRoutes.HandleFunc("", challengeHandler.ListHandler).Methods("GET")
	challengeRoutes.HandleFunc("", challengeHandler.DeleteHandler).Methods("DELETE")
	challengeRoutes.HandleFunc("/{id}", challengeHandler.UpdateHandler).Methods("PUT")
	challengeRoutes.HandleFunc("/{id}/pick", challengeHandler.PickHandler).Methods("POST")
	challengeRoutes.HandleFunc("/{id}/guess", challengeHandler.GuessHandler).Methods("POST")
	challengeRoutes.HandleFunc("/{id}/skip", challengeHandler.SkipHandler).Methods("POST")
	challengeRoutes.HandleFunc("/{id}/ranking", challengeHandler.RankingHandler).Methods("POST")

	// Catalog proxy
	catalogRoutes := router.PathPrefix("/catalog").Subrouter()
	catalogRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	catalogRoutes.HandleFunc("/search", catalogHandler.SearchHandler).Methods("GET")
	catalogRoutes.HandleFunc("/movies/{id}", catalogHandler.MovieHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
