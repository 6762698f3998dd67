package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"

	"friendly/internal/apptypes"
	"friendly/internal/config"
	"friendly/internal/geo"
	"friendly/internal/handlers/apiserver"
	appKafka "friendly/internal/kafka"
	"friendly/internal/matching"
	"friendly/internal/middleware"
	appRedis "friendly/internal/redis"
	"friendly/internal/services"
	"friendly/internal/storage"
	"friendly/internal/websocket"
)

func main() {
	// 1. Load configuration.
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Database.
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Printf("Warning: table migration failed: %v", err)
	}

	// 3. Redis, backing the token blacklist and CSRF store.
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	tokenBlacklist := appRedis.NewRedisTokenBlacklist(redisClient)
	csrfStore := appRedis.NewRedisCSRFStore(redisClient)

	// 4. Repositories.
	userRepo := storage.NewGormUserRepository(db)
	interestRepo := storage.NewGormInterestRepository(db)
	notificationRepo := storage.NewGormNotificationRepository(db)

	// 5. Zip proximity. A neighbor table is preferred; without one the
	// numeric-prefix window stands in.
	var proximity matching.ZipProximity
	if cfg.Matching.ZipTablePath != "" {
		table, err := geo.LoadTable(cfg.Matching.ZipTablePath)
		if err != nil {
			log.Fatalf("Failed to load zip neighbor table %s: %v", cfg.Matching.ZipTablePath, err)
		}
		proximity = table
	} else {
		log.Println("No zip neighbor table configured, using prefix proximity.")
		proximity = geo.PrefixProximity{}
	}

	// 6. Kafka producer. Match events only feed notifications, so a broker
	// outage must not take the API down.
	var producer appKafka.MessageProducer
	if p, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka); err != nil {
		log.Printf("Warning: Kafka producer unavailable, match events disabled: %v", err)
	} else {
		producer = p
		defer producer.Close()
	}

	// 7. Storage service for profile photos.
	var storageService apptypes.StorageService
	storageBaseURL := "/uploads"
	switch cfg.Storage.Type {
	case "local":
		storageService, err = storage.NewLocalStorageService(cfg.Storage, storageBaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
	default:
		log.Fatalf("Unsupported storage type: %s", cfg.Storage.Type)
	}

	// 8. WebSocket hub for live match pushes.
	hub := websocket.NewHub()
	go hub.Run()

	// 9. Services.
	authService := services.NewAuthService(userRepo, storageService, tokenBlacklist, csrfStore, cfg.Auth)
	userService := services.NewUserService(userRepo)
	matchService := services.NewMatchService(userRepo, interestRepo, proximity, producer, cfg.Kafka, cfg.Matching)
	notificationService := services.NewNotificationService(notificationRepo, hub)

	// 10. Handlers.
	authHandler := apiserver.NewAuthHandler(authService, cfg.Storage)
	userHandler := apiserver.NewUserHandler(userService)
	matchHandler := apiserver.NewMatchHandler(matchService)
	uploadHandler := apiserver.NewUploadHandler(storageService, userService, cfg.Storage)
	notificationHandler := apiserver.NewNotificationHandler(notificationService, hub, cfg.WebSocket)

	// 11. Routes.
	r := mux.NewRouter()

	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	authMW := middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklist)
	csrfMW := middleware.CSRFMiddleware(csrfStore)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW, csrfMW)

	apiRouter.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	apiRouter.HandleFunc("/users/me", userHandler.GetMe).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/me", userHandler.UpdateMe).Methods(http.MethodPut)
	apiRouter.HandleFunc("/candidates", matchHandler.Candidates).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{username}/match", matchHandler.Match).Methods(http.MethodPost)
	apiRouter.HandleFunc("/users/{username}/no-match", matchHandler.NoMatch).Methods(http.MethodPost)
	apiRouter.HandleFunc("/users/{username}/potential-matches", matchHandler.PotentialMatches).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{username}/matches", matchHandler.Matches).Methods(http.MethodGet)
	apiRouter.HandleFunc("/upload", uploadHandler.UploadPhoto).Methods(http.MethodPost)
	apiRouter.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notifications/{id:[0-9]+}/read", notificationHandler.MarkRead).Methods(http.MethodPost)

	// The websocket route authenticates like the API but skips the CSRF
	// check; browsers cannot set custom headers on websocket upgrades.
	wsRouter := r.PathPrefix("/ws").Subrouter()
	wsRouter.Use(authMW)
	wsRouter.HandleFunc("/notifications", notificationHandler.ServeWs)

	// Static serving for uploaded photos.
	if cfg.Storage.Type == "local" {
		staticPath := strings.TrimSuffix(storageBaseURL, "/") + "/"
		r.PathPrefix(staticPath).Handler(http.StripPrefix(staticPath, http.FileServer(http.Dir(cfg.Storage.LocalPath))))
	}

	// 12. Kafka consumer feeding the notification store and the hub.
	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	defer cancelConsumers()
	if producer != nil {
		consumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
		if err != nil {
			log.Printf("Warning: Kafka consumer unavailable, notifications disabled: %v", err)
		} else {
			defer consumer.Close()
			go func() {
				topics := []string{cfg.Kafka.MatchEventTopic}
				err := consumer.Consume(consumerCtx, topics, cfg.Kafka.ConsumerGroup, notificationService.HandleMatchEvent)
				if err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("Kafka consumer error: %v", err)
				}
			}()
		}
	}

	// 13. HTTP server with CORS and graceful shutdown.
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsHandler := handlers.CORS(corsOptions...)(r)

	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      corsHandler,
		ReadTimeout:  cfg.APIServer.ReadTimeout,
		WriteTimeout: cfg.APIServer.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	}

	go func() {
		log.Printf("API server listening on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, stopping API server...")

	cancelConsumers()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("API server stopped.")
}
