package main

import (
	"log"

	"partyquiz/config"
	"partyquiz/handlers"
	"partyquiz/middleware"
	"partyquiz/models"
	"partyquiz/routes"
	"partyquiz/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	// Finished games are archived to postgres when configured; the live game
	// never depends on it.
	var recorder services.Recorder
	if cfg.DBEnabled {
		db, err := config.InitDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		if err := db.AutoMigrate(
			&models.GameRecord{},
			&models.PlayerRecord{},
			&models.AnswerRecord{},
		); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		recorder = services.NewGormRecorder(db)
	}

	// Live session snapshots go to Redis when configured, memory otherwise.
	var store services.SessionStore
	if redisClient := config.InitRedis(cfg); redisClient != nil {
		store = services.NewRedisSessionStore(redisClient, cfg.SessionTTL)
		log.Printf("Using Redis session store at %s", cfg.RedisAddr)
	} else {
		store = services.NewMemorySessionStore()
		log.Printf("Using in-memory session store")
	}

	authService, err := services.NewAuthService(cfg.HostPassword, cfg.JWTSecret)
	if err != nil {
		log.Fatal("Failed to initialize auth:", err)
	}

	gameService := services.NewGameService(store, recorder, cfg.TimeLimit)

	hub := services.NewHub(gameService)
	gameService.SetBroadcaster(hub)
	go hub.Run()

	hostHandler := handlers.NewHostHandler(gameService, authService)
	gameHandler := handlers.NewGameHandler(gameService, cfg.BaseURL)

	router := gin.Default()
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, hostHandler, gameHandler, hub, gameService, authService)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
