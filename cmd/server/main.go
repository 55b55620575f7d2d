package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"

	"streamrelay/pkg/cache"
	"streamrelay/pkg/chat"
	"streamrelay/pkg/config"
	"streamrelay/pkg/database"
	"streamrelay/pkg/handlers"
	"streamrelay/pkg/repository"
	"streamrelay/pkg/server"
	"streamrelay/pkg/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[RELAY] config: %v", err)
	}

	db := database.Connect(cfg.DatabaseURL)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("[RELAY] migrate: %v", err)
	}

	log.Println("[RELAY] Connecting to Redis...")
	redis := cache.New(cfg.RedisURL)
	defer redis.Close()
	log.Println("[RELAY] Redis connected")

	repo, err := repository.NewChatRepository(db)
	if err != nil {
		log.Fatalf("[RELAY] repository: %v", err)
	}

	hub := chat.New(repo, cfg.HistorySize)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	streams := services.NewStreamsService(cfg.YouTubeAPIKey, redis, cfg.CacheTTL)

	streamsHandler := handlers.NewStreams(streams)
	chatHandler := handlers.NewChat(hub)

	app := server.NewApp("stream-relay", cfg.AllowOrigins)

	api := app.Group("/api")
	api.Get("/live-stream-details/:videoId", limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), streamsHandler.LiveStreamDetails)
	api.Get("/music-recommendations", streamsHandler.MusicRecommendations)

	chatGroup := app.Group("/chat")
	chatGroup.Get("/status", chatHandler.Status)
	chatGroup.Get("/history", chatHandler.History)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		chat.NewSession(uuid.NewString(), conn, hub).Run()
	}))

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Route not found",
		})
	})

	addr := "0.0.0.0:" + cfg.Port
	log.Printf("[RELAY] WebSocket: ws://<domain>/ws")
	log.Printf("[RELAY] Server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("[RELAY] Failed to start: %v", err)
	}
}
