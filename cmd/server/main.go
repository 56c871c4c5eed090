package main

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/augustos0204/room-stream-api/internal/config"
	"github.com/augustos0204/room-stream-api/internal/database"
	"github.com/augustos0204/room-stream-api/internal/events"
	"github.com/augustos0204/room-stream-api/internal/handlers"
	"github.com/augustos0204/room-stream-api/internal/identity"
	"github.com/augustos0204/room-stream-api/internal/metrics"
	"github.com/augustos0204/room-stream-api/internal/middleware"
	"github.com/augustos0204/room-stream-api/internal/services"
	"github.com/augustos0204/room-stream-api/internal/storage"
	"github.com/augustos0204/room-stream-api/internal/ws"
)

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	repo := storage.New(cfg)
	defer repo.Close()

	bus := events.NewBus()
	aggregator := metrics.NewAggregator(bus)

	provider := identity.NewProvider(cfg.AuthAPIURL, cfg.AuthAPIKey)
	appService := services.NewApplicationService(db)
	roomService := services.NewRoomService(repo, bus)

	hub := ws.NewHub()
	gateway := ws.NewGateway(cfg, hub, roomService, appService, provider, bus)

	roomHandler := handlers.NewRoomHandler(roomService)
	appHandler := handlers.NewApplicationHandler(appService)
	metricsHandler := handlers.NewMetricsHandler(aggregator)
	healthHandler := handlers.NewHealthHandler(repo, aggregator)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigin, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Api-Key", "X-App-Key"},
		AllowCredentials: true,
	}))

	r.GET("/health", healthHandler.Health)
	r.GET(cfg.WSNamespace, gateway.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		rooms := api.Group("/rooms")
		{
			rooms.POST("", roomHandler.CreateRoom)
			rooms.GET("", roomHandler.ListRooms)
			rooms.GET("/:id", roomHandler.GetRoom)
			rooms.DELETE("/:id", roomHandler.DeleteRoom)
			rooms.GET("/:id/messages", roomHandler.ListMessages)
			rooms.GET("/:id/participants", roomHandler.ListParticipants)
		}

		apps := api.Group("/applications")
		apps.Use(middleware.BearerAuth(provider))
		{
			apps.POST("", appHandler.CreateApplication)
			apps.GET("", appHandler.ListApplications)
			apps.GET("/:id", appHandler.GetApplication)
			apps.PATCH("/:id", appHandler.UpdateApplication)
			apps.DELETE("/:id", appHandler.DeleteApplication)
			apps.POST("/:id/regenerate-key", appHandler.RegenerateKey)
		}

		api.GET("/metrics", metricsHandler.GetMetrics)
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
