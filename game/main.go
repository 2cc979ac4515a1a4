// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	gameapi "github.com/skyhavenmc/island-services/game/api"
	"github.com/skyhavenmc/island-services/game/respawn"
	"github.com/skyhavenmc/island-services/game/service"
	"github.com/skyhavenmc/island-services/game/store"
	"github.com/skyhavenmc/island-services/shared/api"
	"github.com/skyhavenmc/island-services/shared/config"
	sharedredis "github.com/skyhavenmc/island-services/shared/redis"
	"github.com/skyhavenmc/island-services/shared/registry"
	sharedservice "github.com/skyhavenmc/island-services/shared/service"
)

func main() {
	// --- 1. Load Configuration ---
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, using environment variables.")
	}
	cfg, err := config.LoadGameServiceConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- 2. Connect to Redis ---
	redisClient, err := sharedredis.NewRedisClusterClient(cfg.RedisAddrs, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis Cluster: %v", err)
	}
	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Fatalf("Error closing Redis client: %v", err)
		}
		log.Println("Redis Client closed.")
	}()

	// --- 3. Initialize Data Stores ---
	onlineStore := store.NewOnlinePlayersStore(redisClient, cfg.RedisOnlineTTL)
	directiveStore := store.NewDirectiveStore(redisClient)
	statsStore := store.NewStatsStore(redisClient)

	// --- 4. Initialize External Service Clients ---
	islandClient := sharedservice.NewIslandClient(cfg.IslandServiceURL)

	// --- 5. Initialize Business Logic Services ---
	sessionService := service.NewSessionService(onlineStore, directiveStore, statsStore, islandClient, cfg)
	relocator := respawn.NewRelocator(cfg, islandClient, sessionService)

	// --- 6. Initialize and Start Service Registrar ---
	registrar := registry.NewServiceRegistrar(redisClient, "game-service", &cfg.CommonConfig)
	go registrar.Start()
	defer registrar.Stop()

	// --- 7. Setup HTTP Server and Register Routes ---
	gameAPIHandlers := gameapi.NewGameAPIHandlers(sessionService, relocator)
	baseServer := api.NewBaseServer(cfg.ListenAddr, log.Default())
	gameAPIHandlers.RegisterRoutes(baseServer.Router)

	// --- 8. Start HTTP Server ---
	go func() {
		log.Printf("HTTP server starting on %s...", cfg.ListenAddr)
		if err := baseServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	// --- 9. Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := baseServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server graceful shutdown failed: %v", err)
	}
	log.Println("Server gracefully stopped.")
}
