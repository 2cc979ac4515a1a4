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

	islandapi "github.com/skyhavenmc/island-services/island/api"
	"github.com/skyhavenmc/island-services/island/events"
	"github.com/skyhavenmc/island-services/island/mojang"
	"github.com/skyhavenmc/island-services/island/relocation"
	"github.com/skyhavenmc/island-services/island/service"
	"github.com/skyhavenmc/island-services/island/store"
	"github.com/skyhavenmc/island-services/shared/api"
	"github.com/skyhavenmc/island-services/shared/cluster"
	"github.com/skyhavenmc/island-services/shared/config"
	mongodbu "github.com/skyhavenmc/island-services/shared/mongodb"
	sharedredis "github.com/skyhavenmc/island-services/shared/redis"
	"github.com/skyhavenmc/island-services/shared/registry"
	sharedservice "github.com/skyhavenmc/island-services/shared/service"
)

func main() {
	// --- 1. Load Configuration ---
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, using environment variables.")
	}
	cfg, err := config.LoadIslandServiceConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- 2. Connect to MongoDB ---
	mongoClient, err := mongodbu.NewClient(cfg.MongoDBConnStr, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err = mongoClient.Disconnect(context.Background()); err != nil {
			log.Fatalf("Failed to disconnect from MongoDB: %v", err)
		}
		log.Println("Disconnected from MongoDB.")
	}()

	// --- 3. Connect to Redis ---
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

	// --- 4. Initialize Data Stores ---
	islandStore := store.NewIslandStore(mongoClient.Collection(cfg.MongoDBIslandsCollection))
	relocationStore := store.NewRelocationStore(redisClient)

	// --- 5. Initialize External Services ---
	nameService := mojang.NewNameService(mongoClient, cfg.MongoDBNamesCollection, 24*time.Hour)
	gameClient := sharedservice.NewGameClient(cfg.GameServiceURL)

	// --- 6. Initialize Business Logic Services ---
	bus := events.NewBus()
	islandService := service.NewIslandService(islandStore)
	inviteRegistry := service.NewInviteRegistry()
	confirmTracker := service.NewConfirmationTracker(cfg.ConfirmTimeout, cfg.ConfirmSweepInterval)
	capacityGate := service.NewCapacityGate(cfg.MaxTeamSize, cfg.MaxTrustedSize, cfg.MaxCoopSize)
	inviteService := service.NewInviteService(
		inviteRegistry,
		confirmTracker,
		capacityGate,
		islandService,
		gameClient,
		relocationStore,
		nameService,
		bus,
		cfg.InviteMinRank,
	)

	confirmTracker.Start()
	defer confirmTracker.Stop()

	// --- 7. Initialize and Start Service Registrar ---
	registrar := registry.NewServiceRegistrar(redisClient, "island-service", &cfg.CommonConfig)
	go registrar.Start()
	defer registrar.Stop()

	// --- 8. Cluster Assignment and Relocation Worker ---
	registryClient := registry.NewRegistryClient(redisClient, cfg.HeartbeatTTL)
	assignmentManager := cluster.NewServiceAssignmentManager(registryClient, registrar, cfg.HeartbeatInterval)
	go assignmentManager.Start()
	defer assignmentManager.Stop()

	relocationWorker := relocation.NewWorker(
		relocationStore,
		islandService,
		nameService,
		gameClient,
		assignmentManager,
		cfg.RelocationInterval,
	)
	relocationWorker.Start()
	defer relocationWorker.Stop()

	// --- 9. Setup HTTP Server and Register Routes ---
	islandAPIHandlers := islandapi.NewIslandAPIHandlers(islandService, inviteService, nameService)
	baseServer := api.NewBaseServer(cfg.ListenAddr, log.Default())
	islandAPIHandlers.RegisterRoutes(baseServer.Router)

	// --- 10. Start HTTP Server ---
	go func() {
		log.Printf("HTTP server starting on %s...", cfg.ListenAddr)
		if err := baseServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	// --- 11. Graceful Shutdown ---
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
