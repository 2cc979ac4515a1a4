// shared/config/config.go
package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// CommonConfig holds configuration fields that are shared across services.
type CommonConfig struct {
	RedisAddrs              []string      // Redis cluster addresses
	RedisPassword           string        // Redis password for authentication
	HeartbeatInterval       time.Duration // How often to send a heartbeat to the registry
	HeartbeatTTL            time.Duration // How long an instance is considered alive without a heartbeat
	RegistryCleanupInterval time.Duration // How often the registry actively cleans stale entries
	ServiceIP               string        // The IP this service advertises for registration (Kubernetes Pod IP)
	ServicePort             int           // The port this service listens on, used for registration
}

// IslandServiceConfig holds configuration specific to the island-service.
type IslandServiceConfig struct {
	CommonConfig
	ListenAddr               string // Address for the HTTP server (e.g. ":8081")
	MongoDBConnStr           string
	MongoDBDatabase          string
	MongoDBIslandsCollection string
	MongoDBNamesCollection   string // Display-name cache collection
	GameServiceURL           string // URL of the game-service (e.g. "http://game-service:8082")

	ConfirmTimeout       time.Duration // How long an invitee has to confirm an acceptance
	ConfirmSweepInterval time.Duration // How often lapsed confirmations are purged
	RelocationInterval   time.Duration // Tick interval of the relocation worker

	InviteMinRank  int // Default minimum rank required to issue invites
	MaxTeamSize    int // Default team capacity, owner included
	MaxTrustedSize int // Default trusted-tier capacity
	MaxCoopSize    int // Default coop-tier capacity
}

// GameServiceConfig holds configuration specific to the game-service.
type GameServiceConfig struct {
	CommonConfig
	ListenAddr       string // Address for the HTTP server (e.g. ":8082")
	IslandServiceURL string // URL of the island-service (e.g. "http://island-service:8081")
	RedisOnlineTTL   time.Duration

	IslandRespawnWorlds []string // Worlds where the island-respawn flag is enabled
	OnJoinCommands      []string // Commands run after a successful team join
	OnRespawnCommands   []string // Commands run after an island respawn
	DefaultGameMode     string   // Game mode restored after relocation completes

	// Session reset flags, applied when a player joins a new team.
	OnJoinResetInventory  bool
	OnJoinResetEnderChest bool
	OnJoinResetMoney      bool
	OnJoinResetHealth     bool
	OnJoinResetHunger     bool
	OnJoinResetXP         bool
	TeamJoinDeathReset    bool
}

// IslandRespawnEnabled reports whether the island-respawn flag is set for a
// world.
func (c *GameServiceConfig) IslandRespawnEnabled(world string) bool {
	for _, w := range c.IslandRespawnWorlds {
		if w == world {
			return true
		}
	}
	return false
}

// LoadCommonConfig loads common configuration from environment variables.
func LoadCommonConfig() (CommonConfig, error) {
	cfg := CommonConfig{}
	var err error

	redisAddrsStr := os.Getenv("REDIS_ADDRS")
	if redisAddrsStr == "" {
		cfg.RedisAddrs = []string{"redis-cluster-headless.skyhaven.svc.cluster.local:6379"}
	} else {
		for _, addr := range strings.Split(redisAddrsStr, ",") {
			cfg.RedisAddrs = append(cfg.RedisAddrs, strings.TrimSpace(addr))
		}
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.HeartbeatInterval, err = getDuration("SERVICE_HEARTBEAT_INTERVAL", 5*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.HeartbeatTTL, err = getDuration("SERVICE_HEARTBEAT_TTL", 15*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.RegistryCleanupInterval, err = getDuration("SERVICE_REGISTRY_CLEANUP_INTERVAL", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	// Service IP (for registration, from Kubernetes Pod IP)
	cfg.ServiceIP = os.Getenv("POD_IP")
	if cfg.ServiceIP == "" {
		cfg.ServiceIP = "0.0.0.0"
		log.Printf("WARN: POD_IP not set, defaulting ServiceIP to %s", cfg.ServiceIP)
	}

	return cfg, nil
}

// LoadIslandServiceConfig loads configuration for the island-service.
func LoadIslandServiceConfig() (*IslandServiceConfig, error) {
	common, err := LoadCommonConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load common config for island-service: %w", err)
	}

	cfg := &IslandServiceConfig{
		CommonConfig:             common,
		ListenAddr:               getString("ISLAND_SERVICE_LISTEN_ADDR", ":8081"),
		MongoDBConnStr:           getString("MONGODB_CONN_STR", "mongodb://mongodb:27017"),
		MongoDBDatabase:          getString("MONGODB_DATABASE", "skyhaven_islands"),
		MongoDBIslandsCollection: getString("MONGODB_ISLANDS_COLLECTION", "islands"),
		MongoDBNamesCollection:   getString("MONGODB_NAMES_COLLECTION", "player_names"),
		GameServiceURL:           getString("GAME_SERVICE_URL", "http://game-service:8082"),
	}

	cfg.ServicePort, err = extractPort(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract port from ISLAND_SERVICE_LISTEN_ADDR %q: %w", cfg.ListenAddr, err)
	}

	cfg.ConfirmTimeout, err = getDuration("INVITE_CONFIRM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.ConfirmSweepInterval, err = getDuration("INVITE_CONFIRM_SWEEP_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.RelocationInterval, err = getDuration("RELOCATION_TICK_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}

	cfg.InviteMinRank, err = getInt("INVITE_MIN_RANK", 300)
	if err != nil {
		return nil, err
	}
	cfg.MaxTeamSize, err = getInt("MAX_TEAM_SIZE", 4)
	if err != nil {
		return nil, err
	}
	cfg.MaxTrustedSize, err = getInt("MAX_TRUSTED_SIZE", 4)
	if err != nil {
		return nil, err
	}
	cfg.MaxCoopSize, err = getInt("MAX_COOP_SIZE", 4)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadGameServiceConfig loads configuration for the game-service.
func LoadGameServiceConfig() (*GameServiceConfig, error) {
	common, err := LoadCommonConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load common config for game-service: %w", err)
	}

	cfg := &GameServiceConfig{
		CommonConfig:        common,
		ListenAddr:          getString("GAME_SERVICE_LISTEN_ADDR", ":8082"),
		IslandServiceURL:    getString("ISLAND_SERVICE_URL", "http://island-service:8081"),
		IslandRespawnWorlds: getStringList("ISLAND_RESPAWN_WORLDS", []string{"skyworld"}),
		OnJoinCommands:      getStringList("ON_JOIN_COMMANDS", nil),
		OnRespawnCommands:   getStringList("ON_RESPAWN_COMMANDS", nil),
		DefaultGameMode:     getString("DEFAULT_GAME_MODE", "SURVIVAL"),
	}

	cfg.ServicePort, err = extractPort(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract port from GAME_SERVICE_LISTEN_ADDR %q: %w", cfg.ListenAddr, err)
	}

	cfg.RedisOnlineTTL, err = getDuration("REDIS_ONLINE_TTL", 15*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.OnJoinResetInventory = getBool("ON_JOIN_RESET_INVENTORY", false)
	cfg.OnJoinResetEnderChest = getBool("ON_JOIN_RESET_ENDER_CHEST", false)
	cfg.OnJoinResetMoney = getBool("ON_JOIN_RESET_MONEY", false)
	cfg.OnJoinResetHealth = getBool("ON_JOIN_RESET_HEALTH", true)
	cfg.OnJoinResetHunger = getBool("ON_JOIN_RESET_HUNGER", true)
	cfg.OnJoinResetXP = getBool("ON_JOIN_RESET_XP", false)
	cfg.TeamJoinDeathReset = getBool("TEAM_JOIN_DEATH_RESET", true)

	return cfg, nil
}

// Helper to read a string with a default.
func getString(envKey, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return defaultVal
}

// Helper to read a comma-separated list with a default.
func getStringList(envKey string, defaultVal []string) []string {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal
	}
	var out []string
	for _, v := range strings.Split(valStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Helper function to parse duration from environment variable.
func getDuration(envKey string, defaultVal time.Duration) (time.Duration, error) {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format for %s: %w", envKey, err)
	}
	return d, nil
}

// Helper function to parse int from environment variable.
func getInt(envKey string, defaultVal int) (int, error) {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer format for %s: %w", envKey, err)
	}
	return i, nil
}

// Helper function to parse bool from environment variable.
func getBool(envKey string, defaultVal bool) bool {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(valStr)
	if err != nil {
		return defaultVal
	}
	return b
}

// extractPort extracts the numeric port from a listen address
// (e.g. ":8082" -> 8082, "0.0.0.0:8082" -> 8082).
func extractPort(listenAddr string) (int, error) {
	_, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		if strings.HasPrefix(listenAddr, ":") {
			portStr = strings.TrimPrefix(listenAddr, ":")
		} else {
			return 0, fmt.Errorf("invalid listen address for port extraction: %w", err)
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number %q: %w", portStr, err)
	}
	return port, nil
}
