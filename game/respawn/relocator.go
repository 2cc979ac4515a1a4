// game/respawn/relocator.go
package respawn

import (
	"context"
	"log"
	"sync"

	"github.com/skyhavenmc/island-services/shared/config"
	"github.com/skyhavenmc/island-services/shared/models"
)

// IslandClient is the island-service surface the relocator needs.
type IslandClient interface {
	IslandByPlayer(ctx context.Context, world, playerUUID string) (*models.Island, error)
	SafeHome(ctx context.Context, islandID string) (*models.Location, error)
	PlayerName(ctx context.Context, playerUUID string) (string, error)
}

// Sessions is the session-service surface the relocator needs.
type Sessions interface {
	RecordDeath(ctx context.Context, playerUUID string) (int64, error)
	RunRespawnCommands(ctx context.Context, playerUUID, ownerName string) error
}

// Relocator redirects island members to their island home when they respawn
// after dying in a world where island respawn is enabled. The death handler
// records the world; the respawn handler consumes that record exactly once,
// so a later respawn in the same session is untouched.
type Relocator struct {
	cfg      *config.GameServiceConfig
	islands  IslandClient
	sessions Sessions

	mu     sync.Mutex
	deaths map[string]string // player UUID -> world they died in
}

// NewRelocator creates a new Relocator instance.
func NewRelocator(cfg *config.GameServiceConfig, islands IslandClient, sessions Sessions) *Relocator {
	return &Relocator{
		cfg:      cfg,
		islands:  islands,
		sessions: sessions,
		deaths:   make(map[string]string),
	}
}

// OnDeath handles a death report from the game server. The death is only
// remembered when island respawn is enabled for the world and the player
// belongs to an island there.
func (r *Relocator) OnDeath(ctx context.Context, playerUUID, world string) error {
	if _, err := r.sessions.RecordDeath(ctx, playerUUID); err != nil {
		log.Printf("WARN: Failed to record death for %s: %v", playerUUID, err)
	}

	if !r.cfg.IslandRespawnEnabled(world) {
		return nil
	}

	island, err := r.islands.IslandByPlayer(ctx, world, playerUUID)
	if err != nil {
		return err
	}
	if island == nil {
		return nil
	}

	r.mu.Lock()
	r.deaths[playerUUID] = world
	r.mu.Unlock()
	return nil
}

// OnRespawn handles a respawn report. When a pending island death exists it
// is consumed and the island's safe home is returned as the respawn target;
// otherwise nil is returned and the server uses its normal respawn point.
// Once a death record is consumed, the configured on-respawn commands run
// whether or not a target could be resolved.
func (r *Relocator) OnRespawn(ctx context.Context, playerUUID string) (*models.Location, error) {
	r.mu.Lock()
	world, ok := r.deaths[playerUUID]
	if ok {
		delete(r.deaths, playerUUID)
	}
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}

	// The island can disappear between death and respawn. That downgrades
	// the redirect to the server's normal respawn point but does not skip
	// the commands.
	var home *models.Location
	island, err := r.islands.IslandByPlayer(ctx, world, playerUUID)
	if err != nil {
		log.Printf("WARN: Failed to look up island for %s in %s: %v", playerUUID, world, err)
	}
	if island != nil {
		home, err = r.islands.SafeHome(ctx, island.ID)
		if err != nil {
			log.Printf("WARN: Failed to resolve safe home for island %s: %v", island.ID, err)
		}
	}

	ownerName := ""
	if island != nil {
		if name, err := r.islands.PlayerName(ctx, island.Owner); err == nil {
			ownerName = name
		}
	}
	if ownerName == "" {
		// Fall back to the player's own name so command placeholders still
		// resolve to something sensible.
		if name, err := r.islands.PlayerName(ctx, playerUUID); err == nil {
			ownerName = name
		}
	}
	if ownerName == "" {
		ownerName = playerUUID
	}
	if err := r.sessions.RunRespawnCommands(ctx, playerUUID, ownerName); err != nil {
		log.Printf("WARN: Failed to run respawn commands for %s: %v", playerUUID, err)
	}

	if home == nil {
		return nil, nil
	}
	log.Printf("INFO: Respawning %s at island %s home.", playerUUID, island.ID)
	return home, nil
}
