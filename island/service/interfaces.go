// island/service/interfaces.go
package service

import (
	"context"

	"github.com/skyhavenmc/island-services/shared/models"
)

// IslandDirectory is the island lookup and mutation surface the invite flow
// depends on. IslandService implements it against MongoDB; tests supply
// in-memory fakes.
type IslandDirectory interface {
	// GetIslandByID returns the island with the given ID, or nil when it
	// does not exist or has been deleted.
	GetIslandByID(ctx context.Context, islandID string) (*models.Island, error)
	// GetIslandByOwner returns the island owned by the player in the given
	// world, or nil when the player owns none.
	GetIslandByOwner(ctx context.Context, world, playerUUID string) (*models.Island, error)
	// GetIslandByPlayer returns the island where the player holds member
	// rank or above in the given world, or nil.
	GetIslandByPlayer(ctx context.Context, world, playerUUID string) (*models.Island, error)
	// GetIslands returns every island in the world where the player appears
	// with any rank, owned islands included.
	GetIslands(ctx context.Context, world, playerUUID string) ([]*models.Island, error)
	// InTeam reports whether the player holds member rank or above on any
	// island in the world.
	InTeam(ctx context.Context, world, playerUUID string) (bool, error)
	// SetRank grants or changes the player's rank on the island.
	SetRank(ctx context.Context, islandID, playerUUID string, rank int) error
	// RemovePlayer strips the player's membership from every island in the
	// world they do not own.
	RemovePlayer(ctx context.Context, world, playerUUID string) error
	// DeleteIsland marks the island deleted and removes it from lookups.
	DeleteIsland(ctx context.Context, islandID string) error
}

// GameSession is the slice of the game service the island service calls:
// presence checks and player-facing directives.
type GameSession interface {
	// IsOnline reports whether the player currently has a live session.
	IsOnline(ctx context.Context, playerUUID string) (bool, error)
	// Notify sends a chat message directive to the player, dropped silently
	// when the player is offline.
	Notify(ctx context.Context, playerUUID, message string) error
	// ResetSession clears the player's session state ahead of a team join:
	// inventory, ender chest, economy and vitals per server policy.
	ResetSession(ctx context.Context, playerUUID string) error
}

// RelocationScheduler enqueues the deferred part of a team join: teleport to
// the new home and cleanup of the old islands.
type RelocationScheduler interface {
	Schedule(ctx context.Context, task models.RelocationTask) error
}

// NameResolver resolves a player UUID to a display name.
type NameResolver interface {
	Name(ctx context.Context, playerUUID string) (string, error)
}
