// island/service/island_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/skyhavenmc/island-services/island/store"
	"github.com/skyhavenmc/island-services/shared/models"
)

// ErrIslandExists is returned when a player already owns an island in the
// requested world.
var ErrIslandExists = errors.New("player already owns an island in this world")

// ErrIslandNotFound is returned by mutations targeting a missing or deleted
// island.
var ErrIslandNotFound = errors.New("island not found")

// ErrOwnerRemoval is returned when a removal targets the island owner.
var ErrOwnerRemoval = errors.New("the island owner cannot be removed")

// IslandService handles island lifecycle and lookups on top of the Mongo
// store. It implements IslandDirectory for the invite flow.
type IslandService struct {
	store *store.IslandStore
}

// NewIslandService creates a new IslandService instance.
func NewIslandService(islandStore *store.IslandStore) *IslandService {
	return &IslandService{
		store: islandStore,
	}
}

// CreateIsland creates a fresh island owned by the player at the given home
// location. The owner is seeded into the member map at OwnerRank.
func (s *IslandService) CreateIsland(ctx context.Context, world, ownerUUID string, home models.Location) (*models.Island, error) {
	existing, err := s.GetIslandByOwner(ctx, world, ownerUUID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrIslandExists
	}

	now := time.Now()
	island := &models.Island{
		ID:        uuid.NewString(),
		World:     world,
		Owner:     ownerUUID,
		Members:   map[string]int{ownerUUID: models.OwnerRank},
		Home:      home,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	if err := s.store.CreateIsland(ctx, island); err != nil {
		return nil, err
	}
	log.Printf("INFO: Created island %s in %s for owner %s.", island.ID, world, ownerUUID)
	return island, nil
}

// GetIslandByID returns the island with the given ID, or nil when it does
// not exist or has been deleted.
func (s *IslandService) GetIslandByID(ctx context.Context, islandID string) (*models.Island, error) {
	island, err := s.store.GetIslandByID(ctx, islandID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get island %s: %w", islandID, err)
	}
	return island, nil
}

// GetIslandByOwner returns the island owned by the player in the world, or
// nil when the player owns none.
func (s *IslandService) GetIslandByOwner(ctx context.Context, world, playerUUID string) (*models.Island, error) {
	island, err := s.store.GetIslandByOwner(ctx, world, playerUUID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get island owned by %s in %s: %w", playerUUID, world, err)
	}
	return island, nil
}

// GetIslandByPlayer returns the island where the player holds member rank or
// above in the world, or nil.
func (s *IslandService) GetIslandByPlayer(ctx context.Context, world, playerUUID string) (*models.Island, error) {
	island, err := s.store.GetIslandByMemberRank(ctx, world, playerUUID, models.MemberRank)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get island for member %s in %s: %w", playerUUID, world, err)
	}
	return island, nil
}

// GetIslands returns every island in the world where the player appears with
// any rank.
func (s *IslandService) GetIslands(ctx context.Context, world, playerUUID string) ([]*models.Island, error) {
	return s.store.GetIslandsByPlayer(ctx, world, playerUUID)
}

// InTeam reports whether the player is part of a team on any island in the
// world. A solo island owner is not in a team.
func (s *IslandService) InTeam(ctx context.Context, world, playerUUID string) (bool, error) {
	island, err := s.GetIslandByPlayer(ctx, world, playerUUID)
	if err != nil {
		return false, err
	}
	return island != nil && island.InTeam(playerUUID), nil
}

// SetRank grants or changes the player's rank on the island.
func (s *IslandService) SetRank(ctx context.Context, islandID, playerUUID string, rank int) error {
	return s.store.SetMemberRank(ctx, islandID, playerUUID, rank)
}

// RemovePlayer strips the player's membership from every island in the world
// they do not own. Owned islands are untouched; their deletion is deferred
// to the relocation worker.
func (s *IslandService) RemovePlayer(ctx context.Context, world, playerUUID string) error {
	return s.store.PullMemberFromWorld(ctx, world, playerUUID)
}

// RemoveMember strips one player's rank from a single island, covering
// kicks and voluntary leaves. The owner cannot be removed this way; the
// island itself has to go.
func (s *IslandService) RemoveMember(ctx context.Context, islandID, playerUUID string) error {
	island, err := s.GetIslandByID(ctx, islandID)
	if err != nil {
		return err
	}
	if island == nil {
		return ErrIslandNotFound
	}
	if island.Owner == playerUUID {
		return ErrOwnerRemoval
	}
	if err := s.store.PullMember(ctx, islandID, playerUUID); err != nil {
		return err
	}
	log.Printf("INFO: Removed %s from island %s.", playerUUID, islandID)
	return nil
}

// IslandSettings are the owner-tunable island fields. Zero values mean the
// configured defaults apply.
type IslandSettings struct {
	InviteRank     int              `json:"InviteRank"`
	MaxTeamSize    int              `json:"MaxTeamSize"`
	MaxTrustedSize int              `json:"MaxTrustedSize"`
	MaxCoopSize    int              `json:"MaxCoopSize"`
	Home           *models.Location `json:"Home,omitempty"`
}

// UpdateSettings applies the settings to the island and persists the whole
// document.
func (s *IslandService) UpdateSettings(ctx context.Context, islandID string, settings IslandSettings) (*models.Island, error) {
	island, err := s.GetIslandByID(ctx, islandID)
	if err != nil {
		return nil, err
	}
	if island == nil {
		return nil, ErrIslandNotFound
	}

	island.InviteRank = settings.InviteRank
	island.MaxTeamSize = settings.MaxTeamSize
	island.MaxTrustedSize = settings.MaxTrustedSize
	island.MaxCoopSize = settings.MaxCoopSize
	if settings.Home != nil {
		island.Home = *settings.Home
	}

	if err := s.store.ReplaceIsland(ctx, island); err != nil {
		return nil, err
	}
	log.Printf("INFO: Updated settings for island %s.", islandID)
	return island, nil
}

// DeleteIsland soft-deletes the island.
func (s *IslandService) DeleteIsland(ctx context.Context, islandID string) error {
	if err := s.store.MarkDeleted(ctx, islandID); err != nil {
		return err
	}
	log.Printf("INFO: Deleted island %s.", islandID)
	return nil
}

// SafeHomeLocation resolves the island's home teleport target. The stored
// home is trusted; a zero-valued home falls back to a point above the world
// origin so the teleport never lands a player inside terrain at Y 0.
func (s *IslandService) SafeHomeLocation(island *models.Island) models.Location {
	home := island.Home
	if home.World == "" {
		home.World = island.World
	}
	if home.Y == 0 {
		home.Y = 120
	}
	return home
}
