// island/store/island_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/skyhavenmc/island-services/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// IslandStore represents the MongoDB data store for islands. Membership
// lives inside the island document, so rank changes are single-document
// updates.
type IslandStore struct {
	collection *mongo.Collection
}

// NewIslandStore creates a new IslandStore instance.
func NewIslandStore(collection *mongo.Collection) *IslandStore {
	return &IslandStore{
		collection: collection,
	}
}

// CreateIsland inserts a new island document.
func (is *IslandStore) CreateIsland(ctx context.Context, island *models.Island) error {
	_, err := is.collection.InsertOne(ctx, island)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("island %s already exists", island.ID)
		}
		return fmt.Errorf("failed to create island %s: %w", island.ID, err)
	}
	return nil
}

// GetIslandByID retrieves an island by its ID. Returns mongo.ErrNoDocuments
// when absent.
func (is *IslandStore) GetIslandByID(ctx context.Context, islandID string) (*models.Island, error) {
	var island models.Island
	filter := bson.M{"_id": islandID, "deleted": false}
	err := is.collection.FindOne(ctx, filter).Decode(&island)
	if err != nil {
		return nil, err
	}
	return &island, nil
}

// GetIslandByOwner retrieves the island owned by the player in a world.
// Returns mongo.ErrNoDocuments when the player owns none.
func (is *IslandStore) GetIslandByOwner(ctx context.Context, world, playerUUID string) (*models.Island, error) {
	var island models.Island
	filter := bson.M{"world": world, "owner": playerUUID, "deleted": false}
	err := is.collection.FindOne(ctx, filter).Decode(&island)
	if err != nil {
		return nil, err
	}
	return &island, nil
}

// GetIslandByMemberRank retrieves the island in a world where the player
// holds at least minRank. Returns mongo.ErrNoDocuments when there is none.
func (is *IslandStore) GetIslandByMemberRank(ctx context.Context, world, playerUUID string, minRank int) (*models.Island, error) {
	var island models.Island
	filter := bson.M{
		"world":   world,
		"deleted": false,
		fmt.Sprintf("members.%s", playerUUID): bson.M{"$gte": minRank},
	}
	err := is.collection.FindOne(ctx, filter).Decode(&island)
	if err != nil {
		return nil, err
	}
	return &island, nil
}

// GetIslandsByPlayer retrieves every island in a world where the player
// appears with any rank, owned islands included.
func (is *IslandStore) GetIslandsByPlayer(ctx context.Context, world, playerUUID string) ([]*models.Island, error) {
	filter := bson.M{
		"world":   world,
		"deleted": false,
		fmt.Sprintf("members.%s", playerUUID): bson.M{"$exists": true},
	}
	cursor, err := is.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query islands for player %s in %s: %w", playerUUID, world, err)
	}
	defer cursor.Close(ctx)

	var islands []*models.Island
	if err := cursor.All(ctx, &islands); err != nil {
		return nil, fmt.Errorf("failed to decode islands for player %s: %w", playerUUID, err)
	}
	return islands, nil
}

// SetMemberRank sets one player's rank inside the island document.
func (is *IslandStore) SetMemberRank(ctx context.Context, islandID, playerUUID string, rank int) error {
	filter := bson.M{"_id": islandID, "deleted": false}
	update := bson.M{"$set": bson.M{
		fmt.Sprintf("members.%s", playerUUID): rank,
		"updated_at":                          time.Now(),
	}}
	res, err := is.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set rank for %s on island %s: %w", playerUUID, islandID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("island %s not found for rank update", islandID)
	}
	return nil
}

// PullMember removes one player's membership entry from the island document.
func (is *IslandStore) PullMember(ctx context.Context, islandID, playerUUID string) error {
	filter := bson.M{"_id": islandID}
	update := bson.M{
		"$unset": bson.M{fmt.Sprintf("members.%s", playerUUID): ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	_, err := is.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove %s from island %s: %w", playerUUID, islandID, err)
	}
	return nil
}

// PullMemberFromWorld removes the player's membership from every island in
// the world where they are not the owner.
func (is *IslandStore) PullMemberFromWorld(ctx context.Context, world, playerUUID string) error {
	filter := bson.M{
		"world": world,
		"owner": bson.M{"$ne": playerUUID},
		fmt.Sprintf("members.%s", playerUUID): bson.M{"$exists": true},
	}
	update := bson.M{
		"$unset": bson.M{fmt.Sprintf("members.%s", playerUUID): ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	_, err := is.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove %s from islands in %s: %w", playerUUID, world, err)
	}
	return nil
}

// ReplaceIsland overwrites the whole island document.
func (is *IslandStore) ReplaceIsland(ctx context.Context, island *models.Island) error {
	filter := bson.M{"_id": island.ID}
	now := time.Now()
	island.UpdatedAt = &now
	res, err := is.collection.ReplaceOne(ctx, filter, island)
	if err != nil {
		return fmt.Errorf("failed to replace island %s: %w", island.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("island %s not found for replace", island.ID)
	}
	return nil
}

// MarkDeleted soft-deletes the island. Deleted islands drop out of every
// lookup but stay in the collection for audit.
func (is *IslandStore) MarkDeleted(ctx context.Context, islandID string) error {
	filter := bson.M{"_id": islandID}
	update := bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now()}}
	res, err := is.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete island %s: %w", islandID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("island %s not found for delete", islandID)
	}
	return nil
}
