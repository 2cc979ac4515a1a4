// game/store/online_status_store.go
package store

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	redisu "github.com/skyhavenmc/island-services/shared/redis"
)

// OnlinePlayersStore manages the online status of players in Redis. Keys
// carry a TTL that the proxy refreshes as a heartbeat, so a crashed server
// drops its players off the online set without explicit logouts.
type OnlinePlayersStore struct {
	client    *redis.ClusterClient
	onlineTTL time.Duration
}

// NewOnlinePlayersStore creates and returns a new OnlinePlayersStore
// instance.
func NewOnlinePlayersStore(client *redis.ClusterClient, onlineTTL time.Duration) *OnlinePlayersStore {
	return &OnlinePlayersStore{
		client:    client,
		onlineTTL: onlineTTL,
	}
}

// SetPlayerOnline marks a player as online and records their session start
// time. The key expires after the TTL unless refreshed.
func (ops *OnlinePlayersStore) SetPlayerOnline(ctx context.Context, playerUUID string, sessionStartTime time.Time) error {
	key := fmt.Sprintf(redisu.OnlineKeyPrefix, playerUUID)
	err := ops.client.Set(ctx, key, sessionStartTime.Unix(), ops.onlineTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set player %s online status in Redis: %w", playerUUID, err)
	}
	return nil
}

// GetPlayerOnlineTime retrieves the recorded session start time for an
// online player.
func (ops *OnlinePlayersStore) GetPlayerOnlineTime(ctx context.Context, playerUUID string) (time.Time, error) {
	key := fmt.Sprintf(redisu.OnlineKeyPrefix, playerUUID)

	val, err := ops.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return time.Time{}, fmt.Errorf("player %s is not currently marked as online: %w", playerUUID, redisu.ErrRedisKeyNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to retrieve online time for player %s from Redis: %w", playerUUID, err)
	}

	timestamp, parseErr := strconv.ParseInt(val, 10, 64)
	if parseErr != nil {
		return time.Time{}, fmt.Errorf("invalid session start timestamp '%s' for player %s in Redis: %w", val, playerUUID, parseErr)
	}
	return time.Unix(timestamp, 0), nil
}

// IsPlayerOnline checks if a player's online status key currently exists.
func (ops *OnlinePlayersStore) IsPlayerOnline(ctx context.Context, playerUUID string) (bool, error) {
	key := fmt.Sprintf(redisu.OnlineKeyPrefix, playerUUID)
	exists, err := ops.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check online existence for player %s in Redis: %w", playerUUID, err)
	}
	return exists == 1, nil
}

// RemovePlayerOnline explicitly deletes a player's online status key, called
// when a player logs off.
func (ops *OnlinePlayersStore) RemovePlayerOnline(ctx context.Context, playerUUID string) error {
	key := fmt.Sprintf(redisu.OnlineKeyPrefix, playerUUID)
	deletedCount, err := ops.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to remove online status key for player %s from Redis: %w", playerUUID, err)
	}
	if deletedCount == 0 {
		log.Printf("WARN: Attempted to remove online status for player %s, but they were not marked as online.", playerUUID)
	}
	return nil
}

// RefreshPlayerOnlineStatus extends the TTL for a player's online status
// key, acting as the heartbeat.
func (ops *OnlinePlayersStore) RefreshPlayerOnlineStatus(ctx context.Context, playerUUID string) error {
	key := fmt.Sprintf(redisu.OnlineKeyPrefix, playerUUID)
	success, err := ops.client.Expire(ctx, key, ops.onlineTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh online status TTL for player %s in Redis: %w", playerUUID, err)
	}
	if !success {
		return fmt.Errorf("could not refresh online status for player %s, key might not exist or already expired", playerUUID)
	}
	return nil
}
