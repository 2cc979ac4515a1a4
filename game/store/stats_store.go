// game/store/stats_store.go
package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	redisu "github.com/skyhavenmc/island-services/shared/redis"
)

// StatsStore keeps per-player gameplay counters in Redis. Only the death
// counter lives here for now; it is reset when a player joins a new team so
// the fresh start extends to stats.
type StatsStore struct {
	client *redis.ClusterClient
}

// NewStatsStore creates a new StatsStore instance.
func NewStatsStore(client *redis.ClusterClient) *StatsStore {
	return &StatsStore{
		client: client,
	}
}

// IncrementDeaths bumps the player's death counter and returns the new
// value.
func (ss *StatsStore) IncrementDeaths(ctx context.Context, playerUUID string) (int64, error) {
	key := fmt.Sprintf(redisu.DeathsKeyPrefix, playerUUID)
	count, err := ss.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment deaths for %s: %w", playerUUID, err)
	}
	return count, nil
}

// GetDeaths returns the player's death count, zero when never died.
func (ss *StatsStore) GetDeaths(ctx context.Context, playerUUID string) (int64, error) {
	key := fmt.Sprintf(redisu.DeathsKeyPrefix, playerUUID)
	val, err := ss.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get deaths for %s: %w", playerUUID, err)
	}
	count, parseErr := strconv.ParseInt(val, 10, 64)
	if parseErr != nil {
		return 0, fmt.Errorf("invalid death count '%s' for %s in Redis: %w", val, playerUUID, parseErr)
	}
	return count, nil
}

// ResetDeaths zeroes the player's death counter.
func (ss *StatsStore) ResetDeaths(ctx context.Context, playerUUID string) error {
	key := fmt.Sprintf(redisu.DeathsKeyPrefix, playerUUID)
	if err := ss.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to reset deaths for %s: %w", playerUUID, err)
	}
	return nil
}
