// island/store/relocation_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/skyhavenmc/island-services/shared/models"
	sharedredis "github.com/skyhavenmc/island-services/shared/redis"
)

// RelocationStore keeps pending relocation tasks in a Redis hash keyed by
// player UUID, so the queue survives island-service restarts and any
// instance in the cluster can pick a task up.
type RelocationStore struct {
	client *redis.ClusterClient
}

// NewRelocationStore creates a new RelocationStore instance.
func NewRelocationStore(client *redis.ClusterClient) *RelocationStore {
	return &RelocationStore{
		client: client,
	}
}

// Schedule enqueues a relocation task, replacing any pending task for the
// same player.
func (rs *RelocationStore) Schedule(ctx context.Context, task models.RelocationTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal relocation task for %s: %w", task.Player, err)
	}
	if err := rs.client.HSet(ctx, sharedredis.RelocationsHashKey, task.Player, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue relocation task for %s: %w", task.Player, err)
	}
	return nil
}

// All returns every pending relocation task. Entries that fail to decode are
// logged and skipped rather than blocking the queue.
func (rs *RelocationStore) All(ctx context.Context) ([]models.RelocationTask, error) {
	entries, err := rs.client.HGetAll(ctx, sharedredis.RelocationsHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read relocation queue: %w", err)
	}

	tasks := make([]models.RelocationTask, 0, len(entries))
	for player, raw := range entries {
		var task models.RelocationTask
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			log.Printf("WARN: Dropping undecodable relocation task for %s: %v", player, err)
			rs.client.HDel(ctx, sharedredis.RelocationsHashKey, player)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Claim removes the player's task from the queue and reports whether this
// caller got it. Exactly one of the competing instances sees true.
func (rs *RelocationStore) Claim(ctx context.Context, playerUUID string) (bool, error) {
	removed, err := rs.client.HDel(ctx, sharedredis.RelocationsHashKey, playerUUID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim relocation task for %s: %w", playerUUID, err)
	}
	return removed > 0, nil
}
