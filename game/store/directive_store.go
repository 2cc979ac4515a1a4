// game/store/directive_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	redisu "github.com/skyhavenmc/island-services/shared/redis"
)

// DirectiveType identifies what the game server should do to the player.
type DirectiveType string

const (
	DirectiveMessage         DirectiveType = "message"
	DirectiveTeleport        DirectiveType = "teleport"
	DirectiveGameMode        DirectiveType = "gamemode"
	DirectiveClearInventory  DirectiveType = "clear_inventory"
	DirectiveClearEnderChest DirectiveType = "clear_ender_chest"
	DirectiveResetMoney      DirectiveType = "reset_money"
	DirectiveResetHealth     DirectiveType = "reset_health"
	DirectiveResetHunger     DirectiveType = "reset_hunger"
	DirectiveResetXP         DirectiveType = "reset_xp"
	DirectiveCommand         DirectiveType = "command"
)

// Directive is one queued instruction for the game server to apply to a
// player. Payload is type-specific: the message text, a location, a gamemode
// name, or a command line.
type Directive struct {
	Type      DirectiveType   `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewDirective builds a directive, marshalling the payload. A nil payload is
// valid for the parameterless reset directives.
func NewDirective(directiveType DirectiveType, payload interface{}) (Directive, error) {
	d := Directive{
		Type:      directiveType,
		CreatedAt: time.Now(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Directive{}, fmt.Errorf("failed to marshal payload for %s directive: %w", directiveType, err)
		}
		d.Payload = data
	}
	return d, nil
}

// DirectiveStore is the per-player outbox of pending directives, a Redis
// list per player. The game server drains its players' outboxes on tick;
// directives queued for offline players sit until the next login drains
// them.
type DirectiveStore struct {
	client *redis.ClusterClient
}

// NewDirectiveStore creates a new DirectiveStore instance.
func NewDirectiveStore(client *redis.ClusterClient) *DirectiveStore {
	return &DirectiveStore{
		client: client,
	}
}

// Push appends directives to the player's outbox in order.
func (ds *DirectiveStore) Push(ctx context.Context, playerUUID string, directives ...Directive) error {
	if len(directives) == 0 {
		return nil
	}
	key := fmt.Sprintf(redisu.DirectivesKeyPrefix, playerUUID)

	values := make([]interface{}, 0, len(directives))
	for _, d := range directives {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to marshal directive %s for %s: %w", d.Type, playerUUID, err)
		}
		values = append(values, data)
	}

	if err := ds.client.RPush(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("failed to push directives for %s: %w", playerUUID, err)
	}
	return nil
}

// Drain pops every pending directive for the player, oldest first.
func (ds *DirectiveStore) Drain(ctx context.Context, playerUUID string) ([]Directive, error) {
	key := fmt.Sprintf(redisu.DirectivesKeyPrefix, playerUUID)

	// LPOP with count empties the list atomically enough for a single
	// consumer per player.
	raw, err := ds.client.LPopCount(ctx, key, 128).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to drain directives for %s: %w", playerUUID, err)
	}

	directives := make([]Directive, 0, len(raw))
	for _, entry := range raw {
		var d Directive
		if err := json.Unmarshal([]byte(entry), &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal directive for %s: %w", playerUUID, err)
		}
		directives = append(directives, d)
	}
	return directives, nil
}
