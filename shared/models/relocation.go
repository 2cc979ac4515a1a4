// shared/models/relocation.go
package models

import "time"

// RelocationTask describes a deferred post-join relocation: teleport the
// player to their new island's home, then delete the islands they left
// behind. Membership is already committed by the time a task exists; the
// destructive cleanup runs only after the teleport succeeds.
type RelocationTask struct {
	Player       string    `json:"player"`
	World        string    `json:"world"`
	IslandID     string    `json:"islandId"`
	OldIslandIDs []string  `json:"oldIslandIds,omitempty"`
	ScheduledAt  time.Time `json:"scheduledAt"`
}

// NewRelocationTask creates a task stamped with the current time.
func NewRelocationTask(player, world, islandID string, oldIslandIDs []string) RelocationTask {
	return RelocationTask{
		Player:       player,
		World:        world,
		IslandID:     islandID,
		OldIslandIDs: oldIslandIDs,
		ScheduledAt:  time.Now(),
	}
}
