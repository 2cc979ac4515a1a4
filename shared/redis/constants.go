// shared/redis/constants.go
package redis

import "fmt"

const (
	// Key constants for Redis player session data. The braces keep all keys
	// for one player in the same cluster hash slot.
	OnlineKeyPrefix     = "online:{%s}:"     // player online status: online:{uuid}
	DirectivesKeyPrefix = "directives:{%s}:" // per-player directive outbox list: directives:{uuid}
	DeathsKeyPrefix     = "deaths:{%s}:"     // death counter: deaths:{uuid}

	// RelocationsHashKey is the hash of pending relocation tasks, keyed by
	// player UUID. Shared by all island-service instances.
	RelocationsHashKey = "relocations"
)

// ErrRedisKeyNotFound marks a missing key as distinct from a transport error.
var ErrRedisKeyNotFound = fmt.Errorf("redis key not found")
