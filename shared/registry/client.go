// shared/registry/client.go
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RegistryClient reads the registry, keeping ServiceRegistrar purely for
// self-registration. Any service can use it to discover active instances.
type RegistryClient struct {
	redisClient    *redis.ClusterClient
	serviceTimeout time.Duration
}

// NewRegistryClient takes an already initialized *redis.ClusterClient.
func NewRegistryClient(redisClient *redis.ClusterClient, serviceTimeout time.Duration) *RegistryClient {
	return &RegistryClient{
		redisClient:    redisClient,
		serviceTimeout: serviceTimeout,
	}
}

// GetActiveServices retrieves a map of active service instances for a given
// service type, filtering out instances whose last heartbeat is older than
// the configured timeout.
func (rc *RegistryClient) GetActiveServices(ctx context.Context, serviceType string) (map[string]ServiceInfo, error) {
	key := fmt.Sprintf("%s%s", RedisRegistryHashPrefix, serviceType)
	results, err := rc.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get all services of type %s from Redis: %w", serviceType, err)
	}

	activeServices := make(map[string]ServiceInfo)
	currentTime := time.Now()

	for instanceID, infoJSON := range results {
		var info ServiceInfo
		if err := json.Unmarshal([]byte(infoJSON), &info); err != nil {
			log.Printf("WARN: RegistryClient: failed to unmarshal ServiceInfo for ID %s (type %s): %v", instanceID, serviceType, err)
			continue // malformed entries are cleaned up by the registrar
		}
		if currentTime.Sub(time.UnixMilli(info.LastSeen)) <= rc.serviceTimeout {
			activeServices[instanceID] = info
		}
	}
	return activeServices, nil
}
