// shared/cluster/assignment_manager.go
package cluster

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/stathat/consistent"

	"github.com/skyhavenmc/island-services/shared/registry"
)

// ServiceAssignmentManager lets a service instance decide whether it is
// responsible for a given entity (a player, a queued relocation task) by
// consistent hashing across the active instances of its type.
type ServiceAssignmentManager struct {
	registryClient   *registry.RegistryClient
	serviceRegistrar *registry.ServiceRegistrar
	updateInterval   time.Duration
	consistentHash   *consistent.Consistent
	chMux            sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
}

// NewServiceAssignmentManager creates and initializes a new manager. The
// local instance is added to the ring immediately so a fresh instance is
// responsible for its own hash range before the first refresh.
func NewServiceAssignmentManager(
	registryClient *registry.RegistryClient,
	serviceRegistrar *registry.ServiceRegistrar,
	updateInterval time.Duration,
) *ServiceAssignmentManager {
	ctx, cancel := context.WithCancel(context.Background())

	sam := &ServiceAssignmentManager{
		registryClient:   registryClient,
		serviceRegistrar: serviceRegistrar,
		updateInterval:   updateInterval,
		consistentHash:   consistent.New(),
		ctx:              ctx,
		cancel:           cancel,
	}

	sam.chMux.Lock()
	sam.consistentHash.Add(sam.serviceRegistrar.GetServiceID())
	sam.chMux.Unlock()

	return sam
}

// Start begins the periodic refresh of the hash ring. Run in a goroutine.
func (sam *ServiceAssignmentManager) Start() {
	ticker := time.NewTicker(sam.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sam.ctx.Done():
			log.Println("ServiceAssignmentManager: hash ring updater shutting down.")
			return
		case <-ticker.C:
			sam.updateConsistentHashRing()
		}
	}
}

// Stop gracefully shuts down the manager.
func (sam *ServiceAssignmentManager) Stop() {
	sam.cancel()
}

// updateConsistentHashRing rebuilds the ring when the set of active members
// changes.
func (sam *ServiceAssignmentManager) updateConsistentHashRing() {
	activeServices, err := sam.registryClient.GetActiveServices(sam.ctx, sam.serviceRegistrar.GetServiceType())
	if err != nil {
		log.Printf("ERROR: ServiceAssignmentManager: failed to get active services for type %q: %v", sam.serviceRegistrar.GetServiceType(), err)
		return
	}

	members := make([]string, 0, len(activeServices))
	for id := range activeServices {
		members = append(members, id)
	}
	slices.Sort(members)

	sam.chMux.Lock()
	defer sam.chMux.Unlock()

	currentMembers := sam.consistentHash.Members()
	slices.Sort(currentMembers)

	if !slices.Equal(members, currentMembers) {
		newHashRing := consistent.New()
		for _, member := range members {
			newHashRing.Add(member)
		}
		sam.consistentHash = newHashRing

		log.Printf("ServiceAssignmentManager: hash ring updated for %q. Active members: %v",
			sam.serviceRegistrar.GetServiceType(), newHashRing.Members())
	}
}

// IsResponsible checks whether the current instance owns the given entity ID
// on the hash ring.
func (sam *ServiceAssignmentManager) IsResponsible(entityID string) (bool, error) {
	sam.chMux.RLock()
	defer sam.chMux.RUnlock()

	if len(sam.consistentHash.Members()) == 0 {
		// Can happen briefly during startup.
		return false, fmt.Errorf("consistent hash ring is empty for service type %s", sam.serviceRegistrar.GetServiceType())
	}

	responsibleService, err := sam.consistentHash.Get(entityID)
	if err != nil {
		return false, fmt.Errorf("failed to get responsible service for entity %q: %w", entityID, err)
	}

	return responsibleService == sam.serviceRegistrar.GetServiceID(), nil
}
