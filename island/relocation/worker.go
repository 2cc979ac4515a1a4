// island/relocation/worker.go
package relocation

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/skyhavenmc/island-services/island/service"
	"github.com/skyhavenmc/island-services/shared/models"
)

// Teleporter is the slice of the game service the worker needs: move the
// player and finish the join on the game side.
type Teleporter interface {
	Teleport(ctx context.Context, playerUUID string, location models.Location) error
	CompleteJoin(ctx context.Context, playerUUID, ownerName string) error
}

// TaskQueue is the shared relocation queue. RelocationStore implements it on
// a Redis hash.
type TaskQueue interface {
	All(ctx context.Context) ([]models.RelocationTask, error)
	Claim(ctx context.Context, playerUUID string) (bool, error)
}

// IslandResolver is the island-side surface the worker needs.
type IslandResolver interface {
	GetIslandByID(ctx context.Context, islandID string) (*models.Island, error)
	SafeHomeLocation(island *models.Island) models.Location
	DeleteIsland(ctx context.Context, islandID string) error
}

// Assigner decides which instance in the cluster owns a given player's
// tasks.
type Assigner interface {
	IsResponsible(entityID string) (bool, error)
}

// Worker drains the relocation queue: teleports freshly joined players to
// their new home and deletes the islands they left behind. Instances share
// the queue through Redis; the consistent-hash ring decides which instance
// handles which player, and the claim step settles any race left over from
// ring changes.
type Worker struct {
	tasks      TaskQueue
	islands    IslandResolver
	names      service.NameResolver
	teleporter Teleporter
	assignment Assigner

	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a relocation worker. Call Start to begin processing.
func NewWorker(
	tasks TaskQueue,
	islands IslandResolver,
	names service.NameResolver,
	teleporter Teleporter,
	assignment Assigner,
	interval time.Duration,
) *Worker {
	return &Worker{
		tasks:      tasks,
		islands:    islands,
		names:      names,
		teleporter: teleporter,
		assignment: assignment,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the processing loop.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
	log.Printf("INFO: Relocation worker started (interval: %s).", w.interval)
}

// Stop signals the loop to exit and waits for in-flight processing.
func (w *Worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
	log.Println("INFO: Relocation worker stopped.")
}

func (w *Worker) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick()
		case <-w.stopChan:
			return
		}
	}
}

func (w *Worker) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval*5)
	defer cancel()

	tasks, err := w.tasks.All(ctx)
	if err != nil {
		log.Printf("ERROR: Relocation worker failed to read queue: %v", err)
		return
	}

	for _, task := range tasks {
		responsible, err := w.assignment.IsResponsible(task.Player)
		if err != nil {
			log.Printf("WARN: Relocation worker could not determine responsibility for %s: %v", task.Player, err)
			continue
		}
		if !responsible {
			continue
		}

		claimed, err := w.tasks.Claim(ctx, task.Player)
		if err != nil {
			log.Printf("ERROR: Relocation worker failed to claim task for %s: %v", task.Player, err)
			continue
		}
		if !claimed {
			continue
		}

		w.process(ctx, task)
	}
}

// process runs a claimed task once. There is no retry: a failed teleport
// leaves the player at their current position with membership already
// committed, and the old islands stay until an operator cleans up.
func (w *Worker) process(ctx context.Context, task models.RelocationTask) {
	island, err := w.islands.GetIslandByID(ctx, task.IslandID)
	if err != nil {
		log.Printf("ERROR: Relocation for %s failed to load island %s: %v", task.Player, task.IslandID, err)
		return
	}
	if island == nil {
		log.Printf("WARN: Relocation for %s dropped, island %s no longer exists.", task.Player, task.IslandID)
		return
	}

	home := w.islands.SafeHomeLocation(island)
	if err := w.teleporter.Teleport(ctx, task.Player, home); err != nil {
		log.Printf("ERROR: Relocation teleport for %s to island %s failed: %v", task.Player, task.IslandID, err)
		return
	}

	// Destructive cleanup only after the teleport went through.
	for _, oldID := range task.OldIslandIDs {
		if err := w.islands.DeleteIsland(ctx, oldID); err != nil {
			log.Printf("ERROR: Failed to delete old island %s for %s: %v", oldID, task.Player, err)
		}
	}

	ownerName, err := w.names.Name(ctx, island.Owner)
	if err != nil {
		log.Printf("WARN: Failed to resolve owner name for island %s: %v", island.ID, err)
		ownerName = island.Owner
	}
	if err := w.teleporter.CompleteJoin(ctx, task.Player, ownerName); err != nil {
		log.Printf("WARN: Failed to complete join on game side for %s: %v", task.Player, err)
	}

	log.Printf("INFO: Relocated %s to island %s (deleted %d old islands).", task.Player, task.IslandID, len(task.OldIslandIDs))
}
