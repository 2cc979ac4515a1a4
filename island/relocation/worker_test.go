// island/relocation/worker_test.go
package relocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhavenmc/island-services/shared/models"
)

type fakeQueue struct {
	tasks   map[string]models.RelocationTask
	claimed []string
}

func newFakeQueue(tasks ...models.RelocationTask) *fakeQueue {
	fq := &fakeQueue{tasks: make(map[string]models.RelocationTask)}
	for _, task := range tasks {
		fq.tasks[task.Player] = task
	}
	return fq
}

func (fq *fakeQueue) All(context.Context) ([]models.RelocationTask, error) {
	out := make([]models.RelocationTask, 0, len(fq.tasks))
	for _, task := range fq.tasks {
		out = append(out, task)
	}
	return out, nil
}

func (fq *fakeQueue) Claim(_ context.Context, playerUUID string) (bool, error) {
	if _, ok := fq.tasks[playerUUID]; !ok {
		return false, nil
	}
	delete(fq.tasks, playerUUID)
	fq.claimed = append(fq.claimed, playerUUID)
	return true, nil
}

type fakeResolver struct {
	islands map[string]*models.Island
	deleted []string
}

func (fr *fakeResolver) GetIslandByID(_ context.Context, islandID string) (*models.Island, error) {
	return fr.islands[islandID], nil
}

func (fr *fakeResolver) SafeHomeLocation(island *models.Island) models.Location {
	return island.Home
}

func (fr *fakeResolver) DeleteIsland(_ context.Context, islandID string) error {
	fr.deleted = append(fr.deleted, islandID)
	return nil
}

type fakeTeleporter struct {
	teleportErr error
	teleports   []string
	completed   []string
}

func (ft *fakeTeleporter) Teleport(_ context.Context, playerUUID string, _ models.Location) error {
	if ft.teleportErr != nil {
		return ft.teleportErr
	}
	ft.teleports = append(ft.teleports, playerUUID)
	return nil
}

func (ft *fakeTeleporter) CompleteJoin(_ context.Context, playerUUID, _ string) error {
	ft.completed = append(ft.completed, playerUUID)
	return nil
}

type fakeAssigner struct {
	responsible bool
}

func (fa fakeAssigner) IsResponsible(string) (bool, error) {
	return fa.responsible, nil
}

type fakeNames struct{}

func (fakeNames) Name(_ context.Context, playerUUID string) (string, error) {
	return "name:" + playerUUID, nil
}

func targetIsland() *models.Island {
	return &models.Island{
		ID:    "target",
		World: "skyworld",
		Owner: "owner",
		Members: map[string]int{
			"owner":  models.OwnerRank,
			"player": models.MemberRank,
		},
		Home: models.Location{World: "skyworld", X: 100, Y: 120, Z: -40},
	}
}

func TestWorkerProcessesClaimedTask(t *testing.T) {
	queue := newFakeQueue(models.NewRelocationTask("player", "skyworld", "target", []string{"old"}))
	resolver := &fakeResolver{islands: map[string]*models.Island{"target": targetIsland()}}
	teleporter := &fakeTeleporter{}

	worker := NewWorker(queue, resolver, fakeNames{}, teleporter, fakeAssigner{responsible: true}, time.Second)
	worker.tick()

	assert.Equal(t, []string{"player"}, queue.claimed)
	assert.Equal(t, []string{"player"}, teleporter.teleports)
	// Old islands are deleted only after the teleport succeeded.
	assert.Equal(t, []string{"old"}, resolver.deleted)
	assert.Equal(t, []string{"player"}, teleporter.completed)
	assert.Empty(t, queue.tasks)
}

func TestWorkerSkipsUnassignedTasks(t *testing.T) {
	queue := newFakeQueue(models.NewRelocationTask("player", "skyworld", "target", nil))
	resolver := &fakeResolver{islands: map[string]*models.Island{"target": targetIsland()}}
	teleporter := &fakeTeleporter{}

	worker := NewWorker(queue, resolver, fakeNames{}, teleporter, fakeAssigner{responsible: false}, time.Second)
	worker.tick()

	// The task stays queued for the responsible instance.
	assert.Empty(t, queue.claimed)
	assert.Empty(t, teleporter.teleports)
	require.Len(t, queue.tasks, 1)
}

func TestWorkerTeleportFailureSkipsCleanup(t *testing.T) {
	queue := newFakeQueue(models.NewRelocationTask("player", "skyworld", "target", []string{"old"}))
	resolver := &fakeResolver{islands: map[string]*models.Island{"target": targetIsland()}}
	teleporter := &fakeTeleporter{teleportErr: errors.New("server unreachable")}

	worker := NewWorker(queue, resolver, fakeNames{}, teleporter, fakeAssigner{responsible: true}, time.Second)
	worker.tick()

	// No retry: the task is consumed, but the destructive cleanup never ran.
	assert.Empty(t, queue.tasks)
	assert.Empty(t, resolver.deleted)
	assert.Empty(t, teleporter.completed)
}

func TestWorkerDropsTaskForMissingIsland(t *testing.T) {
	queue := newFakeQueue(models.NewRelocationTask("player", "skyworld", "gone", []string{"old"}))
	resolver := &fakeResolver{islands: map[string]*models.Island{}}
	teleporter := &fakeTeleporter{}

	worker := NewWorker(queue, resolver, fakeNames{}, teleporter, fakeAssigner{responsible: true}, time.Second)
	worker.tick()

	assert.Empty(t, queue.tasks)
	assert.Empty(t, teleporter.teleports)
	assert.Empty(t, resolver.deleted)
}

func TestWorkerStartStop(t *testing.T) {
	queue := newFakeQueue()
	resolver := &fakeResolver{islands: map[string]*models.Island{}}

	worker := NewWorker(queue, resolver, fakeNames{}, &fakeTeleporter{}, fakeAssigner{responsible: true}, 10*time.Millisecond)
	worker.Start()
	time.Sleep(30 * time.Millisecond)
	worker.Stop()
}
