// game/respawn/relocator_test.go
package respawn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhavenmc/island-services/shared/config"
	"github.com/skyhavenmc/island-services/shared/models"
)

type fakeIslandClient struct {
	islands map[string]*models.Island // keyed by player UUID
	homes   map[string]*models.Location
	names   map[string]string
}

func (fc *fakeIslandClient) IslandByPlayer(_ context.Context, _, playerUUID string) (*models.Island, error) {
	return fc.islands[playerUUID], nil
}

func (fc *fakeIslandClient) SafeHome(_ context.Context, islandID string) (*models.Location, error) {
	return fc.homes[islandID], nil
}

func (fc *fakeIslandClient) PlayerName(_ context.Context, playerUUID string) (string, error) {
	return fc.names[playerUUID], nil
}

type fakeSessions struct {
	deaths   []string
	respawns []string // "player/owner" pairs for command runs
}

func (fs *fakeSessions) RecordDeath(_ context.Context, playerUUID string) (int64, error) {
	fs.deaths = append(fs.deaths, playerUUID)
	return int64(len(fs.deaths)), nil
}

func (fs *fakeSessions) RunRespawnCommands(_ context.Context, playerUUID, ownerName string) error {
	fs.respawns = append(fs.respawns, playerUUID+"/"+ownerName)
	return nil
}

func respawnFixture() (*Relocator, *fakeIslandClient, *fakeSessions) {
	cfg := &config.GameServiceConfig{
		IslandRespawnWorlds: []string{"skyworld"},
	}
	island := &models.Island{
		ID:    "island-1",
		World: "skyworld",
		Owner: "owner",
		Members: map[string]int{
			"owner":  models.OwnerRank,
			"player": models.MemberRank,
		},
	}
	islands := &fakeIslandClient{
		islands: map[string]*models.Island{"player": island},
		homes:   map[string]*models.Location{"island-1": {World: "skyworld", X: 10, Y: 120, Z: 20}},
		names:   map[string]string{"owner": "OwnerName"},
	}
	sessions := &fakeSessions{}
	return NewRelocator(cfg, islands, sessions), islands, sessions
}

func TestRelocatorDeathThenRespawn(t *testing.T) {
	relocator, _, sessions := respawnFixture()
	ctx := context.Background()

	require.NoError(t, relocator.OnDeath(ctx, "player", "skyworld"))
	assert.Equal(t, []string{"player"}, sessions.deaths)

	loc, err := relocator.OnRespawn(ctx, "player")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, float64(10), loc.X)
	assert.Equal(t, []string{"player/OwnerName"}, sessions.respawns)

	// The death record is consumed; a second respawn is untouched.
	loc, err = relocator.OnRespawn(ctx, "player")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestRelocatorIgnoresDisabledWorld(t *testing.T) {
	relocator, _, sessions := respawnFixture()
	ctx := context.Background()

	require.NoError(t, relocator.OnDeath(ctx, "player", "otherworld"))
	// Deaths still count, but no respawn redirect is recorded.
	assert.Equal(t, []string{"player"}, sessions.deaths)

	loc, err := relocator.OnRespawn(ctx, "player")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestRelocatorIgnoresPlayersWithoutIsland(t *testing.T) {
	relocator, islands, _ := respawnFixture()
	ctx := context.Background()
	delete(islands.islands, "player")

	require.NoError(t, relocator.OnDeath(ctx, "player", "skyworld"))

	loc, err := relocator.OnRespawn(ctx, "player")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestRelocatorIslandGoneBetweenDeathAndRespawn(t *testing.T) {
	relocator, islands, sessions := respawnFixture()
	ctx := context.Background()

	require.NoError(t, relocator.OnDeath(ctx, "player", "skyworld"))
	delete(islands.islands, "player")

	// No redirect without an island, but the death record was consumed so
	// the commands still run, with the player standing in for the owner.
	loc, err := relocator.OnRespawn(ctx, "player")
	require.NoError(t, err)
	assert.Nil(t, loc)
	assert.Equal(t, []string{"player/player"}, sessions.respawns)
}

func TestRelocatorRunsCommandsWithoutSafeHome(t *testing.T) {
	relocator, islands, sessions := respawnFixture()
	ctx := context.Background()
	delete(islands.homes, "island-1")

	require.NoError(t, relocator.OnDeath(ctx, "player", "skyworld"))

	loc, err := relocator.OnRespawn(ctx, "player")
	require.NoError(t, err)
	assert.Nil(t, loc)
	assert.Equal(t, []string{"player/OwnerName"}, sessions.respawns)
}

func TestRelocatorOwnerNameFallback(t *testing.T) {
	relocator, islands, sessions := respawnFixture()
	ctx := context.Background()

	// Owner name unresolvable, player's own name known.
	delete(islands.names, "owner")
	islands.names["player"] = "PlayerName"

	require.NoError(t, relocator.OnDeath(ctx, "player", "skyworld"))
	loc, err := relocator.OnRespawn(ctx, "player")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, []string{"player/PlayerName"}, sessions.respawns)
}
