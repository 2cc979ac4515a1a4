// island/service/capacity_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skyhavenmc/island-services/shared/models"
)

func teamIsland(memberCount int) *models.Island {
	island := &models.Island{
		ID:      "island-1",
		World:   "skyworld",
		Owner:   "owner",
		Members: map[string]int{"owner": models.OwnerRank},
	}
	for i := 0; i < memberCount; i++ {
		island.Members["member"+string(rune('a'+i))] = models.MemberRank
	}
	return island
}

func TestCapacityGateTeamTier(t *testing.T) {
	gate := NewCapacityGate(4, 4, 4)

	// Owner plus two members leaves one slot at max 4.
	assert.True(t, gate.HasRoom(teamIsland(2), models.MemberRank))

	// Owner plus three members is exactly max, which is full for the team
	// tier.
	assert.False(t, gate.HasRoom(teamIsland(3), models.MemberRank))
}

func TestCapacityGateTrustedTierOffByOne(t *testing.T) {
	gate := NewCapacityGate(4, 2, 2)

	island := teamIsland(0)
	island.Members["t1"] = models.TrustedRank
	island.Members["t2"] = models.TrustedRank

	// The trusted tier only refuses once the exact-rank count exceeds the
	// limit, so a count equal to max still admits one more.
	assert.True(t, gate.HasRoom(island, models.TrustedRank))

	island.Members["t3"] = models.TrustedRank
	assert.False(t, gate.HasRoom(island, models.TrustedRank))
}

func TestCapacityGateCoopTierCountsExactRankOnly(t *testing.T) {
	gate := NewCapacityGate(4, 1, 1)

	island := teamIsland(0)
	island.Members["t1"] = models.TrustedRank
	island.Members["t2"] = models.TrustedRank

	// Trusted members do not count against the coop tier.
	assert.True(t, gate.HasRoom(island, models.CoopRank))
}

func TestCapacityGatePerIslandOverrides(t *testing.T) {
	gate := NewCapacityGate(4, 4, 4)

	island := teamIsland(3)
	island.MaxTeamSize = 8
	assert.Equal(t, 8, gate.MaxMembers(island, models.MemberRank))
	assert.True(t, gate.HasRoom(island, models.MemberRank))

	island.MaxTrustedSize = 1
	assert.Equal(t, 1, gate.MaxMembers(island, models.TrustedRank))

	island.MaxCoopSize = 2
	assert.Equal(t, 2, gate.MaxMembers(island, models.CoopRank))
}
