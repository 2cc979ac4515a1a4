// shared/models/island_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIslandRank(t *testing.T) {
	island := &Island{
		Owner: "owner",
		Members: map[string]int{
			"owner":   OwnerRank,
			"member":  MemberRank,
			"trusted": TrustedRank,
		},
	}

	assert.Equal(t, OwnerRank, island.Rank("owner"))
	assert.Equal(t, MemberRank, island.Rank("member"))
	assert.Equal(t, TrustedRank, island.Rank("trusted"))
	assert.Equal(t, VisitorRank, island.Rank("stranger"))
}

func TestIslandRankNilMembers(t *testing.T) {
	island := &Island{Owner: "owner"}
	assert.Equal(t, VisitorRank, island.Rank("owner"))
}

func TestIslandSetRank(t *testing.T) {
	island := &Island{Owner: "owner"}
	island.SetRank("player", CoopRank)
	assert.Equal(t, CoopRank, island.Rank("player"))

	island.SetRank("player", MemberRank)
	assert.Equal(t, MemberRank, island.Rank("player"))
}

func TestIslandRemoveMember(t *testing.T) {
	island := &Island{
		Owner: "owner",
		Members: map[string]int{
			"owner":  OwnerRank,
			"member": MemberRank,
		},
	}

	island.RemoveMember("member")
	assert.Equal(t, VisitorRank, island.Rank("member"))

	// The owner cannot be removed through membership edits.
	island.RemoveMember("owner")
	assert.Equal(t, OwnerRank, island.Rank("owner"))
}

func TestIslandMemberCount(t *testing.T) {
	island := &Island{
		Owner: "owner",
		Members: map[string]int{
			"owner":    OwnerRank,
			"member1":  MemberRank,
			"member2":  MemberRank,
			"trusted1": TrustedRank,
			"coop1":    CoopRank,
		},
	}

	// Counting at MemberRank and above includes everyone holding a
	// membership rank, owner included.
	assert.Equal(t, 5, island.MemberCount(MemberRank, true))
	// Exact-rank counting does not bleed across tiers.
	assert.Equal(t, 2, island.MemberCount(MemberRank, false))
	assert.Equal(t, 1, island.MemberCount(TrustedRank, false))
	assert.Equal(t, 1, island.MemberCount(CoopRank, false))
	assert.Equal(t, 3, island.MemberCount(TrustedRank, true))
}

func TestIslandInTeam(t *testing.T) {
	island := &Island{
		Owner: "owner",
		Members: map[string]int{
			"owner":   OwnerRank,
			"member":  MemberRank,
			"trusted": TrustedRank,
			"coop":    CoopRank,
		},
	}

	assert.True(t, island.InTeam("owner"))
	assert.True(t, island.InTeam("member"))
	assert.True(t, island.InTeam("trusted"))
	assert.True(t, island.InTeam("coop"))
	assert.False(t, island.InTeam("stranger"))
}

func TestIslandSoloOwnerHasNoTeam(t *testing.T) {
	island := &Island{
		Owner:   "owner",
		Members: map[string]int{"owner": OwnerRank},
	}

	assert.False(t, island.HasTeam())
	assert.False(t, island.InTeam("owner"))

	island.SetRank("member", MemberRank)
	assert.True(t, island.HasTeam())
	assert.True(t, island.InTeam("owner"))
}

func TestInviteTypeValid(t *testing.T) {
	assert.True(t, InviteTypeTeam.Valid())
	assert.True(t, InviteTypeCoop.Valid())
	assert.True(t, InviteTypeTrust.Valid())
	assert.False(t, InviteType("FRIEND").Valid())
	assert.False(t, InviteType("").Valid())
}

func TestInviteTypeRank(t *testing.T) {
	assert.Equal(t, MemberRank, InviteTypeTeam.Rank())
	assert.Equal(t, CoopRank, InviteTypeCoop.Rank())
	assert.Equal(t, TrustedRank, InviteTypeTrust.Rank())
}
