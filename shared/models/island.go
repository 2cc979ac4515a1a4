// shared/models/island.go
package models

import (
	"time"
)

// Island represents an ownable island aggregate stored persistently in
// MongoDB. The owner is always present in Members at OwnerRank; membership
// updates keep that invariant in one document so capacity reads and rank
// writes stay atomic per island.
type Island struct {
	ID       string         `bson:"_id" json:"ID"`
	World    string         `bson:"world" json:"World"`
	Owner    string         `bson:"owner" json:"Owner"`
	Name     string         `bson:"name,omitempty" json:"Name,omitempty"`
	Members  map[string]int `bson:"members" json:"Members"` // player UUID -> rank
	Home     Location       `bson:"home" json:"Home"`
	Deleted  bool           `bson:"deleted" json:"Deleted"`

	// Per-island overrides. Zero means "use the configured default".
	InviteRank     int `bson:"invite_rank,omitempty" json:"InviteRank,omitempty"`
	MaxTeamSize    int `bson:"max_team_size,omitempty" json:"MaxTeamSize,omitempty"`
	MaxTrustedSize int `bson:"max_trusted_size,omitempty" json:"MaxTrustedSize,omitempty"`
	MaxCoopSize    int `bson:"max_coop_size,omitempty" json:"MaxCoopSize,omitempty"`

	CreatedAt *time.Time `bson:"created_at,omitempty" json:"CreatedAt,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"UpdatedAt,omitempty"`
}

// Rank returns the player's current rank on this island, VisitorRank if the
// player is not a member.
func (i *Island) Rank(playerUUID string) int {
	if i.Members == nil {
		return VisitorRank
	}
	return i.Members[playerUUID]
}

// SetRank sets a player's rank on the island, adding them as a member if
// absent.
func (i *Island) SetRank(playerUUID string, rank int) {
	if i.Members == nil {
		i.Members = make(map[string]int)
	}
	i.Members[playerUUID] = rank
}

// RemoveMember drops a player from the member map. Removing the owner is not
// allowed here; ownership transfer is an island-store concern.
func (i *Island) RemoveMember(playerUUID string) {
	if playerUUID == i.Owner {
		return
	}
	delete(i.Members, playerUUID)
}

// MemberCount counts members at the given rank. With includeAbove it counts
// everyone at or above the rank (the team-tier predicate, owner included);
// without it only members holding exactly that rank are counted (the
// trusted/coop tier predicate).
func (i *Island) MemberCount(rank int, includeAbove bool) int {
	count := 0
	for _, r := range i.Members {
		if includeAbove {
			if r >= rank {
				count++
			}
		} else if r == rank {
			count++
		}
	}
	return count
}

// HasTeam reports whether this island carries a team at all: more than one
// player at member rank or above. A solo owner has an island but no team.
func (i *Island) HasTeam() bool {
	return i.MemberCount(MemberRank, true) > 1
}

// InTeam reports whether the player is part of this island's team. A solo
// owner is not in a team; that distinction is what lets them accept a team
// invite elsewhere.
func (i *Island) InTeam(playerUUID string) bool {
	return i.Rank(playerUUID) >= MemberRank && i.HasTeam()
}
