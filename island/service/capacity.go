// island/service/capacity.go
package service

import (
	"github.com/skyhavenmc/island-services/shared/models"
)

// CapacityGate answers whether an island has room for one more member at a
// given rank. Per-island overrides take precedence over the configured
// defaults.
type CapacityGate struct {
	maxTeamSize    int
	maxTrustedSize int
	maxCoopSize    int
}

// NewCapacityGate creates a gate with the configured default limits.
func NewCapacityGate(maxTeamSize, maxTrustedSize, maxCoopSize int) *CapacityGate {
	return &CapacityGate{
		maxTeamSize:    maxTeamSize,
		maxTrustedSize: maxTrustedSize,
		maxCoopSize:    maxCoopSize,
	}
}

// MaxMembers returns the effective limit for the given rank on the given
// island, honoring per-island overrides.
func (g *CapacityGate) MaxMembers(island *models.Island, rank int) int {
	switch rank {
	case models.TrustedRank:
		if island.MaxTrustedSize > 0 {
			return island.MaxTrustedSize
		}
		return g.maxTrustedSize
	case models.CoopRank:
		if island.MaxCoopSize > 0 {
			return island.MaxCoopSize
		}
		return g.maxCoopSize
	default:
		if island.MaxTeamSize > 0 {
			return island.MaxTeamSize
		}
		return g.maxTeamSize
	}
}

// HasRoom reports whether the island can take one more member at rank.
//
// Team capacity counts everyone at member rank and above against the limit,
// so an island with max members already in the team is full. Trusted and
// coop capacity count only players holding exactly that rank, and the slot
// check allows the count to reach the limit before refusing.
func (g *CapacityGate) HasRoom(island *models.Island, rank int) bool {
	max := g.MaxMembers(island, rank)
	switch rank {
	case models.TrustedRank, models.CoopRank:
		return island.MemberCount(rank, false) <= max
	default:
		return island.MemberCount(models.MemberRank, true) < max
	}
}
