// shared/models/invite.go
package models

import "time"

// InviteType distinguishes the three acceptance transitions.
type InviteType string

const (
	InviteTypeTeam  InviteType = "TEAM"
	InviteTypeCoop  InviteType = "COOP"
	InviteTypeTrust InviteType = "TRUST"
)

// Valid reports whether t is one of the known invite types.
func (t InviteType) Valid() bool {
	switch t {
	case InviteTypeTeam, InviteTypeCoop, InviteTypeTrust:
		return true
	}
	return false
}

// Rank returns the rank granted when a COOP or TRUST invite is applied.
// TEAM invites grant MemberRank through the team-merge path.
func (t InviteType) Rank() int {
	switch t {
	case InviteTypeCoop:
		return CoopRank
	case InviteTypeTrust:
		return TrustedRank
	default:
		return MemberRank
	}
}

// Invite is a pending offer of membership or elevated rank, keyed by invitee.
// IslandID is a snapshot taken at issue time; the live island is re-resolved
// from the store where the acceptance protocol requires it.
type Invite struct {
	Inviter   string     `json:"Inviter"`
	Invitee   string     `json:"Invitee"`
	Type      InviteType `json:"Type"`
	World     string     `json:"World"`
	IslandID  string     `json:"IslandID"`
	CreatedAt time.Time  `json:"CreatedAt"`
}

// NewInvite creates an invite stamped with the current time.
func NewInvite(inviter, invitee string, inviteType InviteType, world, islandID string) Invite {
	return Invite{
		Inviter:   inviter,
		Invitee:   invitee,
		Type:      inviteType,
		World:     world,
		IslandID:  islandID,
		CreatedAt: time.Now(),
	}
}
