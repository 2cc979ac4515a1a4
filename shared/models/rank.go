// shared/models/rank.go
package models

// Island rank levels. Only the relative order is meaningful; the numeric
// values leave room for future intermediate ranks.
const (
	VisitorRank = 0
	MemberRank  = 100
	TrustedRank = 200
	CoopRank    = 300
	OwnerRank   = 1000
)

// RankName returns a human readable name for a rank level, used in log
// messages and rank-change notifications.
func RankName(rank int) string {
	switch {
	case rank >= OwnerRank:
		return "owner"
	case rank >= CoopRank:
		return "coop"
	case rank >= TrustedRank:
		return "trusted"
	case rank >= MemberRank:
		return "member"
	default:
		return "visitor"
	}
}
