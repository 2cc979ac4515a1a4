// island/service/accept.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/skyhavenmc/island-services/island/events"
	"github.com/skyhavenmc/island-services/shared/models"
)

// Outcome is the result of an invite operation, returned to the caller so
// the game side can react (messages are already sent as directives).
type Outcome string

const (
	// OutcomeNoInviteFound means no pending invite exists for the player.
	OutcomeNoInviteFound Outcome = "NO_INVITE_FOUND"
	// OutcomeInvalidInvite means the invite no longer holds: the island is
	// gone or the inviter lost the rank required to invite. The invite is
	// removed.
	OutcomeInvalidInvite Outcome = "INVALID_INVITE"
	// OutcomeAlreadyInTeam means the invitee already belongs to a team. The
	// invite is kept so they can accept after leaving.
	OutcomeAlreadyInTeam Outcome = "ALREADY_IN_TEAM"
	// OutcomeTierFull means the trusted or coop tier is at capacity. The
	// invite is consumed.
	OutcomeTierFull Outcome = "TIER_FULL"
	// OutcomeIslandFull means the team has no member slots left. The invite
	// is consumed.
	OutcomeIslandFull Outcome = "ISLAND_FULL"
	// OutcomeCancelled means a pre-join hook vetoed the join or the
	// confirmation window lapsed. Nothing is mutated and the invite is
	// kept.
	OutcomeCancelled Outcome = "CANCELLED"
	// OutcomeAwaitingConfirmation means validation passed and the player
	// must confirm within the configured window to proceed.
	OutcomeAwaitingConfirmation Outcome = "AWAITING_CONFIRMATION"
	// OutcomeCompleted means the operation went through.
	OutcomeCompleted Outcome = "COMPLETED"
)

var (
	ErrInvalidInviteType = errors.New("invalid invite type")
	ErrNoIsland          = errors.New("inviter has no island")
	ErrSelfInvite        = errors.New("cannot invite yourself")
)

const (
	msgInviteReceivedTeam  = "You have been invited to join %s's island. Accept with /island team accept."
	msgInviteReceivedCoop  = "%s has invited you to coop their island."
	msgInviteReceivedTrust = "%s now trusts you on their island."
	msgInviteSent          = "Invite sent to %s."
	msgInviteRejected      = "%s rejected your invitation."
	msgConfirmJoin         = "This will reset your current island progress. Repeat the command within %s to confirm."
	msgJoinedTeam          = "You joined %s's island."
	msgPlayerJoinedTeam    = "%s joined your island."
	msgRankGranted         = "You are now %s on %s's island."
	msgPlayerRankGranted   = "%s is now %s on your island."
)

// InviteService coordinates the full invitation lifecycle: issuing,
// validating, two-step acceptance, and rejection. All island reads during
// acceptance are live, never taken from the invite snapshot, so stale
// invites are caught at apply time.
type InviteService struct {
	invites   *InviteRegistry
	confirms  *ConfirmationTracker
	capacity  *CapacityGate
	islands   IslandDirectory
	sessions  GameSession
	relocator RelocationScheduler
	names     NameResolver
	bus       *events.Bus

	inviteMinRank int
}

// NewInviteService wires the invite coordinator. inviteMinRank is the
// default rank an inviter must hold to send team invites, overridable per
// island.
func NewInviteService(
	invites *InviteRegistry,
	confirms *ConfirmationTracker,
	capacity *CapacityGate,
	islands IslandDirectory,
	sessions GameSession,
	relocator RelocationScheduler,
	names NameResolver,
	bus *events.Bus,
	inviteMinRank int,
) *InviteService {
	return &InviteService{
		invites:       invites,
		confirms:      confirms,
		capacity:      capacity,
		islands:       islands,
		sessions:      sessions,
		relocator:     relocator,
		names:         names,
		bus:           bus,
		inviteMinRank: inviteMinRank,
	}
}

// inviteRank returns the rank required to send team invites for the island.
func (s *InviteService) inviteRank(island *models.Island) int {
	if island.InviteRank > 0 {
		return island.InviteRank
	}
	return s.inviteMinRank
}

// Issue creates an invite from inviter to invitee. Any previous invite for
// the invitee is replaced. The invitee is notified when online.
func (s *InviteService) Issue(ctx context.Context, inviterUUID, inviteeUUID, world string, inviteType models.InviteType) (Outcome, error) {
	if !inviteType.Valid() {
		return "", ErrInvalidInviteType
	}
	if inviterUUID == inviteeUUID {
		return "", ErrSelfInvite
	}

	island, err := s.islands.GetIslandByPlayer(ctx, world, inviterUUID)
	if err != nil {
		return "", fmt.Errorf("failed to look up inviter's island: %w", err)
	}
	if island == nil {
		return "", ErrNoIsland
	}
	if inviteType == models.InviteTypeTeam && island.Rank(inviterUUID) < s.inviteRank(island) {
		return OutcomeInvalidInvite, nil
	}

	if inviteType == models.InviteTypeTeam {
		inTeam, err := s.islands.InTeam(ctx, world, inviteeUUID)
		if err != nil {
			return "", fmt.Errorf("failed to check invitee team status: %w", err)
		}
		if inTeam {
			return OutcomeAlreadyInTeam, nil
		}
	}

	s.invites.Put(models.NewInvite(inviterUUID, inviteeUUID, inviteType, world, island.ID))

	inviterName, err := s.names.Name(ctx, inviterUUID)
	if err != nil {
		log.Printf("WARN: Failed to resolve inviter name for %s: %v", inviterUUID, err)
		inviterName = inviterUUID
	}
	switch inviteType {
	case models.InviteTypeCoop:
		s.notify(ctx, inviteeUUID, fmt.Sprintf(msgInviteReceivedCoop, inviterName))
	case models.InviteTypeTrust:
		s.notify(ctx, inviteeUUID, fmt.Sprintf(msgInviteReceivedTrust, inviterName))
	default:
		s.notify(ctx, inviteeUUID, fmt.Sprintf(msgInviteReceivedTeam, inviterName))
	}

	inviteeName, err := s.names.Name(ctx, inviteeUUID)
	if err != nil {
		inviteeName = inviteeUUID
	}
	s.notify(ctx, inviterUUID, fmt.Sprintf(msgInviteSent, inviteeName))

	log.Printf("INFO: %s invited %s (%s) to island %s.", inviterUUID, inviteeUUID, inviteType, island.ID)
	return OutcomeCompleted, nil
}

// Accept is the first step of acceptance: it validates the pending invite
// and opens the confirmation window. Every invite type requires the player
// to confirm explicitly; only team joins carry an extra prompt, because
// they reset the invitee's progress.
func (s *InviteService) Accept(ctx context.Context, inviteeUUID string) (Outcome, error) {
	invite, ok := s.invites.Get(inviteeUUID)
	if !ok {
		return OutcomeNoInviteFound, nil
	}

	_, outcome, err := s.validate(ctx, invite)
	if err != nil || outcome != "" {
		return outcome, err
	}

	s.confirms.Begin(inviteeUUID)
	if invite.Type == models.InviteTypeTeam {
		s.notify(ctx, inviteeUUID, fmt.Sprintf(msgConfirmJoin, s.confirms.timeout))
	}
	return OutcomeAwaitingConfirmation, nil
}

// Confirm is the second step of acceptance. The confirmation must still be
// live, and the invite is validated again because the island can change
// during the window.
func (s *InviteService) Confirm(ctx context.Context, inviteeUUID string) (Outcome, error) {
	if !s.confirms.Consume(inviteeUUID) {
		// The window lapsed or never opened. Nothing has been mutated and
		// the invite, if any, stays pending.
		return OutcomeCancelled, nil
	}

	invite, ok := s.invites.Get(inviteeUUID)
	if !ok {
		return OutcomeNoInviteFound, nil
	}

	island, outcome, err := s.validate(ctx, invite)
	if err != nil || outcome != "" {
		return outcome, err
	}

	return s.apply(ctx, invite, island)
}

// Reject drops the invitee's pending invite and notifies the inviter.
func (s *InviteService) Reject(ctx context.Context, inviteeUUID string) (Outcome, error) {
	invite, ok := s.invites.Get(inviteeUUID)
	if !ok {
		return OutcomeNoInviteFound, nil
	}

	s.invites.Remove(inviteeUUID)
	s.confirms.Cancel(inviteeUUID)

	inviteeName, err := s.names.Name(ctx, inviteeUUID)
	if err != nil {
		inviteeName = inviteeUUID
	}
	s.notifyInviter(ctx, invite.Inviter, fmt.Sprintf(msgInviteRejected, inviteeName))

	log.Printf("INFO: %s rejected invite from %s.", inviteeUUID, invite.Inviter)
	return OutcomeCompleted, nil
}

// validate re-checks an invite against the live island state. It returns a
// non-empty outcome when the invite cannot proceed, handling invite removal
// per failure:
//
//   - island gone or inviter demoted: invite removed (InvalidInvite)
//   - invitee already in a team: invite kept (AlreadyInTeam)
//   - pre-join hook veto: invite kept, nothing mutated (Cancelled)
func (s *InviteService) validate(ctx context.Context, invite models.Invite) (*models.Island, Outcome, error) {
	island, err := s.islands.GetIslandByID(ctx, invite.IslandID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up island %s: %w", invite.IslandID, err)
	}
	if island == nil || island.Deleted {
		s.invites.Remove(invite.Invitee)
		return nil, OutcomeInvalidInvite, nil
	}

	if invite.Type == models.InviteTypeTeam {
		// The inviter may have been demoted or kicked since the invite was
		// sent. That invalidates the invite before the invitee's own team
		// standing is even considered. Coop and trust invites are not
		// re-checked.
		if island.Rank(invite.Inviter) < s.inviteRank(island) {
			s.invites.Remove(invite.Invitee)
			return nil, OutcomeInvalidInvite, nil
		}

		inTeam, err := s.islands.InTeam(ctx, invite.World, invite.Invitee)
		if err != nil {
			return nil, "", fmt.Errorf("failed to check team status for %s: %w", invite.Invitee, err)
		}
		if inTeam {
			return nil, OutcomeAlreadyInTeam, nil
		}

		cancelled := s.bus.FireCancellable(events.Event{
			Type:     events.TypeTeamPreJoin,
			IslandID: island.ID,
			World:    island.World,
			Player:   invite.Invitee,
			NewRank:  models.MemberRank,
		})
		if cancelled {
			return nil, OutcomeCancelled, nil
		}
	}

	return island, "", nil
}

// apply consumes the invite and commits the rank change. The invite is
// removed before the capacity check, so a full island still costs the
// invite.
func (s *InviteService) apply(ctx context.Context, invite models.Invite, island *models.Island) (Outcome, error) {
	s.invites.Remove(invite.Invitee)

	rank := invite.Type.Rank()
	if !s.capacity.HasRoom(island, rank) {
		if invite.Type == models.InviteTypeTeam {
			return OutcomeIslandFull, nil
		}
		return OutcomeTierFull, nil
	}

	if invite.Type == models.InviteTypeTeam {
		return s.applyTeam(ctx, invite, island)
	}
	return s.applyRank(ctx, invite, island, rank)
}

// applyRank grants a coop or trusted rank. No relocation, no reset.
func (s *InviteService) applyRank(ctx context.Context, invite models.Invite, island *models.Island, rank int) (Outcome, error) {
	oldRank := island.Rank(invite.Invitee)
	if err := s.islands.SetRank(ctx, island.ID, invite.Invitee, rank); err != nil {
		return "", fmt.Errorf("failed to set rank on island %s: %w", island.ID, err)
	}

	s.bus.Publish(events.Event{
		Type:     events.TypeRankChanged,
		IslandID: island.ID,
		World:    island.World,
		Player:   invite.Invitee,
		OldRank:  oldRank,
		NewRank:  rank,
	})

	ownerName, err := s.names.Name(ctx, island.Owner)
	if err != nil {
		ownerName = island.Owner
	}
	inviteeName, err := s.names.Name(ctx, invite.Invitee)
	if err != nil {
		inviteeName = invite.Invitee
	}
	rankName := models.RankName(rank)
	s.notify(ctx, invite.Invitee, fmt.Sprintf(msgRankGranted, rankName, ownerName))
	s.notifyInviter(ctx, invite.Inviter, fmt.Sprintf(msgPlayerRankGranted, inviteeName, rankName))

	log.Printf("INFO: %s is now %s on island %s.", invite.Invitee, rankName, island.ID)
	return OutcomeCompleted, nil
}

// applyTeam commits a team join. Membership is written synchronously; the
// teleport and the deletion of the invitee's old islands are deferred to the
// relocation worker. The invitee's session is reset before they become a
// member, matching a fresh start on the new island.
func (s *InviteService) applyTeam(ctx context.Context, invite models.Invite, island *models.Island) (Outcome, error) {
	oldIslands, err := s.islands.GetIslands(ctx, invite.World, invite.Invitee)
	if err != nil {
		return "", fmt.Errorf("failed to collect old islands for %s: %w", invite.Invitee, err)
	}
	oldIslandIDs := make([]string, 0, len(oldIslands))
	for _, old := range oldIslands {
		if old.Owner == invite.Invitee {
			oldIslandIDs = append(oldIslandIDs, old.ID)
		}
	}

	if err := s.sessions.ResetSession(ctx, invite.Invitee); err != nil {
		log.Printf("WARN: Failed to reset session for %s: %v", invite.Invitee, err)
	}

	// Drop any lower ranks the invitee holds on other islands in the world,
	// then commit the membership.
	if err := s.islands.RemovePlayer(ctx, invite.World, invite.Invitee); err != nil {
		return "", fmt.Errorf("failed to clear old memberships for %s: %w", invite.Invitee, err)
	}
	if err := s.islands.SetRank(ctx, island.ID, invite.Invitee, models.MemberRank); err != nil {
		return "", fmt.Errorf("failed to add %s to island %s: %w", invite.Invitee, island.ID, err)
	}

	if err := s.relocator.Schedule(ctx, models.NewRelocationTask(invite.Invitee, invite.World, island.ID, oldIslandIDs)); err != nil {
		// Membership is already committed. The player keeps their new team
		// but stays where they are until an operator intervenes.
		log.Printf("ERROR: Failed to schedule relocation for %s to island %s: %v", invite.Invitee, island.ID, err)
	}

	s.bus.Publish(events.Event{
		Type:     events.TypeTeamJoined,
		IslandID: island.ID,
		World:    island.World,
		Player:   invite.Invitee,
		OldRank:  models.VisitorRank,
		NewRank:  models.MemberRank,
	})

	ownerName, err := s.names.Name(ctx, island.Owner)
	if err != nil {
		ownerName = island.Owner
	}
	inviteeName, err := s.names.Name(ctx, invite.Invitee)
	if err != nil {
		inviteeName = invite.Invitee
	}
	s.notify(ctx, invite.Invitee, fmt.Sprintf(msgJoinedTeam, ownerName))
	s.notifyInviter(ctx, invite.Inviter, fmt.Sprintf(msgPlayerJoinedTeam, inviteeName))

	log.Printf("INFO: %s joined island %s (old islands pending cleanup: %d).", invite.Invitee, island.ID, len(oldIslandIDs))
	return OutcomeCompleted, nil
}

// notify sends a chat directive, logging instead of failing the flow when
// delivery does not work.
func (s *InviteService) notify(ctx context.Context, playerUUID, message string) {
	if err := s.sessions.Notify(ctx, playerUUID, message); err != nil {
		log.Printf("WARN: Failed to notify %s: %v", playerUUID, err)
	}
}

// notifyInviter messages the inviter only when they are currently online.
// The invitee drove the operation and always hears about it; the inviter
// gets told if they are around to see it.
func (s *InviteService) notifyInviter(ctx context.Context, inviterUUID, message string) {
	online, err := s.sessions.IsOnline(ctx, inviterUUID)
	if err != nil {
		log.Printf("WARN: Failed to check online status for %s: %v", inviterUUID, err)
		return
	}
	if online {
		s.notify(ctx, inviterUUID, message)
	}
}
