// island/service/accept_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhavenmc/island-services/island/events"
	"github.com/skyhavenmc/island-services/shared/models"
)

// fakeDirectory is an in-memory IslandDirectory.
type fakeDirectory struct {
	islands map[string]*models.Island
}

func newFakeDirectory(islands ...*models.Island) *fakeDirectory {
	fd := &fakeDirectory{islands: make(map[string]*models.Island)}
	for _, island := range islands {
		fd.islands[island.ID] = island
	}
	return fd
}

func (fd *fakeDirectory) GetIslandByID(_ context.Context, islandID string) (*models.Island, error) {
	island, ok := fd.islands[islandID]
	if !ok || island.Deleted {
		return nil, nil
	}
	return island, nil
}

func (fd *fakeDirectory) GetIslandByOwner(_ context.Context, world, playerUUID string) (*models.Island, error) {
	for _, island := range fd.islands {
		if !island.Deleted && island.World == world && island.Owner == playerUUID {
			return island, nil
		}
	}
	return nil, nil
}

func (fd *fakeDirectory) GetIslandByPlayer(_ context.Context, world, playerUUID string) (*models.Island, error) {
	for _, island := range fd.islands {
		if !island.Deleted && island.World == world && island.Rank(playerUUID) >= models.MemberRank {
			return island, nil
		}
	}
	return nil, nil
}

func (fd *fakeDirectory) GetIslands(_ context.Context, world, playerUUID string) ([]*models.Island, error) {
	var out []*models.Island
	for _, island := range fd.islands {
		if island.Deleted || island.World != world {
			continue
		}
		if _, ok := island.Members[playerUUID]; ok {
			out = append(out, island)
		}
	}
	return out, nil
}

func (fd *fakeDirectory) InTeam(ctx context.Context, world, playerUUID string) (bool, error) {
	island, err := fd.GetIslandByPlayer(ctx, world, playerUUID)
	if err != nil || island == nil {
		return false, err
	}
	return island.InTeam(playerUUID), nil
}

func (fd *fakeDirectory) SetRank(_ context.Context, islandID, playerUUID string, rank int) error {
	fd.islands[islandID].SetRank(playerUUID, rank)
	return nil
}

func (fd *fakeDirectory) RemovePlayer(_ context.Context, world, playerUUID string) error {
	for _, island := range fd.islands {
		if island.World == world && island.Owner != playerUUID {
			island.RemoveMember(playerUUID)
		}
	}
	return nil
}

func (fd *fakeDirectory) DeleteIsland(_ context.Context, islandID string) error {
	fd.islands[islandID].Deleted = true
	return nil
}

// fakeSessions records notifications and session resets. Every player is
// online unless marked offline.
type fakeSessions struct {
	messages map[string][]string
	resets   []string
	offline  map[string]bool
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		messages: make(map[string][]string),
		offline:  make(map[string]bool),
	}
}

func (fs *fakeSessions) IsOnline(_ context.Context, playerUUID string) (bool, error) {
	return !fs.offline[playerUUID], nil
}

func (fs *fakeSessions) Notify(_ context.Context, playerUUID, message string) error {
	fs.messages[playerUUID] = append(fs.messages[playerUUID], message)
	return nil
}

func (fs *fakeSessions) ResetSession(_ context.Context, playerUUID string) error {
	fs.resets = append(fs.resets, playerUUID)
	return nil
}

// fakeScheduler records scheduled relocation tasks.
type fakeScheduler struct {
	tasks []models.RelocationTask
}

func (fs *fakeScheduler) Schedule(_ context.Context, task models.RelocationTask) error {
	fs.tasks = append(fs.tasks, task)
	return nil
}

// fakeNames resolves every UUID to itself prefixed with "name:".
type fakeNames struct{}

func (fakeNames) Name(_ context.Context, playerUUID string) (string, error) {
	return "name:" + playerUUID, nil
}

type inviteFixture struct {
	invites   *InviteRegistry
	confirms  *ConfirmationTracker
	directory *fakeDirectory
	sessions  *fakeSessions
	scheduler *fakeScheduler
	bus       *events.Bus
	service   *InviteService
}

func setupInviteService(t *testing.T, islands ...*models.Island) *inviteFixture {
	t.Helper()
	fx := &inviteFixture{
		invites:   NewInviteRegistry(),
		confirms:  NewConfirmationTracker(time.Second, time.Minute),
		directory: newFakeDirectory(islands...),
		sessions:  newFakeSessions(),
		scheduler: &fakeScheduler{},
		bus:       events.NewBus(),
	}
	fx.service = NewInviteService(
		fx.invites,
		fx.confirms,
		NewCapacityGate(4, 2, 2),
		fx.directory,
		fx.sessions,
		fx.scheduler,
		fakeNames{},
		fx.bus,
		models.CoopRank,
	)
	return fx
}

func ownedIsland(id, owner string) *models.Island {
	return &models.Island{
		ID:      id,
		World:   "skyworld",
		Owner:   owner,
		Members: map[string]int{owner: models.OwnerRank},
	}
}

func TestAcceptNoInviteFound(t *testing.T) {
	fx := setupInviteService(t)

	outcome, err := fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoInviteFound, outcome)
}

func TestIssueAndAcceptTeamInvite(t *testing.T) {
	target := ownedIsland("target", "owner")
	old := ownedIsland("old", "invitee")
	fx := setupInviteService(t, target, old)

	outcome, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)
	require.True(t, fx.invites.IsInvited("invitee"))

	// First step asks for confirmation without mutating anything.
	outcome, err = fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAwaitingConfirmation, outcome)
	assert.True(t, fx.invites.IsInvited("invitee"))
	assert.Equal(t, models.VisitorRank, target.Rank("invitee"))

	// Confirmation commits the membership.
	outcome, err = fx.service.Confirm(context.Background(), "invitee")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)

	assert.False(t, fx.invites.IsInvited("invitee"))
	assert.Equal(t, 2, target.MemberCount(models.MemberRank, true))
	assert.Equal(t, models.MemberRank, target.Rank("invitee"))
	assert.Equal(t, []string{"invitee"}, fx.sessions.resets)

	// Old island deletion is deferred to the relocation worker.
	assert.False(t, old.Deleted)
	require.Len(t, fx.scheduler.tasks, 1)
	assert.Equal(t, "invitee", fx.scheduler.tasks[0].Player)
	assert.Equal(t, "target", fx.scheduler.tasks[0].IslandID)
	assert.Equal(t, []string{"old"}, fx.scheduler.tasks[0].OldIslandIDs)
}

func TestConfirmWithoutOpenWindow(t *testing.T) {
	target := ownedIsland("target", "owner")
	fx := setupInviteService(t, target)

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)

	// A lapsed or never-opened confirmation abandons the attempt without
	// touching the invite or the island.
	outcome, err := fx.service.Confirm(context.Background(), "invitee")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, outcome)
	assert.True(t, fx.invites.IsInvited("invitee"))
	assert.Equal(t, models.VisitorRank, target.Rank("invitee"))
}

func TestConfirmAfterWindowLapsed(t *testing.T) {
	target := ownedIsland("target", "owner")
	fx := setupInviteService(t, target)
	fx.confirms.timeout = 10 * time.Millisecond

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)

	outcome, err := fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)
	require.Equal(t, OutcomeAwaitingConfirmation, outcome)

	time.Sleep(20 * time.Millisecond)

	outcome, err = fx.service.Confirm(context.Background(), "invitee")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, outcome)
	assert.Equal(t, models.VisitorRank, target.Rank("invitee"))
}

func TestAcceptTeamIslandFullConsumesInvite(t *testing.T) {
	target := ownedIsland("target", "owner")
	target.Members["m1"] = models.MemberRank
	target.Members["m2"] = models.MemberRank
	target.Members["m3"] = models.MemberRank
	fx := setupInviteService(t, target)

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)

	_, err = fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)
	outcome, err := fx.service.Confirm(context.Background(), "invitee")
	require.NoError(t, err)

	assert.Equal(t, OutcomeIslandFull, outcome)
	// A capacity failure still consumes the invite and mutates nothing.
	assert.False(t, fx.invites.IsInvited("invitee"))
	assert.Equal(t, models.VisitorRank, target.Rank("invitee"))
	assert.Empty(t, fx.scheduler.tasks)
}

func TestAcceptTrustTierFullConsumesInvite(t *testing.T) {
	target := ownedIsland("target", "owner")
	target.Members["t1"] = models.TrustedRank
	target.Members["t2"] = models.TrustedRank
	target.Members["t3"] = models.TrustedRank
	fx := setupInviteService(t, target)

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeTrust)
	require.NoError(t, err)

	_, err = fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)
	outcome, err := fx.service.Confirm(context.Background(), "invitee")
	require.NoError(t, err)

	assert.Equal(t, OutcomeTierFull, outcome)
	assert.False(t, fx.invites.IsInvited("invitee"))
	assert.Equal(t, models.VisitorRank, target.Rank("invitee"))
}

func TestAcceptTeamDemotedInviter(t *testing.T) {
	target := ownedIsland("target", "owner")
	target.Members["inviter"] = models.CoopRank
	fx := setupInviteService(t, target)

	_, err := fx.service.Issue(context.Background(), "inviter", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)

	// The inviter is demoted below the invite threshold after issuing.
	target.SetRank("inviter", models.MemberRank)

	outcome, err := fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)

	assert.Equal(t, OutcomeInvalidInvite, outcome)
	assert.False(t, fx.invites.IsInvited("invitee"))
	assert.Equal(t, models.VisitorRank, target.Rank("invitee"))
}

func TestAcceptTeamIslandGone(t *testing.T) {
	target := ownedIsland("target", "owner")
	fx := setupInviteService(t, target)

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)

	target.Deleted = true

	outcome, err := fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)

	assert.Equal(t, OutcomeInvalidInvite, outcome)
	assert.False(t, fx.invites.IsInvited("invitee"))
}

func TestAcceptTeamAlreadyInTeamKeepsInvite(t *testing.T) {
	target := ownedIsland("target", "owner")
	other := ownedIsland("other", "otherowner")
	fx := setupInviteService(t, target, other)

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)

	// The invitee joins another team before accepting.
	other.SetRank("invitee", models.MemberRank)

	outcome, err := fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)

	assert.Equal(t, OutcomeAlreadyInTeam, outcome)
	// The invite stays so the player can accept after leaving.
	assert.True(t, fx.invites.IsInvited("invitee"))
}

func TestAcceptTeamVetoedKeepsInviteAndState(t *testing.T) {
	target := ownedIsland("target", "owner")
	fx := setupInviteService(t, target)

	var seen []events.Event
	fx.bus.SubscribeVeto(func(e events.Event) bool {
		seen = append(seen, e)
		return true
	})

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)

	outcome, err := fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)

	assert.Equal(t, OutcomeCancelled, outcome)
	assert.True(t, fx.invites.IsInvited("invitee"))
	assert.Equal(t, models.VisitorRank, target.Rank("invitee"))
	assert.Empty(t, fx.scheduler.tasks)

	require.Len(t, seen, 1)
	assert.Equal(t, events.TypeTeamPreJoin, seen[0].Type)
	assert.Equal(t, "invitee", seen[0].Player)
}

func TestAcceptCoopRequiresConfirmation(t *testing.T) {
	target := ownedIsland("target", "owner")
	fx := setupInviteService(t, target)

	var published []events.Event
	fx.bus.Subscribe(func(e events.Event) {
		published = append(published, e)
	})

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeCoop)
	require.NoError(t, err)
	inviteeMessages := len(fx.sessions.messages["invitee"])

	// The first step only opens the window. Coop grants are silent: no
	// confirmation prompt on top of the invite message.
	outcome, err := fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAwaitingConfirmation, outcome)
	assert.Equal(t, models.VisitorRank, target.Rank("invitee"))
	assert.True(t, fx.invites.IsInvited("invitee"))
	assert.Len(t, fx.sessions.messages["invitee"], inviteeMessages)

	outcome, err = fx.service.Confirm(context.Background(), "invitee")
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, outcome)
	assert.Equal(t, models.CoopRank, target.Rank("invitee"))
	assert.False(t, fx.invites.IsInvited("invitee"))
	// Coop grants do not trigger relocation or session resets.
	assert.Empty(t, fx.scheduler.tasks)
	assert.Empty(t, fx.sessions.resets)

	require.Len(t, published, 1)
	assert.Equal(t, events.TypeRankChanged, published[0].Type)
	assert.Equal(t, models.VisitorRank, published[0].OldRank)
	assert.Equal(t, models.CoopRank, published[0].NewRank)
}

func TestAcceptTeamConfirmPromptSent(t *testing.T) {
	target := ownedIsland("target", "owner")
	fx := setupInviteService(t, target)

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)
	before := len(fx.sessions.messages["invitee"])

	outcome, err := fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAwaitingConfirmation, outcome)
	// Team joins are destructive, so the invitee gets an explicit prompt.
	assert.Len(t, fx.sessions.messages["invitee"], before+1)
}

func TestAcceptTeamDemotedInviterWithInviteeInTeam(t *testing.T) {
	target := ownedIsland("target", "owner")
	target.Members["inviter"] = models.CoopRank
	other := ownedIsland("other", "otherowner")
	fx := setupInviteService(t, target, other)

	_, err := fx.service.Issue(context.Background(), "inviter", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)

	// Both invalidations hold at once: the inviter was demoted and the
	// invitee joined another team. The stale inviter wins and the invite
	// is removed rather than kept for a later retry.
	target.SetRank("inviter", models.MemberRank)
	other.SetRank("invitee", models.MemberRank)

	outcome, err := fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)

	assert.Equal(t, OutcomeInvalidInvite, outcome)
	assert.False(t, fx.invites.IsInvited("invitee"))
}

func TestOfflineInviterNotNotifiedOnApply(t *testing.T) {
	target := ownedIsland("target", "owner")
	fx := setupInviteService(t, target)

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeCoop)
	require.NoError(t, err)
	sentWhileOnline := len(fx.sessions.messages["owner"])

	fx.sessions.offline["owner"] = true

	_, err = fx.service.Accept(context.Background(), "invitee")
	require.NoError(t, err)
	outcome, err := fx.service.Confirm(context.Background(), "invitee")
	require.NoError(t, err)

	require.Equal(t, OutcomeCompleted, outcome)
	assert.Equal(t, models.CoopRank, target.Rank("invitee"))
	// The invitee hears about the grant; the offline inviter does not.
	assert.NotEmpty(t, fx.sessions.messages["invitee"])
	assert.Len(t, fx.sessions.messages["owner"], sentWhileOnline)
}

func TestIssueSelfInvite(t *testing.T) {
	fx := setupInviteService(t, ownedIsland("target", "owner"))

	_, err := fx.service.Issue(context.Background(), "owner", "owner", "skyworld", models.InviteTypeTeam)
	assert.ErrorIs(t, err, ErrSelfInvite)
}

func TestIssueWithoutIsland(t *testing.T) {
	fx := setupInviteService(t)

	_, err := fx.service.Issue(context.Background(), "nobody", "invitee", "skyworld", models.InviteTypeTeam)
	assert.ErrorIs(t, err, ErrNoIsland)
}

func TestIssueInvalidType(t *testing.T) {
	fx := setupInviteService(t, ownedIsland("target", "owner"))

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteType("FRIEND"))
	assert.ErrorIs(t, err, ErrInvalidInviteType)
}

func TestIssueOverwritesPriorInvite(t *testing.T) {
	first := ownedIsland("first", "a")
	second := ownedIsland("second", "b")
	fx := setupInviteService(t, first, second)

	_, err := fx.service.Issue(context.Background(), "a", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)
	_, err = fx.service.Issue(context.Background(), "b", "invitee", "skyworld", models.InviteTypeTrust)
	require.NoError(t, err)

	invite, ok := fx.invites.Get("invitee")
	require.True(t, ok)
	assert.Equal(t, "b", invite.Inviter)
	assert.Equal(t, models.InviteTypeTrust, invite.Type)
	assert.Equal(t, "second", invite.IslandID)
}

func TestRejectNotifiesInviter(t *testing.T) {
	fx := setupInviteService(t, ownedIsland("target", "owner"))

	_, err := fx.service.Issue(context.Background(), "owner", "invitee", "skyworld", models.InviteTypeTeam)
	require.NoError(t, err)

	outcome, err := fx.service.Reject(context.Background(), "invitee")
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, outcome)
	assert.False(t, fx.invites.IsInvited("invitee"))
	require.NotEmpty(t, fx.sessions.messages["owner"])
}

func TestRejectWithoutInvite(t *testing.T) {
	fx := setupInviteService(t)

	outcome, err := fx.service.Reject(context.Background(), "invitee")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoInviteFound, outcome)
}
