// island/service/registry_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhavenmc/island-services/shared/models"
)

func TestInviteRegistryPutAndGet(t *testing.T) {
	registry := NewInviteRegistry()

	invite := models.NewInvite("inviter", "invitee", models.InviteTypeTeam, "skyworld", "island-1")
	registry.Put(invite)

	got, ok := registry.Get("invitee")
	require.True(t, ok)
	assert.Equal(t, "inviter", got.Inviter)
	assert.Equal(t, "island-1", got.IslandID)
	assert.True(t, registry.IsInvited("invitee"))
	assert.Equal(t, "inviter", registry.Inviter("invitee"))
}

func TestInviteRegistryOverwrite(t *testing.T) {
	registry := NewInviteRegistry()

	registry.Put(models.NewInvite("first", "invitee", models.InviteTypeTeam, "skyworld", "island-1"))
	registry.Put(models.NewInvite("second", "invitee", models.InviteTypeCoop, "skyworld", "island-2"))

	// The later invite silently replaces the earlier one.
	got, ok := registry.Get("invitee")
	require.True(t, ok)
	assert.Equal(t, "second", got.Inviter)
	assert.Equal(t, models.InviteTypeCoop, got.Type)
	assert.Equal(t, "island-2", got.IslandID)
}

func TestInviteRegistryRemove(t *testing.T) {
	registry := NewInviteRegistry()

	registry.Put(models.NewInvite("inviter", "invitee", models.InviteTypeTrust, "skyworld", "island-1"))
	registry.Remove("invitee")

	_, ok := registry.Get("invitee")
	assert.False(t, ok)
	assert.False(t, registry.IsInvited("invitee"))
	assert.Empty(t, registry.Inviter("invitee"))

	// Removing again is a no-op.
	registry.Remove("invitee")
	assert.False(t, registry.IsInvited("invitee"))
}

func TestInviteRegistryIndependentInvitees(t *testing.T) {
	registry := NewInviteRegistry()

	registry.Put(models.NewInvite("inviter", "a", models.InviteTypeTeam, "skyworld", "island-1"))
	registry.Put(models.NewInvite("inviter", "b", models.InviteTypeTeam, "skyworld", "island-1"))

	registry.Remove("a")
	assert.False(t, registry.IsInvited("a"))
	assert.True(t, registry.IsInvited("b"))
}
