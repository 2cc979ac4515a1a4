// island/service/registry.go
package service

import (
	"sync"

	"github.com/skyhavenmc/island-services/shared/models"
)

// InviteRegistry holds pending invitations keyed by invitee, at most one per
// invitee. It is shared mutable state between player sessions, so every
// access goes through the mutex. Invites have no expiry: they live until
// accepted, rejected, or replaced.
type InviteRegistry struct {
	mu      sync.RWMutex
	invites map[string]models.Invite
}

// NewInviteRegistry creates an empty registry. Constructed once in main and
// injected wherever invites are read or written.
func NewInviteRegistry() *InviteRegistry {
	return &InviteRegistry{
		invites: make(map[string]models.Invite),
	}
}

// Put stores an invite, silently replacing any prior invite for the same
// invitee.
func (r *InviteRegistry) Put(invite models.Invite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invites[invite.Invitee] = invite
}

// Get returns the pending invite for an invitee, if any.
func (r *InviteRegistry) Get(invitee string) (models.Invite, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	invite, ok := r.invites[invitee]
	return invite, ok
}

// Remove drops the pending invite for an invitee. Removing an absent key is
// a no-op.
func (r *InviteRegistry) Remove(invitee string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invites, invitee)
}

// IsInvited reports whether the invitee currently has a pending invite.
func (r *InviteRegistry) IsInvited(invitee string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.invites[invitee]
	return ok
}

// Inviter returns the UUID of the player who invited the invitee, or the
// empty string when no invite is pending.
func (r *InviteRegistry) Inviter(invitee string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.invites[invitee].Inviter
}
