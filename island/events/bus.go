// island/events/bus.go
package events

import "sync"

// Type identifies a domain event.
type Type string

const (
	// TypeTeamPreJoin is fired before a team join is applied. It is
	// cancellable: any veto hook returning true aborts the join with no
	// state change.
	TypeTeamPreJoin Type = "team_pre_join"
	// TypeTeamJoined is fired after a player joined an island team.
	TypeTeamJoined Type = "team_joined"
	// TypeRankChanged is fired after a player's rank on an island changed.
	TypeRankChanged Type = "rank_changed"
)

// Event carries the island and player a domain event concerns. OldRank and
// NewRank are only meaningful for TypeRankChanged.
type Event struct {
	Type     Type
	IslandID string
	World    string
	Player   string
	OldRank  int
	NewRank  int
}

// VetoHook inspects a cancellable event and returns true to veto it.
type VetoHook func(Event) bool

// Handler consumes a non-cancellable event.
type Handler func(Event)

// Bus is a synchronous in-process event bus. Veto hooks run in-line during
// validation; handlers run in-line after a transition commits. Subscription
// happens at startup, firing happens per player action, so a RWMutex is
// enough.
type Bus struct {
	mu        sync.RWMutex
	vetoHooks []VetoHook
	handlers  []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// SubscribeVeto registers a hook for cancellable events.
func (b *Bus) SubscribeVeto(h VetoHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vetoHooks = append(b.vetoHooks, h)
}

// Subscribe registers a handler for non-cancellable events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// FireCancellable invokes every veto hook in registration order and reports
// whether any of them vetoed the event.
func (b *Bus) FireCancellable(e Event) bool {
	b.mu.RLock()
	hooks := b.vetoHooks
	b.mu.RUnlock()

	cancelled := false
	for _, h := range hooks {
		if h(e) {
			cancelled = true
		}
	}
	return cancelled
}

// Publish delivers a non-cancellable event to every handler synchronously.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
