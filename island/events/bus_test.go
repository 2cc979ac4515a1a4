// island/events/bus_test.go
package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusFireCancellableNoHooks(t *testing.T) {
	bus := NewBus()
	assert.False(t, bus.FireCancellable(Event{Type: TypeTeamPreJoin}))
}

func TestBusFireCancellableVeto(t *testing.T) {
	bus := NewBus()
	bus.SubscribeVeto(func(Event) bool { return false })
	bus.SubscribeVeto(func(Event) bool { return true })

	assert.True(t, bus.FireCancellable(Event{Type: TypeTeamPreJoin}))
}

func TestBusFireCancellableRunsAllHooks(t *testing.T) {
	bus := NewBus()
	var calls int
	bus.SubscribeVeto(func(Event) bool { calls++; return true })
	bus.SubscribeVeto(func(Event) bool { calls++; return false })

	// Every hook sees the event even after one of them vetoes.
	assert.True(t, bus.FireCancellable(Event{Type: TypeTeamPreJoin}))
	assert.Equal(t, 2, calls)
}

func TestBusPublish(t *testing.T) {
	bus := NewBus()
	var received []Event
	bus.Subscribe(func(e Event) { received = append(received, e) })
	bus.Subscribe(func(e Event) { received = append(received, e) })

	bus.Publish(Event{Type: TypeTeamJoined, Player: "player", IslandID: "island-1"})

	assert.Len(t, received, 2)
	assert.Equal(t, TypeTeamJoined, received[0].Type)
	assert.Equal(t, "player", received[0].Player)
}

func TestBusPublishNoHandlers(t *testing.T) {
	bus := NewBus()
	bus.Publish(Event{Type: TypeRankChanged})
}
