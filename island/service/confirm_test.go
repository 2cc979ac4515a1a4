// island/service/confirm_test.go
package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfirmationTrackerConsumeWithinWindow(t *testing.T) {
	tracker := NewConfirmationTracker(time.Second, time.Minute)

	tracker.Begin("player")
	assert.True(t, tracker.Consume("player"))

	// Consuming removed the entry.
	assert.False(t, tracker.Consume("player"))
}

func TestConfirmationTrackerExpired(t *testing.T) {
	tracker := NewConfirmationTracker(10*time.Millisecond, time.Minute)

	tracker.Begin("player")
	time.Sleep(20 * time.Millisecond)

	assert.False(t, tracker.Consume("player"))
}

func TestConfirmationTrackerCancel(t *testing.T) {
	tracker := NewConfirmationTracker(time.Second, time.Minute)

	tracker.Begin("player")
	tracker.Cancel("player")

	assert.False(t, tracker.Consume("player"))
}

func TestConfirmationTrackerBeginResetsWindow(t *testing.T) {
	tracker := NewConfirmationTracker(50*time.Millisecond, time.Minute)

	tracker.Begin("player")
	time.Sleep(30 * time.Millisecond)
	tracker.Begin("player")
	time.Sleep(30 * time.Millisecond)

	// The second Begin restarted the window, so the entry is still live.
	assert.True(t, tracker.Consume("player"))
}

func TestConfirmationTrackerSweep(t *testing.T) {
	tracker := NewConfirmationTracker(10*time.Millisecond, time.Minute)

	tracker.Begin("expired")
	time.Sleep(20 * time.Millisecond)
	tracker.Begin("live")

	tracker.sweep()

	tracker.mu.Lock()
	_, expiredPresent := tracker.pending["expired"]
	_, livePresent := tracker.pending["live"]
	tracker.mu.Unlock()

	assert.False(t, expiredPresent)
	assert.True(t, livePresent)
}

func TestConfirmationTrackerStartStop(t *testing.T) {
	tracker := NewConfirmationTracker(time.Second, 10*time.Millisecond)
	tracker.Start()
	tracker.Stop()
}
