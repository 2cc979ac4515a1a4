// island/service/confirm.go
package service

import (
	"log"
	"sync"
	"time"
)

// ConfirmationTracker remembers players who have started accepting an invite
// and must confirm within a timeout. The second request either consumes the
// pending confirmation (Consume) or it has already lapsed and the player is
// told to start over.
type ConfirmationTracker struct {
	mu      sync.Mutex
	pending map[string]time.Time
	timeout time.Duration

	sweepInterval time.Duration
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewConfirmationTracker creates a tracker whose pending confirmations lapse
// after timeout. The background sweeper runs every sweepInterval once Start
// is called.
func NewConfirmationTracker(timeout, sweepInterval time.Duration) *ConfirmationTracker {
	return &ConfirmationTracker{
		pending:       make(map[string]time.Time),
		timeout:       timeout,
		sweepInterval: sweepInterval,
		stopChan:      make(chan struct{}),
	}
}

// Begin records that the player must confirm before the timeout lapses.
// Calling Begin again resets the window.
func (t *ConfirmationTracker) Begin(player string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[player] = time.Now().Add(t.timeout)
}

// Consume removes the player's pending confirmation and reports whether it
// was still live. An expired entry is removed and reported as absent.
func (t *ConfirmationTracker) Consume(player string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	deadline, ok := t.pending[player]
	if !ok {
		return false
	}
	delete(t.pending, player)
	return time.Now().Before(deadline)
}

// Cancel drops a pending confirmation without consuming it, used when the
// player rejects the invite mid-confirmation.
func (t *ConfirmationTracker) Cancel(player string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, player)
}

// Start launches the background sweep loop that evicts lapsed entries so the
// map does not grow with players who never confirm.
func (t *ConfirmationTracker) Start() {
	t.wg.Add(1)
	go t.sweepLoop()
	log.Printf("INFO: Confirmation tracker started (timeout: %s, sweep interval: %s).", t.timeout, t.sweepInterval)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (t *ConfirmationTracker) Stop() {
	close(t.stopChan)
	t.wg.Wait()
	log.Println("INFO: Confirmation tracker stopped.")
}

func (t *ConfirmationTracker) sweepLoop() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.sweep()
		case <-t.stopChan:
			return
		}
	}
}

func (t *ConfirmationTracker) sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	for player, deadline := range t.pending {
		if now.After(deadline) {
			delete(t.pending, player)
		}
	}
}
