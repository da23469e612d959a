package store

import (
	"context"
	"sync"
	"time"
)

// PresenceTracker maps usernames to their last-activity time and derives the
// online-user set. A user is online iff now-lastActive <= timeout.
type PresenceTracker interface {
	// Touch records activity for username. Empty usernames are ignored.
	Touch(ctx context.Context, username string) error
	// Online evicts expired entries and returns the remaining usernames.
	// Order is not meaningful.
	Online(ctx context.Context) ([]string, error)
}

// MemoryPresence tracks presence in process memory. State is lost on
// restart, which matches the historical behavior of the chat plugin.
type MemoryPresence struct {
	mu      sync.Mutex
	timeout time.Duration
	seen    map[string]time.Time
	now     func() time.Time
}

func NewMemoryPresence(timeout time.Duration) *MemoryPresence {
	return &MemoryPresence{
		timeout: timeout,
		seen:    make(map[string]time.Time),
		now:     time.Now,
	}
}

func (p *MemoryPresence) Touch(_ context.Context, username string) error {
	if username == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[username] = p.now()
	return nil
}

func (p *MemoryPresence) Online(_ context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	users := make([]string, 0, len(p.seen))
	for username, lastActive := range p.seen {
		if now.Sub(lastActive) > p.timeout {
			// Expired entries are removed, not flagged.
			delete(p.seen, username)
			continue
		}
		users = append(users, username)
	}
	return users, nil
}
