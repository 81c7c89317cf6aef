package app

import (
	"sync"
	"time"

	"github.com/tobeoren/classroom/internal/domain"
)

// ChatPolicy is the anti-spam knob for send_message.
type ChatPolicy interface {
	Allow(conn domain.ConnID, now time.Time) bool
	Forget(conn domain.ConnID)
}

// MinInterval rejects a message arriving sooner than interval after the
// previous one from the same connection.
type MinInterval struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[domain.ConnID]time.Time
}

func NewMinInterval(interval time.Duration) *MinInterval {
	return &MinInterval{
		interval: interval,
		last:     make(map[domain.ConnID]time.Time),
	}
}

func (p *MinInterval) Allow(conn domain.ConnID, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.last[conn]; ok && now.Sub(prev) < p.interval {
		return false
	}
	p.last[conn] = now
	return true
}

func (p *MinInterval) Forget(conn domain.ConnID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.last, conn)
}

// AllowAll disables chat throttling.
type AllowAll struct{}

func (AllowAll) Allow(domain.ConnID, time.Time) bool { return true }
func (AllowAll) Forget(domain.ConnID)                {}
