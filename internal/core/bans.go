package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/domain"
)

// DefaultBanMinutes is applied when a kick duration is missing or not a
// positive integer.
const DefaultBanMinutes = 1

// BanRegistry tracks permanent bans (per room, by device) and temporary
// bans (per room+device, absolute expiry). Expired temporary entries are
// inert and linger until the next lookup; nothing sweeps them.
type BanRegistry struct {
	mu   sync.Mutex
	perm map[domain.RoomID]map[string]struct{}
	temp map[banKey]time.Time
}

type banKey struct {
	room   domain.RoomID
	device string
}

func NewBanRegistry() *BanRegistry {
	return &BanRegistry{
		perm: make(map[domain.RoomID]map[string]struct{}),
		temp: make(map[banKey]time.Time),
	}
}

// BanPermanently adds the device to the room's permanent set. Idempotent.
func (b *BanRegistry) BanPermanently(room domain.RoomID, device string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.perm[room]
	if !ok {
		set = make(map[string]struct{})
		b.perm[room] = set
	}
	set[device] = struct{}{}
	log.Info().Str("module", "core.bans").Str("room", string(room)).Msg("permanent ban added")
}

func (b *BanRegistry) IsPermanentlyBanned(room domain.RoomID, device string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.perm[room][device]
	return ok
}

// BanTemporarily sets (or overwrites) the expiry to now + minutes and
// returns the effective duration.
func (b *BanRegistry) BanTemporarily(room domain.RoomID, device string, minutes int, now time.Time) int {
	if minutes <= 0 {
		minutes = DefaultBanMinutes
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.temp[banKey{room, device}] = now.Add(time.Duration(minutes) * time.Minute)
	log.Info().Str("module", "core.bans").Str("room", string(room)).Int("minutes", minutes).Msg("temporary ban set")
	return minutes
}

// TemporaryRemaining returns the ceiling-rounded minutes left on an
// active temporary ban, or false if there is none.
func (b *BanRegistry) TemporaryRemaining(room domain.RoomID, device string, now time.Time) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expiry, ok := b.temp[banKey{room, device}]
	if !ok || !now.Before(expiry) {
		return 0, false
	}
	rem := expiry.Sub(now)
	minutes := int((rem + time.Minute - 1) / time.Minute)
	return minutes, true
}

// ClearRoom drops the room's permanent set. Temporary bans are left to
// lazy expiry.
func (b *BanRegistry) ClearRoom(room domain.RoomID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.perm, room)
}
