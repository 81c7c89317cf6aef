package core

import "github.com/tobeoren/classroom/internal/domain"

// bindDecision classifies what a (name, device) pair means against the
// current roster. Pure over a member snapshot so the grace timers and
// join path share one definition of "same person came back".
type bindDecision int

const (
	// bindFresh: the name is unused, a new seat is created.
	bindFresh bindDecision = iota
	// bindReentry: same name, same device. The existing seat is kept and
	// only its connection id is updated in place.
	bindReentry
	// bindCollision: same name, different device. Rejected; nothing mutates.
	bindCollision
)

func resolveIdentity(existing *domain.Member, device string) bindDecision {
	if existing == nil {
		return bindFresh
	}
	if existing.Device == device {
		return bindReentry
	}
	return bindCollision
}

// presenterReclaim reports whether a create_room against an existing room
// is the recorded presenter reconnecting (true) or a hijack attempt with
// a forged name (false). Only meaningful when the claimed name matches
// the room's presenter name.
func presenterReclaim(room *domain.Room, device string) bool {
	return room.PresenterDevice == device
}
