package app

import "time"

// Default grace windows. The presenter gets a long window so a flaky
// network does not tear down a whole class; learners get a short one so
// the roster stays honest.
const (
	DefaultPresenterGrace = 60 * time.Second
	DefaultLearnerGrace   = 7 * time.Second
)

// Grace arms the one-shot deferred callbacks that delay the destructive
// effects of a disconnect. Timers are never cancelled: each callback
// re-validates current store state at fire time, so a reconnect that
// races the timer simply turns the callback into a stale no-op.
type Grace struct {
	presenterWait time.Duration
	learnerWait   time.Duration

	// after exists so tests can run callbacks synchronously.
	after func(time.Duration, func())
}

func NewGrace(presenter, learner time.Duration) *Grace {
	if presenter <= 0 {
		presenter = DefaultPresenterGrace
	}
	if learner <= 0 {
		learner = DefaultLearnerGrace
	}
	return &Grace{
		presenterWait: presenter,
		learnerWait:   learner,
		after:         func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

func (g *Grace) AfterPresenter(f func()) { g.after(g.presenterWait, f) }
func (g *Grace) AfterLearner(f func())   { g.after(g.learnerWait, f) }
