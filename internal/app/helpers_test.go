package app_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tobeoren/classroom/internal/app"
	"github.com/tobeoren/classroom/internal/core"
	"github.com/tobeoren/classroom/internal/domain"
)

// fakeConn records every frame queued for a connection so tests can
// assert on the outbound event stream.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeConn) TrySend(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(b))
	copy(cp, b)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// events decodes every recorded frame.
func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, b := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		out = append(out, m)
	}
	return out
}

// last returns the most recent event of the given type.
func (f *fakeConn) last(t *testing.T, typ string) (map[string]any, bool) {
	t.Helper()
	evts := f.events(t)
	for i := len(evts) - 1; i >= 0; i-- {
		if evts[i]["type"] == typ {
			return evts[i], true
		}
	}
	return nil, false
}

// count tallies events of the given type.
func (f *fakeConn) count(t *testing.T, typ string) int {
	t.Helper()
	n := 0
	for _, e := range f.events(t) {
		if e["type"] == typ {
			n++
		}
	}
	return n
}

// countChat tallies chat_message events with the given msgCode.
func (f *fakeConn) countChat(t *testing.T, msgCode string) int {
	t.Helper()
	n := 0
	for _, e := range f.events(t) {
		if e["type"] == app.EvtChatMessage && e["msgCode"] == msgCode {
			n++
		}
	}
	return n
}

// fixture wires an orchestrator with a controllable clock. The default
// grace windows are long enough to never fire within a test; grace
// tests pass their own.
type fixture struct {
	orch *app.Orchestrator
	now  time.Time
}

func newFixture(presenterGrace, learnerGrace time.Duration, chat app.ChatPolicy) *fixture {
	f := &fixture{now: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)}
	f.orch = app.NewOrchestrator(
		app.NewRegistry(),
		core.NewRoomStore(),
		core.NewBanRegistry(),
		app.NewGrace(presenterGrace, learnerGrace),
		chat,
	)
	f.orch.Now = func() time.Time { return f.now }
	return f
}

func defaultFixture() *fixture {
	return newFixture(time.Hour, time.Hour, app.AllowAll{})
}

func (f *fixture) connect(id string) *fakeConn {
	c := &fakeConn{}
	f.orch.Registry.Bind(domain.ConnID(id), c, nil)
	return c
}

// classroom sets up a room with a presenter and one learner.
func (f *fixture) classroom(t *testing.T) (sensei, student *fakeConn) {
	t.Helper()
	sensei = f.connect("conn-sensei")
	student = f.connect("conn-student")
	f.orch.CreateRoom("conn-sensei", "Sensei", "room1", "", "dev-sensei")
	f.orch.JoinRoom("conn-student", "Aiko", "room1", "", "dev-aiko")
	_, ok := sensei.last(t, app.EvtRoomJoined)
	require.True(t, ok, "room creation failed")
	_, ok = student.last(t, app.EvtRoomJoined)
	require.True(t, ok, "student join failed")
	return sensei, student
}
