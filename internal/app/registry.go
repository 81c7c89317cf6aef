package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/core"
	"github.com/tobeoren/classroom/internal/domain"
)

type sessionEntry struct {
	Room   domain.RoomID
	Signal core.SignalConnection
	Cancel context.CancelFunc
}

// Registry is the reverse index from connection id to room id and
// transport endpoint. It spares the disconnect path a scan over every
// room and is the broadcast address book.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.ConnID]*sessionEntry)}
}

func (r *Registry) Bind(conn domain.ConnID, sig core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[conn] = &sessionEntry{Signal: sig, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("bound connection")
}

func (r *Registry) Unbind(conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, conn)
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("unbound connection")
}

func (r *Registry) Get(conn domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[conn]; ok {
		return e.Signal, true
	}
	return nil, false
}

// SetRoom records the single room a connection belongs to.
func (r *Registry) SetRoom(conn domain.ConnID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[conn]
	if !ok {
		return false
	}
	e.Room = room
	return true
}

// ClearRoom drops a connection's room association without unbinding the
// connection itself (kicks, room destruction).
func (r *Registry) ClearRoom(conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[conn]; ok {
		e.Room = ""
	}
}

func (r *Registry) RoomOf(conn domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[conn]
	if !ok || e.Room == "" {
		return "", false
	}
	return e.Room, true
}

type regSnap struct {
	Conn   domain.ConnID
	Signal core.SignalConnection
}

// MembersOfRoom snapshots the connections currently associated with a room.
func (r *Registry) MembersOfRoom(room domain.RoomID) []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0, len(r.sessions))
	for conn, e := range r.sessions {
		if e.Room == room {
			out = append(out, regSnap{Conn: conn, Signal: e.Signal})
		}
	}
	return out
}

// All snapshots every bound connection (lobby-wide broadcasts).
func (r *Registry) All() []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0, len(r.sessions))
	for conn, e := range r.sessions {
		out = append(out, regSnap{Conn: conn, Signal: e.Signal})
	}
	return out
}

// DropRoom clears the room association of every connection in the room.
func (r *Registry) DropRoom(room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.sessions {
		if e.Room == room {
			e.Room = ""
		}
	}
}

// CancelConn cancels the pump context of a connection, if any.
func (r *Registry) CancelConn(conn domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.sessions[conn]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	return true
}
