package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/domain"
)

// RoomStore is the single owner of all room, member, content and voice
// state. No other component caches or mutates a copy; everything it
// hands out is a snapshot.
//
// Presenter-only mutations verify the caller's connection id against the
// room's recorded presenter connection and silently report "not applied"
// on mismatch. No error reaches a non-presenter caller, so probing
// cannot reveal which rooms have a presenter.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[domain.RoomID]*domain.Room)}
}

// ContentState is the content snapshot synced to (re)joining clients.
type ContentState struct {
	Content domain.Content
	Hidden  bool
}

// CreateResult reports the outcome of a successful create_room.
type CreateResult struct {
	// Reclaimed is true when the recorded presenter reconnected into an
	// existing room instead of creating a fresh one.
	Reclaimed   bool
	State       ContentState
	MemberCount int
}

// Create makes a new room for an unused id, or resolves a presenter
// reconnect against an existing one.
func (s *RoomStore) Create(id domain.RoomID, name, password, device string, conn domain.ConnID) (CreateResult, *domain.Rejection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.rooms[id]; ok {
		if room.PresenterName != name {
			return CreateResult{}, domain.Reject(domain.CodeRoomIDTaken)
		}
		if !presenterReclaim(room, device) {
			return CreateResult{}, domain.Reject(domain.CodeIdentityHijackAttempt)
		}
		room.PresenterConn = conn
		if m, ok := room.Members[name]; ok {
			m.Conn = conn
		}
		log.Info().Str("module", "core.store").Str("room", string(id)).Msg("presenter reclaimed room")
		return CreateResult{
			Reclaimed:   true,
			State:       ContentState{Content: room.Content, Hidden: room.AnswerHidden},
			MemberCount: len(room.Members),
		}, nil
	}

	room := &domain.Room{
		ID:              id,
		PresenterConn:   conn,
		PresenterName:   name,
		PresenterDevice: device,
		Password:        password,
		Public:          password == "",
		Content:         domain.DefaultContent(),
		AnswerHidden:    true,
		Members:         make(map[string]*domain.Member),
	}
	room.Members[name] = domain.NewMember(conn, name, device, domain.RoleSensei)
	s.rooms[id] = room
	log.Info().Str("module", "core.store").Str("room", string(id)).Str("presenter", name).Msg("room created")
	return CreateResult{
		State:       ContentState{Content: room.Content, Hidden: room.AnswerHidden},
		MemberCount: 1,
	}, nil
}

// JoinResult reports the outcome of a successful join_room.
type JoinResult struct {
	// Reentry is true when an existing member reconnected; the roster is
	// unchanged and no join notifications should go out.
	Reentry     bool
	State       ContentState
	MemberCount int
}

// Join admits a learner, resolving name collisions through identity
// binding. Ban checks are the caller's job and must come first.
func (s *RoomStore) Join(id domain.RoomID, name, password, device string, conn domain.ConnID) (JoinResult, *domain.Rejection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return JoinResult{}, domain.Reject(domain.CodeRoomNotFound)
	}
	if room.Password != "" && room.Password != password {
		return JoinResult{}, domain.Reject(domain.CodeWrongPassword)
	}
	if name == room.PresenterName {
		return JoinResult{}, domain.Reject(domain.CodeNameIsPresenter)
	}

	switch resolveIdentity(room.Members[name], device) {
	case bindCollision:
		return JoinResult{}, domain.Reject(domain.CodeNameInUse)
	case bindReentry:
		room.Members[name].Conn = conn
		log.Info().Str("module", "core.store").Str("room", string(id)).Str("member", name).Msg("member re-entered")
		return JoinResult{
			Reentry:     true,
			State:       ContentState{Content: room.Content, Hidden: room.AnswerHidden},
			MemberCount: len(room.Members),
		}, nil
	}

	room.Members[name] = domain.NewMember(conn, name, device, domain.RoleStudent)
	log.Info().Str("module", "core.store").Str("room", string(id)).Str("member", name).Msg("member joined")
	return JoinResult{
		State:       ContentState{Content: room.Content, Hidden: room.AnswerHidden},
		MemberCount: len(room.Members),
	}, nil
}

// UpdateContent replaces the room's prompt. Presenter-only.
func (s *RoomStore) UpdateContent(id domain.RoomID, caller domain.ConnID, c domain.Content, hide bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok || room.PresenterConn != caller {
		return false
	}
	room.Content = c
	room.AnswerHidden = hide
	return true
}

// ToggleAnswer flips answer visibility and returns the new hidden state.
// Presenter-only.
func (s *RoomStore) ToggleAnswer(id domain.RoomID, caller domain.ConnID) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok || room.PresenterConn != caller {
		return false, false
	}
	room.AnswerHidden = !room.AnswerHidden
	return room.AnswerHidden, true
}

// Kick removes the target member immediately. Presenter-only; the
// returned snapshot is the removed seat.
func (s *RoomStore) Kick(id domain.RoomID, caller, target domain.ConnID) (domain.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok || room.PresenterConn != caller {
		return domain.Member{}, false
	}
	return s.removeByConnLocked(room, target)
}

// Leave removes the caller's own seat immediately (explicit leave, no
// grace period).
func (s *RoomStore) Leave(id domain.RoomID, conn domain.ConnID) (domain.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return domain.Member{}, false
	}
	return s.removeByConnLocked(room, conn)
}

// RemoveIfStale is the learner grace-period revalidation: the seat is
// removed only if a member with the captured name still exists and its
// connection id still equals the one captured at disconnect time. A
// newer connection id means the member re-entered; an absent name means
// the seat was already removed by a leave or kick.
func (s *RoomStore) RemoveIfStale(id domain.RoomID, name string, conn domain.ConnID) (domain.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return domain.Member{}, false
	}
	m, ok := room.Members[name]
	if !ok || m.Conn != conn {
		return domain.Member{}, false
	}
	snap := *m
	delete(room.Members, name)
	log.Info().Str("module", "core.store").Str("room", string(id)).Str("member", name).Msg("member removed after grace period")
	return snap, true
}

func (s *RoomStore) removeByConnLocked(room *domain.Room, conn domain.ConnID) (domain.Member, bool) {
	for name, m := range room.Members {
		if m.Conn == conn {
			snap := *m
			delete(room.Members, name)
			log.Info().Str("module", "core.store").Str("room", string(room.ID)).Str("member", name).Msg("member removed")
			return snap, true
		}
	}
	return domain.Member{}, false
}

// SetMuteAll sets the room-wide mic lock and marks every learner as
// server-muted (or unmuted). Presenter-only.
func (s *RoomStore) SetMuteAll(id domain.RoomID, caller domain.ConnID, state bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok || room.PresenterConn != caller {
		return false
	}
	room.MicLocked = state
	for _, m := range room.Members {
		if m.Role == domain.RoleStudent {
			m.Muted = state
		}
	}
	return true
}

// SetMemberMute updates one member's server-muted flag. Presenter-only.
func (s *RoomStore) SetMemberMute(id domain.RoomID, caller, target domain.ConnID, state bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok || room.PresenterConn != caller {
		return false
	}
	for _, m := range room.Members {
		if m.Conn == target {
			m.Muted = state
			return true
		}
	}
	return false
}

// SetVoice flips a member's in-voice flag and returns the updated seat.
func (s *RoomStore) SetVoice(id domain.RoomID, conn domain.ConnID, in bool) (domain.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return domain.Member{}, false
	}
	for _, m := range room.Members {
		if m.Conn == conn {
			m.InVoice = in
			return *m, true
		}
	}
	return domain.Member{}, false
}

// VoiceRoster lists exactly the members whose in-voice flag is true.
func (s *RoomStore) VoiceRoster(id domain.RoomID) []domain.VoiceParticipant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return []domain.VoiceParticipant{}
	}
	out := make([]domain.VoiceParticipant, 0, len(room.Members))
	for _, m := range room.Members {
		if m.InVoice {
			out = append(out, domain.VoiceParticipant{Conn: m.Conn, Name: m.Name, Role: m.Role})
		}
	}
	return out
}

// VoicePeers lists the connection ids of in-voice members other than
// except. The joining client initiates the peer connections, so handing
// it the existing peers avoids duplicate offers.
func (s *RoomStore) VoicePeers(id domain.RoomID, except domain.ConnID) []domain.ConnID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil
	}
	out := make([]domain.ConnID, 0, len(room.Members))
	for _, m := range room.Members {
		if m.InVoice && m.Conn != except {
			out = append(out, m.Conn)
		}
	}
	return out
}

// Roster returns a snapshot of all members.
func (s *RoomStore) Roster(id domain.RoomID) ([]domain.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	out := make([]domain.Member, 0, len(room.Members))
	for _, m := range room.Members {
		out = append(out, *m)
	}
	return out, true
}

// RosterFor is the presenter-only manager-list view of Roster.
func (s *RoomStore) RosterFor(id domain.RoomID, caller domain.ConnID) ([]domain.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok || room.PresenterConn != caller {
		return nil, false
	}
	out := make([]domain.Member, 0, len(room.Members))
	for _, m := range room.Members {
		out = append(out, *m)
	}
	return out, true
}

func (s *RoomStore) MemberCount(id domain.RoomID) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return 0, false
	}
	return len(room.Members), true
}

// MemberByConn finds the seat currently bound to a connection.
func (s *RoomStore) MemberByConn(id domain.RoomID, conn domain.ConnID) (domain.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return domain.Member{}, false
	}
	for _, m := range room.Members {
		if m.Conn == conn {
			return *m, true
		}
	}
	return domain.Member{}, false
}

// PresenterConn returns the room's live presenter connection id.
func (s *RoomStore) PresenterConn(id domain.RoomID) (domain.ConnID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return "", false
	}
	return room.PresenterConn, true
}

// ContentFor returns the room's current content snapshot.
func (s *RoomStore) ContentFor(id domain.RoomID) (ContentState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return ContentState{}, false
	}
	return ContentState{Content: room.Content, Hidden: room.AnswerHidden}, true
}

// PublicRooms lists live lobby summaries of every passwordless room.
func (s *RoomStore) PublicRooms() []domain.PublicRoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PublicRoomInfo, 0, len(s.rooms))
	for id, room := range s.rooms {
		if !room.Public {
			continue
		}
		out = append(out, domain.PublicRoomInfo{
			ID:    id,
			Name:  room.PresenterName + "'s Class",
			Users: len(room.Members),
		})
	}
	return out
}

// Destroy drops the room and everything in it.
func (s *RoomStore) Destroy(id domain.RoomID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return false
	}
	delete(s.rooms, id)
	log.Info().Str("module", "core.store").Str("room", string(id)).Msg("room destroyed")
	return true
}
