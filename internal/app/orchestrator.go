package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/core"
	"github.com/tobeoren/classroom/internal/domain"
)

// Orchestrator processes every inbound event: it resolves the room,
// verifies authority where needed, mutates state through the store, and
// emits the resulting broadcasts. One method per inbound event.
type Orchestrator struct {
	Registry *Registry
	Store    *core.RoomStore
	Bans     *core.BanRegistry
	Grace    *Grace
	Chat     ChatPolicy

	// Now is sampled once per inbound event so every check within that
	// event sees the same instant. Overridable in tests.
	Now func() time.Time
}

func NewOrchestrator(reg *Registry, store *core.RoomStore, bans *core.BanRegistry, grace *Grace, chat ChatPolicy) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Store:    store,
		Bans:     bans,
		Grace:    grace,
		Chat:     chat,
		Now:      time.Now,
	}
}

// CreateRoom handles create_room: a fresh room for an unused id, or the
// recorded presenter reconnecting into an existing one.
func (o *Orchestrator) CreateRoom(conn domain.ConnID, name string, roomID domain.RoomID, password, device string) {
	res, rej := o.Store.Create(roomID, name, password, device, conn)
	if rej != nil {
		o.sendTo(conn, rejectionEvent(rej))
		return
	}
	o.Registry.SetRoom(conn, roomID)
	o.sendTo(conn, roomJoinedEvent{
		Type:         EvtRoomJoined,
		Role:         domain.RoleSensei,
		RoomID:       roomID,
		Name:         name,
		Content:      res.State.Content,
		AnswerHidden: res.State.Hidden,
	})
	if !res.Reclaimed {
		o.broadcast(roomID, userCountEvent{Type: EvtUserCount, Count: res.MemberCount})
	}
}

// JoinRoom handles join_room. Ban checks come before everything else so
// a banned device learns nothing about the room, not even whether it
// exists.
func (o *Orchestrator) JoinRoom(conn domain.ConnID, name string, roomID domain.RoomID, password, device string) {
	now := o.Now()
	if o.Bans.IsPermanentlyBanned(roomID, device) {
		o.sendTo(conn, errorEvent{Type: EvtErrorMsg, Code: domain.CodeBannedPermanently})
		return
	}
	if minutes, ok := o.Bans.TemporaryRemaining(roomID, device, now); ok {
		o.sendTo(conn, errorEvent{Type: EvtErrorMsg, Code: domain.CodeBannedTemporarily, Minutes: minutes})
		return
	}

	res, rej := o.Store.Join(roomID, name, password, device, conn)
	if rej != nil {
		o.sendTo(conn, rejectionEvent(rej))
		return
	}
	o.Registry.SetRoom(conn, roomID)
	o.sendTo(conn, roomJoinedEvent{
		Type:         EvtRoomJoined,
		Role:         domain.RoleStudent,
		RoomID:       roomID,
		Name:         name,
		Content:      res.State.Content,
		AnswerHidden: res.State.Hidden,
	})
	if res.Reentry {
		// Transparent reconnect: the roster never changed, so nobody
		// gets told anything.
		return
	}
	o.broadcast(roomID, systemChat("join", name))
	o.broadcast(roomID, userCountEvent{Type: EvtUserCount, Count: res.MemberCount})
	o.sendTo(conn, voiceStatusEvent{Type: EvtVoiceStatusUpdate, Participants: o.Store.VoiceRoster(roomID)})
}

// UpdateContent handles update_content. Presenter-only; silently ignored
// otherwise.
func (o *Orchestrator) UpdateContent(conn domain.ConnID, roomID domain.RoomID, c domain.Content, hide bool) {
	if !o.Store.UpdateContent(roomID, conn, c, hide) {
		return
	}
	o.broadcast(roomID, contentUpdatedEvent{Type: EvtContentUpdated, Content: c, AnswerHidden: hide})
}

// ToggleAnswer handles toggle_answer. Presenter-only.
func (o *Orchestrator) ToggleAnswer(conn domain.ConnID, roomID domain.RoomID) {
	hidden, ok := o.Store.ToggleAnswer(roomID, conn)
	if !ok {
		return
	}
	o.broadcast(roomID, answerToggledEvent{Type: EvtAnswerToggled, AnswerHidden: hidden})
}

// SendMessage handles send_message: answer evaluation first, plain chat
// otherwise.
func (o *Orchestrator) SendMessage(conn domain.ConnID, roomID domain.RoomID, message, sender string, role domain.Role) {
	now := o.Now()
	if !o.Chat.Allow(conn, now) {
		o.sendTo(conn, errorEvent{Type: EvtErrorMsg, Code: domain.CodeRateLimited})
		return
	}
	state, ok := o.Store.ContentFor(roomID)
	if !ok {
		return
	}
	if role == domain.RoleStudent && core.MatchesAnswer(state.Content.Answers, message) {
		o.broadcast(roomID, chatEvent{
			Type:    EvtChatMessage,
			Kind:    chatKindCorrect,
			MsgCode: "correct",
			User:    sender,
		})
		return
	}
	kind := chatKindOther
	if role == domain.RoleSensei {
		kind = chatKindSensei
	}
	o.broadcast(roomID, chatEvent{
		Type:   EvtChatMessage,
		Kind:   kind,
		Text:   message,
		Sender: sender,
		Role:   role,
	})
}

// PublicRooms handles get_public_rooms.
func (o *Orchestrator) PublicRooms(conn domain.ConnID) {
	o.sendTo(conn, publicRoomsEvent{Type: EvtUpdatePublicRooms, Rooms: o.Store.PublicRooms()})
}

// LeaveManual handles student_leave_manual: an explicit leave removes
// the seat immediately, no grace period.
func (o *Orchestrator) LeaveManual(conn domain.ConnID, roomID domain.RoomID) {
	m, ok := o.Store.Leave(roomID, conn)
	if !ok {
		return
	}
	o.Registry.ClearRoom(conn)
	count, _ := o.Store.MemberCount(roomID)
	o.broadcast(roomID, userCountEvent{Type: EvtUserCount, Count: count})
	o.broadcastRoster(roomID)
	o.broadcast(roomID, systemChat("leave", m.Name))
	if m.InVoice {
		o.broadcast(roomID, userLeftVoiceEvent{Type: EvtUserLeftVoice, ID: conn})
		o.broadcast(roomID, voiceStatusEvent{Type: EvtVoiceStatusUpdate, Participants: o.Store.VoiceRoster(roomID)})
	}
}

// Disconnect handles a transport-level drop. Destructive effects are
// deferred behind the grace windows; the fired callbacks re-validate
// against current state instead of trusting the snapshot.
func (o *Orchestrator) Disconnect(conn domain.ConnID) {
	roomID, inRoom := o.Registry.RoomOf(conn)
	o.Registry.Unbind(conn)
	o.Chat.Forget(conn)
	if !inRoom {
		return
	}

	// Presenter match takes precedence: the presenter also holds a seat.
	if pc, ok := o.Store.PresenterConn(roomID); ok && pc == conn {
		snap := presenterSnapshot{Room: roomID, Conn: conn}
		log.Info().Str("module", "app.orchestrator").Str("room", string(roomID)).Msg("presenter disconnected, grace timer armed")
		o.Grace.AfterPresenter(func() { o.expirePresenter(snap) })
		return
	}

	if m, ok := o.Store.MemberByConn(roomID, conn); ok {
		snap := learnerSnapshot{Room: roomID, Conn: conn, Name: m.Name}
		log.Info().Str("module", "app.orchestrator").Str("room", string(roomID)).Str("member", m.Name).Msg("learner disconnected, grace timer armed")
		o.Grace.AfterLearner(func() { o.expireLearner(snap) })
	}
}

// presenterSnapshot is the immutable state a presenter grace callback
// carries; everything else is read fresh at fire time.
type presenterSnapshot struct {
	Room domain.RoomID
	Conn domain.ConnID
}

type learnerSnapshot struct {
	Room domain.RoomID
	Conn domain.ConnID
	Name string
}

func (o *Orchestrator) expirePresenter(snap presenterSnapshot) {
	pc, ok := o.Store.PresenterConn(snap.Room)
	if !ok || pc != snap.Conn {
		// Room already gone, or the presenter reconnected under a new
		// connection id. Stale callback.
		return
	}
	o.broadcast(snap.Room, forceLeaveEvent{Type: EvtForceLeave, Code: domain.CodeClassClosed})
	o.Store.Destroy(snap.Room)
	o.Bans.ClearRoom(snap.Room)
	o.Registry.DropRoom(snap.Room)
	o.broadcastAll(publicRoomsEvent{Type: EvtUpdatePublicRooms, Rooms: o.Store.PublicRooms()})
	log.Info().Str("module", "app.orchestrator").Str("room", string(snap.Room)).Msg("room closed after presenter grace period")
}

func (o *Orchestrator) expireLearner(snap learnerSnapshot) {
	m, ok := o.Store.RemoveIfStale(snap.Room, snap.Name, snap.Conn)
	if !ok {
		// Re-entered under a new connection id, or already removed by a
		// kick or manual leave. Stale callback.
		return
	}
	if m.InVoice {
		o.broadcast(snap.Room, userLeftVoiceEvent{Type: EvtUserLeftVoice, ID: snap.Conn})
	}
	o.broadcast(snap.Room, systemChat("leave", snap.Name))
	count, _ := o.Store.MemberCount(snap.Room)
	o.broadcast(snap.Room, userCountEvent{Type: EvtUserCount, Count: count})
	if m.InVoice {
		o.broadcast(snap.Room, voiceStatusEvent{Type: EvtVoiceStatusUpdate, Participants: o.Store.VoiceRoster(snap.Room)})
	}
}

// broadcastRoster pushes the manager list to the whole room.
func (o *Orchestrator) broadcastRoster(roomID domain.RoomID) {
	users, ok := o.Store.Roster(roomID)
	if !ok {
		return
	}
	o.broadcast(roomID, managerListEvent{Type: EvtManagerList, Users: users})
}
