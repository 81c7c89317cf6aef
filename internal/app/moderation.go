package app

import (
	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/domain"
)

// Kick modes carried by admin_kick_user.
const (
	KickPermanent = "permanent"
	KickTemporary = "temporary"
)

// KickUser handles admin_kick_user. Presenter-only; a non-presenter
// caller is a silent no-op. Kicks are decisive: the target is removed
// immediately, with no grace period.
func (o *Orchestrator) KickUser(conn domain.ConnID, roomID domain.RoomID, target domain.ConnID, mode string, duration int, device string) {
	m, ok := o.Store.Kick(roomID, conn, target)
	if !ok {
		return
	}
	// Prefer the fingerprint the store recorded at join time; the
	// payload value is a fallback for clients that cached it.
	if m.Device != "" {
		device = m.Device
	}

	now := o.Now()
	if mode == KickPermanent {
		o.Bans.BanPermanently(roomID, device)
		o.sendTo(target, forceLeaveEvent{Type: EvtForceLeave, Code: domain.CodeKickedPermanently})
	} else {
		minutes := o.Bans.BanTemporarily(roomID, device, duration, now)
		o.sendTo(target, forceLeaveEvent{Type: EvtForceLeave, Code: domain.CodeKickedTemporarily, Minutes: minutes})
	}
	o.Registry.ClearRoom(target)
	log.Info().Str("module", "app.moderation").Str("room", string(roomID)).Str("mode", mode).Msg("member kicked")

	count, _ := o.Store.MemberCount(roomID)
	o.broadcast(roomID, userCountEvent{Type: EvtUserCount, Count: count})
	o.broadcastRoster(roomID)
	if m.InVoice {
		o.broadcast(roomID, userLeftVoiceEvent{Type: EvtUserLeftVoice, ID: target})
		o.broadcast(roomID, voiceStatusEvent{Type: EvtVoiceStatusUpdate, Participants: o.Store.VoiceRoster(roomID)})
	}
}

// MuteAll handles admin_mute_all: room-wide mic lock plus a server-mute
// flag on every learner. Presenter-only.
func (o *Orchestrator) MuteAll(conn domain.ConnID, roomID domain.RoomID, state bool) {
	if !o.Store.SetMuteAll(roomID, conn, state) {
		return
	}
	o.broadcast(roomID, remoteMuteEvent{Type: EvtRemoteMuteControl, ShouldMute: state, IsLocked: state})
	o.broadcastRoster(roomID)
}

// ToggleMute handles admin_toggle_mute for a single member.
// Presenter-only; only the target client is instructed.
func (o *Orchestrator) ToggleMute(conn domain.ConnID, roomID domain.RoomID, target domain.ConnID, state bool) {
	if !o.Store.SetMemberMute(roomID, conn, target, state) {
		return
	}
	o.sendTo(target, remoteMuteEvent{Type: EvtRemoteMuteControl, ShouldMute: state, IsLocked: state})
	if users, ok := o.Store.RosterFor(roomID, conn); ok {
		o.sendTo(conn, managerListEvent{Type: EvtManagerList, Users: users})
	}
}

// StudentList handles get_student_list. Presenter-only.
func (o *Orchestrator) StudentList(conn domain.ConnID, roomID domain.RoomID) {
	users, ok := o.Store.RosterFor(roomID, conn)
	if !ok {
		return
	}
	o.sendTo(conn, managerListEvent{Type: EvtManagerList, Users: users})
}
