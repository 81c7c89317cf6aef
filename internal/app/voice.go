package app

import (
	"encoding/json"

	"github.com/tobeoren/classroom/internal/domain"
)

// JoinVoice handles join_voice: flips the in-voice flag, hands the
// caller the peers already in voice (the newcomer initiates the peer
// connections, which avoids duplicate offers), and refreshes the voice
// roster for everyone.
func (o *Orchestrator) JoinVoice(conn domain.ConnID, roomID domain.RoomID) {
	if _, ok := o.Store.SetVoice(roomID, conn, true); !ok {
		return
	}
	o.sendTo(conn, voiceUsersEvent{Type: EvtVoiceUsersList, IDs: o.Store.VoicePeers(roomID, conn)})
	o.broadcast(roomID, voiceStatusEvent{Type: EvtVoiceStatusUpdate, Participants: o.Store.VoiceRoster(roomID)})
	o.broadcastRoster(roomID)
}

// LeaveVoice handles leave_voice: the rest of the room tears down its
// peer connection with this id.
func (o *Orchestrator) LeaveVoice(conn domain.ConnID, roomID domain.RoomID) {
	if _, ok := o.Store.SetVoice(roomID, conn, false); !ok {
		return
	}
	o.broadcastExcept(roomID, conn, userLeftVoiceEvent{Type: EvtUserLeftVoice, ID: conn})
	o.broadcast(roomID, voiceStatusEvent{Type: EvtVoiceStatusUpdate, Participants: o.Store.VoiceRoster(roomID)})
	o.broadcastRoster(roomID)
}

// RelaySignal handles voice_signal: the payload is forwarded verbatim to
// the target connection, tagged with the sender. No room or authority
// check; the payload is opaque and the target validates context itself.
func (o *Orchestrator) RelaySignal(sender, target domain.ConnID, payload json.RawMessage) {
	o.sendTo(target, voiceSignalEvent{Type: EvtVoiceSignal, SenderID: sender, Payload: payload})
}
