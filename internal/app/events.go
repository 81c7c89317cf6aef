package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/domain"
)

// Outbound event names. The wire format is a flat JSON object with a
// "type" discriminator, one struct per event.
const (
	EvtRoomJoined         = "room_joined"
	EvtErrorMsg           = "error_msg"
	EvtUserCount          = "update_user_count"
	EvtContentUpdated     = "content_updated"
	EvtAnswerToggled      = "answer_toggled"
	EvtChatMessage        = "chat_message"
	EvtForceLeave         = "force_leave"
	EvtManagerList        = "update_student_manager_list"
	EvtRemoteMuteControl  = "remote_mute_control"
	EvtVoiceStatusUpdate  = "voice_status_update"
	EvtVoiceUsersList     = "voice_users_list"
	EvtVoiceSignal        = "voice_signal"
	EvtUserLeftVoice      = "user_left_voice"
	EvtUpdatePublicRooms  = "update_public_rooms"
)

// Chat message kinds, used for client-side styling.
const (
	chatKindSystem  = "sys"
	chatKindCorrect = "sys-succ"
	chatKindSensei  = "sensei"
	chatKindOther   = "other"
)

type roomJoinedEvent struct {
	Type         string         `json:"type"`
	Role         domain.Role    `json:"role"`
	RoomID       domain.RoomID  `json:"roomId"`
	Name         string         `json:"name"`
	Content      domain.Content `json:"currentQuestion"`
	AnswerHidden bool           `json:"isAnswerHidden"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Minutes int    `json:"minutes,omitempty"`
}

func rejectionEvent(rej *domain.Rejection) errorEvent {
	return errorEvent{Type: EvtErrorMsg, Code: rej.Code, Minutes: rej.Minutes}
}

type userCountEvent struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type contentUpdatedEvent struct {
	Type         string         `json:"type"`
	Content      domain.Content `json:"question"`
	AnswerHidden bool           `json:"isAnswerHidden"`
}

type answerToggledEvent struct {
	Type         string `json:"type"`
	AnswerHidden bool   `json:"isAnswerHidden"`
}

type chatEvent struct {
	Type    string      `json:"type"`
	Kind    string      `json:"kind"`
	MsgCode string      `json:"msgCode,omitempty"`
	Text    string      `json:"text,omitempty"`
	Sender  string      `json:"sender,omitempty"`
	Role    domain.Role `json:"role,omitempty"`
	User    string      `json:"user,omitempty"`
}

func systemChat(msgCode, user string) chatEvent {
	return chatEvent{Type: EvtChatMessage, Kind: chatKindSystem, MsgCode: msgCode, User: user}
}

type forceLeaveEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Minutes int    `json:"minutes,omitempty"`
}

type managerListEvent struct {
	Type  string          `json:"type"`
	Users []domain.Member `json:"users"`
}

type remoteMuteEvent struct {
	Type       string `json:"type"`
	ShouldMute bool   `json:"shouldMute"`
	IsLocked   bool   `json:"isLocked"`
}

type voiceStatusEvent struct {
	Type         string                    `json:"type"`
	Participants []domain.VoiceParticipant `json:"participants"`
}

type voiceUsersEvent struct {
	Type string          `json:"type"`
	IDs  []domain.ConnID `json:"ids"`
}

type voiceSignalEvent struct {
	Type     string          `json:"type"`
	SenderID domain.ConnID   `json:"senderId"`
	Payload  json.RawMessage `json:"payload"`
}

type userLeftVoiceEvent struct {
	Type string        `json:"type"`
	ID   domain.ConnID `json:"id"`
}

type publicRoomsEvent struct {
	Type  string                  `json:"type"`
	Rooms []domain.PublicRoomInfo `json:"rooms"`
}

// sendTo marshals and queues an event for one connection. Errors are
// backpressure or a closing socket; the pump handles the connection
// lifecycle, so they are only logged here.
func (o *Orchestrator) sendTo(conn domain.ConnID, v any) {
	sig, ok := o.Registry.Get(conn)
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.events").Msg("marshal outbound event")
		return
	}
	if err := sig.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "app.events").Str("conn", string(conn)).Msg("dropped outbound event")
	}
}

// broadcast fans an event out to every connection in the room.
func (o *Orchestrator) broadcast(room domain.RoomID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.events").Msg("marshal broadcast event")
		return
	}
	dropped := 0
	for _, snap := range o.Registry.MembersOfRoom(room) {
		if err := snap.Signal.TrySend(b); err != nil {
			dropped++
		}
	}
	if dropped > 0 {
		log.Debug().Str("module", "app.events").Str("room", string(room)).Int("dropped", dropped).Msg("broadcast result")
	}
}

// broadcastExcept fans out to the room minus one connection.
func (o *Orchestrator) broadcastExcept(room domain.RoomID, except domain.ConnID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.events").Msg("marshal broadcast event")
		return
	}
	for _, snap := range o.Registry.MembersOfRoom(room) {
		if snap.Conn == except {
			continue
		}
		_ = snap.Signal.TrySend(b)
	}
}

// broadcastAll reaches every bound connection, in or out of rooms.
func (o *Orchestrator) broadcastAll(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.events").Msg("marshal broadcast event")
		return
	}
	for _, snap := range o.Registry.All() {
		_ = snap.Signal.TrySend(b)
	}
}
