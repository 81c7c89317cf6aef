package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/domain"
)

func (ctl *Controller) handleJoinVoice(conn domain.ConnID, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join_voice payload")
		return
	}
	ctl.Orch.JoinVoice(conn, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleLeaveVoice(conn domain.ConnID, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave_voice payload")
		return
	}
	ctl.Orch.LeaveVoice(conn, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleVoiceSignal(conn domain.ConnID, data []byte) {
	var p struct {
		Type     string          `json:"type"`
		TargetID string          `json:"targetId"`
		Payload  json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad voice_signal payload")
		return
	}
	if p.TargetID == "" {
		return
	}
	ctl.Orch.RelaySignal(conn, domain.ConnID(p.TargetID), p.Payload)
}
