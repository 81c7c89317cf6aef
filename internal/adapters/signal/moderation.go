package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/domain"
)

func (ctl *Controller) handleKickUser(conn domain.ConnID, data []byte) {
	var p struct {
		Type     string `json:"type"`
		RoomID   string `json:"roomId"`
		TargetID string `json:"targetId"`
		Mode     string `json:"mode"`
		Duration int    `json:"duration"`
		DeviceID string `json:"deviceId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad admin_kick_user payload")
		return
	}
	ctl.Orch.KickUser(conn, domain.RoomID(p.RoomID), domain.ConnID(p.TargetID), p.Mode, p.Duration, p.DeviceID)
}

func (ctl *Controller) handleMuteAll(conn domain.ConnID, data []byte) {
	var p struct {
		Type      string `json:"type"`
		RoomID    string `json:"roomId"`
		MuteState bool   `json:"muteState"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad admin_mute_all payload")
		return
	}
	ctl.Orch.MuteAll(conn, domain.RoomID(p.RoomID), p.MuteState)
}

func (ctl *Controller) handleToggleMute(conn domain.ConnID, data []byte) {
	var p struct {
		Type      string `json:"type"`
		RoomID    string `json:"roomId"`
		TargetID  string `json:"targetId"`
		MuteState bool   `json:"muteState"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad admin_toggle_mute payload")
		return
	}
	ctl.Orch.ToggleMute(conn, domain.RoomID(p.RoomID), domain.ConnID(p.TargetID), p.MuteState)
}

func (ctl *Controller) handleStudentList(conn domain.ConnID, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad get_student_list payload")
		return
	}
	ctl.Orch.StudentList(conn, domain.RoomID(p.RoomID))
}
