package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/domain"
)

func (ctl *Controller) handleCreateRoom(conn domain.ConnID, data []byte) {
	var p struct {
		Type     string `json:"type"`
		Name     string `json:"name"`
		RoomID   string `json:"roomId"`
		Password string `json:"password"`
		DeviceID string `json:"deviceId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create_room payload")
		return
	}
	if p.Name == "" || p.RoomID == "" {
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(conn)).Str("room", p.RoomID).Msg("create_room")
	ctl.Orch.CreateRoom(conn, p.Name, domain.RoomID(p.RoomID), p.Password, p.DeviceID)
}

func (ctl *Controller) handleJoinRoom(conn domain.ConnID, data []byte) {
	var p struct {
		Type     string `json:"type"`
		Name     string `json:"name"`
		RoomID   string `json:"roomId"`
		Password string `json:"password"`
		DeviceID string `json:"deviceId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join_room payload")
		return
	}
	if p.Name == "" || p.RoomID == "" {
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(conn)).Str("room", p.RoomID).Msg("join_room")
	ctl.Orch.JoinRoom(conn, p.Name, domain.RoomID(p.RoomID), p.Password, p.DeviceID)
}

func (ctl *Controller) handleLeaveManual(conn domain.ConnID, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad student_leave_manual payload")
		return
	}
	ctl.Orch.LeaveManual(conn, domain.RoomID(p.RoomID))
}
