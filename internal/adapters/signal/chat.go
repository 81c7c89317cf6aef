package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/domain"
)

func (ctl *Controller) handleUpdateContent(conn domain.ConnID, data []byte) {
	var p struct {
		Type       string         `json:"type"`
		RoomID     string         `json:"roomId"`
		Content    domain.Content `json:"content"`
		HideAnswer bool           `json:"hideAnswer"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad update_content payload")
		return
	}
	ctl.Orch.UpdateContent(conn, domain.RoomID(p.RoomID), p.Content, p.HideAnswer)
}

func (ctl *Controller) handleToggleAnswer(conn domain.ConnID, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad toggle_answer payload")
		return
	}
	ctl.Orch.ToggleAnswer(conn, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleSendMessage(conn domain.ConnID, data []byte) {
	var p struct {
		Type    string      `json:"type"`
		RoomID  string      `json:"roomId"`
		Message string      `json:"message"`
		Sender  string      `json:"sender"`
		Role    domain.Role `json:"role"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send_message payload")
		return
	}
	if p.Message == "" {
		return
	}
	ctl.Orch.SendMessage(conn, domain.RoomID(p.RoomID), p.Message, p.Sender, p.Role)
}
