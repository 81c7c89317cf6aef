package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/app"
	"github.com/tobeoren/classroom/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the WS endpoint: upgrades, pumps, and dispatch of the
// typed JSON events into the orchestrator.
type Controller struct {
	Orch *app.Orchestrator

	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(orch *app.Orchestrator, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{Orch: orch, ReadLimit: readLimit, PingPeriod: pingPeriod}
}

// WsConn wraps a websocket connection behind a buffered send queue so a
// slow client sheds frames instead of blocking a broadcast.
type WsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Origin policy is enforced by the HTTP middleware before the upgrade.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the HTTP request and binds a fresh connection id.
// The id changes on every reconnect; identity is re-established by the
// join path from name + device fingerprint.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := domain.ConnID(uuid.NewString())
	wsc := &WsConn{
		conn: ws,
		send: make(chan []byte, 32),
	}
	log.Info().Str("module", "signal").Str("conn", string(conn)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(conn, wsc, cancel)

	go ctl.writePump(ctx, wsc)
	go ctl.readPump(ctx, conn, wsc)
}

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, conn domain.ConnID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(conn)).Msg("readPump closing")
		c.Close()
		ctl.Orch.Disconnect(conn)
	}()

	c.conn.SetReadLimit(ctl.ReadLimit)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(conn)).Msg("readPump read error")
				return
			}
			ctl.dispatch(conn, data)
		}
	}
}

func (ctl *Controller) dispatch(conn domain.ConnID, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "create_room":
		ctl.handleCreateRoom(conn, data)
	case "join_room":
		ctl.handleJoinRoom(conn, data)
	case "update_content":
		ctl.handleUpdateContent(conn, data)
	case "toggle_answer":
		ctl.handleToggleAnswer(conn, data)
	case "send_message":
		ctl.handleSendMessage(conn, data)
	case "admin_kick_user":
		ctl.handleKickUser(conn, data)
	case "admin_mute_all":
		ctl.handleMuteAll(conn, data)
	case "admin_toggle_mute":
		ctl.handleToggleMute(conn, data)
	case "get_student_list":
		ctl.handleStudentList(conn, data)
	case "join_voice":
		ctl.handleJoinVoice(conn, data)
	case "leave_voice":
		ctl.handleLeaveVoice(conn, data)
	case "voice_signal":
		ctl.handleVoiceSignal(conn, data)
	case "get_public_rooms":
		ctl.Orch.PublicRooms(conn)
	case "student_leave_manual":
		ctl.handleLeaveManual(conn, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}
