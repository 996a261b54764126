package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cx-tal-miterani/travel-booking/shared/booking"
	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionService is the part of the booking service a socket drives
type SessionService interface {
	GetSession(ctx context.Context, sessionID string) (booking.Snapshot, error)
	UpdateSession(ctx context.Context, sessionID string, field models.Field, value string) (booking.Snapshot, error)
	SubmitSession(ctx context.Context, sessionID string) (models.BookingResult, error)
	SessionItemKey(sessionID string) (string, error)
}

// Client represents a WebSocket connection bound to one booking session
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	itemKey   string
	sessions  SessionService
}

// HandleSession upgrades GET /api/sessions/{id}/ws. The client sends field
// edits and submits; the server answers with snapshots and results and
// pushes inventory_changed notices for the session's item.
func (h *Hub) HandleSession(sessions SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		itemKey, err := sessions.SessionItemKey(sessionID)
		if err != nil {
			http.Error(w, "Booking session not found", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn().Err(err).Str("sessionId", sessionID).Msg("WebSocket upgrade failed")
			return
		}

		client := &Client{
			hub:       h,
			conn:      conn,
			send:      make(chan []byte, 64),
			sessionID: sessionID,
			itemKey:   itemKey,
			sessions:  sessions,
		}
		if !h.Register(client) {
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()

		if snap, err := sessions.GetSession(context.Background(), sessionID); err == nil {
			client.reply(MessageTypeSnapshot, snap)
		}
	}
}

func (c *Client) reply(t MessageType, payload interface{}) {
	msg := newMessage(t)
	msg.ItemKey = c.itemKey
	msg.Payload = payload
	c.hub.Send(c, msg)
}

func (c *Client) replyError(message string) {
	msg := newMessage(MessageTypeError)
	msg.Message = message
	c.hub.Send(c, msg)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug().Err(err).Str("sessionId", c.sessionID).Msg("WebSocket closed")
			}
			return
		}

		var cmd models.SessionCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.replyError("Invalid message")
			continue
		}
		if err := models.Validate.Struct(cmd); err != nil {
			c.replyError(err.Error())
			continue
		}
		c.handle(cmd)
	}
}

func (c *Client) handle(cmd models.SessionCommand) {
	ctx := context.Background()
	switch cmd.Type {
	case "update":
		snap, err := c.sessions.UpdateSession(ctx, c.sessionID, cmd.Field, cmd.Value)
		if err != nil {
			c.replyError(err.Error())
			return
		}
		c.reply(MessageTypeSnapshot, snap)

	case "submit":
		// Submitting blocks on the Booking Service; edits keep flowing meanwhile.
		go func() {
			result, err := c.sessions.SubmitSession(ctx, c.sessionID)
			if err != nil && result.Status == "" {
				c.replyError(err.Error())
				return
			}
			c.reply(MessageTypeResult, result)
		}()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
