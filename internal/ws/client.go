package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
)

// Client is one websocket subscriber. Writes go through the buffered send
// channel owned by WritePump; nothing else writes to the connection.
type Client struct {
	ID     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	dsp    *Dispatcher
	logger *slog.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, dsp *Dispatcher, sendBuffer int, logger *slog.Logger) *Client {
	return &Client{
		ID:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		dsp:    dsp,
		logger: logger,
	}
}

// enqueue puts one message into the client's send buffer without going
// through the hub. Used for direct replies and the connection snapshot.
func (c *Client) enqueue(message ServerMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		c.logger.Error("failed to marshal client message",
			"client_id", c.ID,
			"type", message.Type,
			"error", err,
		)
		return
	}

	select {
	case c.send <- payload:
	default:
		c.logger.Warn("client send buffer full, dropping direct message",
			"client_id", c.ID,
			"type", message.Type,
		)
	}
}

func (c *Client) reply(eventType EventType, data any) {
	c.enqueue(ServerMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func (c *Client) replyError(code, message, commandID string) {
	c.reply(EventError, ErrorData{
		Code:      code,
		Message:   message,
		CommandID: commandID,
	})
}

// ReadPump consumes inbound commands until the connection closes, then
// deregisters the client from the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error",
					"client_id", c.ID,
					"error", err,
				)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.replyError(ErrCodeInvalidJSON, "Message is not valid JSON", "")
			continue
		}

		c.dsp.Dispatch(c, msg)
	}
}

// WritePump drains the send channel onto the wire and keeps the connection
// alive with pings. It exits when the hub closes the send channel.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
