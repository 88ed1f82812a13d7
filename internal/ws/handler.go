package ws

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/lightstack-home/lightstack/internal/domain"
)

// Handler upgrades HTTP connections and runs the per-connection pumps.
type Handler struct {
	hub        *Hub
	dsp        *Dispatcher
	commander  AlertCommander
	sendBuffer int
	version    string
	logger     *slog.Logger
}

func NewHandler(hub *Hub, dsp *Dispatcher, commander AlertCommander, sendBuffer int, version string, logger *slog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		dsp:        dsp,
		commander:  commander,
		sendBuffer: sendBuffer,
		version:    version,
		logger:     logger,
	}
}

// UpgradeMiddleware rejects plain HTTP requests on the websocket route.
func (h *Handler) UpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve returns the fiber handler for the websocket endpoint.
func (h *Handler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := NewClient(h.hub, conn, h.dsp, h.sendBuffer, h.logger)

		// The snapshot goes into the send buffer before hub registration so
		// it is always the first message the subscriber receives, ahead of
		// any broadcast racing the connect.
		client.reply(EventConnectionEstablished, h.snapshot())

		h.hub.register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

func (h *Handler) snapshot() ConnectionEstablishedData {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	state, err := h.commander.CurrentState(ctx)
	if err != nil {
		h.logger.Error("failed to load state snapshot for new client", "error", err)
		state = &domain.CurrentAlertState{
			IsAllClear:   true,
			ActiveAlerts: []domain.AlertView{},
		}
	}

	return ConnectionEstablishedData{
		State:         *state,
		ServerVersion: h.version,
	}
}
