package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lightstack-home/lightstack/internal/domain"
)

const commandTimeout = 10 * time.Second

// AlertCommander is the slice of the alert engine the websocket command
// surface needs. Mutations broadcast their own events; the dispatcher only
// sends the direct command_result reply.
type AlertCommander interface {
	Trigger(ctx context.Context, alertKey string, priority *int, note *string) (*domain.AlertView, error)
	Clear(ctx context.Context, alertKey string, note *string) (*domain.AlertView, error)
	ClearAll(ctx context.Context, note *string) (*domain.BulkClearResult, error)
	CurrentState(ctx context.Context) (*domain.CurrentAlertState, error)
	ListAlerts(ctx context.Context, activeOnly bool) ([]domain.AlertView, error)
}

// Dispatcher routes parsed client commands to the alert engine and writes the
// reply back onto the issuing client only.
type Dispatcher struct {
	commander AlertCommander
	logger    *slog.Logger
}

func NewDispatcher(commander AlertCommander, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		commander: commander,
		logger:    logger,
	}
}

func (d *Dispatcher) Dispatch(c *Client, msg ClientMessage) {
	if msg.Type == "" {
		c.replyError(ErrCodeInvalidMessage, "Message must carry a type", msg.ID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var (
		result any
		err    error
	)

	switch CommandType(msg.Type) {
	case CommandPing:
		result = "pong"
	case CommandGetState:
		result, err = d.commander.CurrentState(ctx)
	case CommandGetActiveAlerts:
		result, err = d.commander.ListAlerts(ctx, true)
	case CommandGetAllAlerts:
		result, err = d.commander.ListAlerts(ctx, false)
	case CommandTriggerAlert:
		result, err = d.triggerAlert(ctx, msg)
	case CommandClearAlert:
		result, err = d.clearAlert(ctx, msg)
	case CommandClearAllAlerts:
		result, err = d.clearAllAlerts(ctx, msg)
	default:
		c.replyError(ErrCodeUnknownCommand, fmt.Sprintf("Unknown command: %s", msg.Type), msg.ID)
		return
	}

	if err != nil {
		if errors.Is(err, errMalformedPayload) {
			c.replyError(ErrCodeInvalidMessage, "Command data is malformed", msg.ID)
			return
		}
		code, message := commandError(err)
		d.logger.Warn("websocket command failed",
			"client_id", c.ID,
			"command", msg.Type,
			"code", code,
		)
		c.replyError(code, message, msg.ID)
		return
	}

	c.reply(EventCommandResult, CommandResultData{
		CommandID:   msg.ID,
		CommandType: msg.Type,
		Success:     true,
		Result:      result,
	})
}

func (d *Dispatcher) triggerAlert(ctx context.Context, msg ClientMessage) (any, error) {
	var cmd TriggerAlertCommand
	if err := decodeCommand(msg.Data, &cmd); err != nil {
		return nil, err
	}

	return d.commander.Trigger(ctx, cmd.AlertKey, cmd.Priority, cmd.Note)
}

func (d *Dispatcher) clearAlert(ctx context.Context, msg ClientMessage) (any, error) {
	var cmd ClearAlertCommand
	if err := decodeCommand(msg.Data, &cmd); err != nil {
		return nil, err
	}

	return d.commander.Clear(ctx, cmd.AlertKey, cmd.Note)
}

func (d *Dispatcher) clearAllAlerts(ctx context.Context, msg ClientMessage) (any, error) {
	var cmd ClearAllAlertsCommand
	if err := decodeCommand(msg.Data, &cmd); err != nil {
		return nil, err
	}

	return d.commander.ClearAll(ctx, cmd.Note)
}

// errMalformedPayload marks a command whose data field failed to decode, so
// the reply carries the protocol's INVALID_MESSAGE code instead of an engine
// error code.
var errMalformedPayload = errors.New("malformed command payload")

func decodeCommand(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	return nil
}

// commandError maps an engine error onto the wire error code and message.
func commandError(err error) (code, message string) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Message
	}
	return domain.ErrInternal.Code, domain.ErrInternal.Message
}
