package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightstack-home/lightstack/internal/domain"
)

type fakeCommander struct {
	triggerView *domain.AlertView
	triggerErr  error
	clearView   *domain.AlertView
	clearErr    error
	clearAllRes *domain.BulkClearResult
	state       *domain.CurrentAlertState
	stateErr    error
	alerts      []domain.AlertView

	lastTriggerKey string
	lastPriority   *int
	lastNote       *string
}

func (f *fakeCommander) Trigger(_ context.Context, alertKey string, priority *int, note *string) (*domain.AlertView, error) {
	f.lastTriggerKey = alertKey
	f.lastPriority = priority
	f.lastNote = note
	if f.triggerErr != nil {
		return nil, f.triggerErr
	}
	return f.triggerView, nil
}

func (f *fakeCommander) Clear(_ context.Context, alertKey string, _ *string) (*domain.AlertView, error) {
	if f.clearErr != nil {
		return nil, f.clearErr
	}
	return f.clearView, nil
}

func (f *fakeCommander) ClearAll(_ context.Context, _ *string) (*domain.BulkClearResult, error) {
	return f.clearAllRes, nil
}

func (f *fakeCommander) CurrentState(_ context.Context) (*domain.CurrentAlertState, error) {
	if f.stateErr != nil {
		return nil, f.stateErr
	}
	return f.state, nil
}

func (f *fakeCommander) ListAlerts(_ context.Context, activeOnly bool) ([]domain.AlertView, error) {
	if activeOnly {
		var active []domain.AlertView
		for _, a := range f.alerts {
			if a.IsActive {
				active = append(active, a)
			}
		}
		return active, nil
	}
	return f.alerts, nil
}

func newDispatchPair(commander *fakeCommander) (*Dispatcher, *Client) {
	dsp := NewDispatcher(commander, testLogger())
	client := &Client{
		ID:     "cmd-test",
		send:   make(chan []byte, 8),
		dsp:    dsp,
		logger: testLogger(),
	}
	return dsp, client
}

func dispatchRaw(t *testing.T, dsp *Dispatcher, client *Client, raw string) ServerMessage {
	t.Helper()

	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	dsp.Dispatch(client, msg)
	return receiveMessage(t, client)
}

func resultData(t *testing.T, msg ServerMessage) CommandResultData {
	t.Helper()

	payload, err := json.Marshal(msg.Data)
	require.NoError(t, err)

	var data CommandResultData
	require.NoError(t, json.Unmarshal(payload, &data))
	return data
}

func errorData(t *testing.T, msg ServerMessage) ErrorData {
	t.Helper()

	require.Equal(t, EventError, msg.Type)

	payload, err := json.Marshal(msg.Data)
	require.NoError(t, err)

	var data ErrorData
	require.NoError(t, json.Unmarshal(payload, &data))
	return data
}

func TestDispatcher_Ping(t *testing.T) {
	dsp, client := newDispatchPair(&fakeCommander{})

	msg := dispatchRaw(t, dsp, client, `{"type":"ping","id":"req-1"}`)

	require.Equal(t, EventCommandResult, msg.Type)
	data := resultData(t, msg)
	assert.Equal(t, "req-1", data.CommandID)
	assert.Equal(t, "ping", data.CommandType)
	assert.True(t, data.Success)
	assert.Equal(t, "pong", data.Result)
}

func TestDispatcher_GetState(t *testing.T) {
	commander := &fakeCommander{
		state: &domain.CurrentAlertState{
			IsAllClear:   true,
			ActiveAlerts: []domain.AlertView{},
		},
	}
	dsp, client := newDispatchPair(commander)

	msg := dispatchRaw(t, dsp, client, `{"type":"get_state"}`)

	data := resultData(t, msg)
	assert.True(t, data.Success)
	assert.Equal(t, "get_state", data.CommandType)
}

func TestDispatcher_GetActiveAlerts(t *testing.T) {
	commander := &fakeCommander{
		alerts: []domain.AlertView{
			{AlertKey: "doorbell", IsActive: true},
			{AlertKey: "laundry_done", IsActive: false},
		},
	}
	dsp, client := newDispatchPair(commander)

	msg := dispatchRaw(t, dsp, client, `{"type":"get_active_alerts"}`)

	data := resultData(t, msg)
	require.True(t, data.Success)

	payload, err := json.Marshal(data.Result)
	require.NoError(t, err)

	var alerts []domain.AlertView
	require.NoError(t, json.Unmarshal(payload, &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "doorbell", alerts[0].AlertKey)
}

func TestDispatcher_TriggerAlert(t *testing.T) {
	now := time.Now().UTC()
	commander := &fakeCommander{
		triggerView: &domain.AlertView{
			AlertKey:          "smoke_detector",
			IsActive:          true,
			EffectivePriority: 1,
			LastTriggeredAt:   &now,
		},
	}
	dsp, client := newDispatchPair(commander)

	msg := dispatchRaw(t, dsp, client,
		`{"type":"trigger_alert","id":"req-7","data":{"alert_key":"smoke_detector","priority":1,"note":"kitchen"}}`)

	data := resultData(t, msg)
	assert.True(t, data.Success)
	assert.Equal(t, "req-7", data.CommandID)
	assert.Equal(t, "smoke_detector", commander.lastTriggerKey)
	require.NotNil(t, commander.lastPriority)
	assert.Equal(t, 1, *commander.lastPriority)
	require.NotNil(t, commander.lastNote)
	assert.Equal(t, "kitchen", *commander.lastNote)
}

func TestDispatcher_TriggerAlertMissingKey(t *testing.T) {
	commander := &fakeCommander{triggerErr: domain.ErrMissingAlertKey}
	dsp, client := newDispatchPair(commander)

	msg := dispatchRaw(t, dsp, client, `{"type":"trigger_alert","id":"req-8","data":{}}`)

	data := errorData(t, msg)
	assert.Equal(t, "MISSING_ALERT_KEY", data.Code)
	assert.Equal(t, "req-8", data.CommandID)
}

func TestDispatcher_ClearAlertNotFound(t *testing.T) {
	commander := &fakeCommander{clearErr: domain.ErrAlertNotFound}
	dsp, client := newDispatchPair(commander)

	msg := dispatchRaw(t, dsp, client,
		`{"type":"clear_alert","id":"req-9","data":{"alert_key":"ghost"}}`)

	data := errorData(t, msg)
	assert.Equal(t, "ALERT_NOT_FOUND", data.Code)
	assert.Equal(t, "req-9", data.CommandID)
}

func TestDispatcher_ClearAllAlerts(t *testing.T) {
	commander := &fakeCommander{
		clearAllRes: &domain.BulkClearResult{
			ClearedCount: 2,
			ClearedKeys:  []string{"doorbell", "smoke_detector"},
		},
	}
	dsp, client := newDispatchPair(commander)

	msg := dispatchRaw(t, dsp, client, `{"type":"clear_all_alerts"}`)

	data := resultData(t, msg)
	require.True(t, data.Success)

	payload, err := json.Marshal(data.Result)
	require.NoError(t, err)

	var res domain.BulkClearResult
	require.NoError(t, json.Unmarshal(payload, &res))
	assert.Equal(t, 2, res.ClearedCount)
	assert.Equal(t, []string{"doorbell", "smoke_detector"}, res.ClearedKeys)
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dsp, client := newDispatchPair(&fakeCommander{})

	msg := dispatchRaw(t, dsp, client, `{"type":"reboot","id":"req-2"}`)

	data := errorData(t, msg)
	assert.Equal(t, ErrCodeUnknownCommand, data.Code)
	assert.Equal(t, "req-2", data.CommandID)
}

func TestDispatcher_MissingType(t *testing.T) {
	dsp, client := newDispatchPair(&fakeCommander{})

	msg := dispatchRaw(t, dsp, client, `{"id":"req-3"}`)

	data := errorData(t, msg)
	assert.Equal(t, ErrCodeInvalidMessage, data.Code)
	assert.Equal(t, "req-3", data.CommandID)
}

func TestDispatcher_MalformedCommandData(t *testing.T) {
	dsp, client := newDispatchPair(&fakeCommander{})

	msg := dispatchRaw(t, dsp, client,
		`{"type":"trigger_alert","id":"req-4","data":{"alert_key":42}}`)

	data := errorData(t, msg)
	assert.Equal(t, ErrCodeInvalidMessage, data.Code)
	assert.Equal(t, "req-4", data.CommandID)
}
