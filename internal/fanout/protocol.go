package fanout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/charleschow/arcade-hockey/internal/events"
)

// Envelope is the wire format for events sent over the fanout WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	MatchID   string          `json:"match_id"`
	Tick      int             `json:"tick"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// SnapshotFrame is the binary (msgpack) form of a snapshot envelope, sent
// to clients that connect with ?codec=msgpack. Every other event type stays
// JSON text.
type SnapshotFrame struct {
	ID        string               `json:"id"`
	MatchID   string               `json:"match_id"`
	Tick      int                  `json:"tick"`
	Timestamp time.Time            `json:"ts"`
	Snapshot  events.SnapshotEvent `json:"snapshot"`
}

// Inbound message types a connected browser may send.
const (
	MsgCommand = "command"
	MsgAction  = "action"
)

// ClientMessage is anything a connected client sends upstream.
// Command is kept raw so the command package owns its decoding.
type ClientMessage struct {
	Type     string          `json:"type"`
	Command  json.RawMessage `json:"command,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	Action   string          `json:"action,omitempty"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		MatchID:   evt.MatchID,
		Tick:      evt.Tick,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	return json.Marshal(env)
}

// UnmarshalEvent deserializes a JSON Envelope back into a typed Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		MatchID:   env.MatchID,
		Tick:      env.Tick,
		Timestamp: env.Timestamp,
	}

	var err error
	switch evt.Type {
	case events.EventSnapshot:
		evt.Payload, err = decodePayload[events.SnapshotEvent](env.Payload)
	case events.EventPeriodStart, events.EventOvertime:
		evt.Payload, err = decodePayload[events.PeriodEvent](env.Payload)
	case events.EventPuckPop:
		evt.Payload, err = decodePayload[events.PuckPopEvent](env.Payload)
	case events.EventFinal:
		evt.Payload, err = decodePayload[events.FinalEvent](env.Payload)
	case events.EventInjury:
		evt.Payload, err = decodePayload[events.InjuryEvent](env.Payload)
	case events.EventXP:
		evt.Payload, err = decodePayload[events.XPEvent](env.Payload)
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}
	if err != nil {
		return evt, fmt.Errorf("unmarshal %s: %w", env.Type, err)
	}
	return evt, nil
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

// MarshalSnapshotFrame encodes a snapshot event as msgpack. Field names
// follow the JSON tags so both codecs share one vocabulary.
func MarshalSnapshotFrame(evt events.Event) ([]byte, error) {
	snap, ok := evt.Payload.(events.SnapshotEvent)
	if !ok {
		return nil, fmt.Errorf("snapshot frame: payload is %T", evt.Payload)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	err := enc.Encode(SnapshotFrame{
		ID:        evt.ID,
		MatchID:   evt.MatchID,
		Tick:      evt.Tick,
		Timestamp: evt.Timestamp,
		Snapshot:  snap,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot frame: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalSnapshotFrame decodes a binary frame back into a snapshot Event.
func UnmarshalSnapshotFrame(data []byte) (events.Event, error) {
	var f SnapshotFrame
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&f); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal snapshot frame: %w", err)
	}
	return events.Event{
		ID:        f.ID,
		Type:      events.EventSnapshot,
		MatchID:   f.MatchID,
		Tick:      f.Tick,
		Timestamp: f.Timestamp,
		Payload:   f.Snapshot,
	}, nil
}
