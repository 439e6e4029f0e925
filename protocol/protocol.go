package protocol

import (
	"encoding/json"
	"fmt"
)

// Message kinds sent by the server.
const (
	RequestNickname = "request_nickname"
	Wait            = "wait"
	Start           = "start"
	GameState       = "game_state"
	MoveValid       = "move_valid"
	MoveInvalid     = "move_invalid"
	Results         = "results"
)

// Message kinds sent by the client. NewGame and Leave are reserved: the
// server accepts them but defines no behavior.
const (
	SendNickname = "send_nickname"
	Move         = "move"
	NewGame      = "new_game"
	Leave        = "leave"
)

// Envelope is the tagged wrapper for every message in both directions.
// Data is kept raw so each handler decodes only the payload it expects.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope wraps a payload value under the given message kind. A nil
// payload produces an envelope with no data, e.g. for MOVE_VALID.
func NewEnvelope(kind string, payload any) (Envelope, error) {
	env := Envelope{Type: kind}
	if payload == nil {
		return env, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	env.Data = data
	return env, nil
}

// Decode unmarshals the envelope's payload into out.
func (e Envelope) Decode(out any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s envelope has no payload", e.Type)
	}
	return json.Unmarshal(e.Data, out)
}
