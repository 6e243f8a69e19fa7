package encoder

import (
	"encoding/json"

	"github.com/beka-birhanu/tilt-maze/game"
	"github.com/beka-birhanu/tilt-maze/physics"
)

var _ game.Encoder = JSON{}

// JSON encodes records as JSON objects.
type JSON struct{}

// MarshalLayout implements game.Encoder.
func (JSON) MarshalLayout(l game.Layout) ([]byte, error) {
	return json.Marshal(l)
}

// UnmarshalLayout implements game.Encoder.
func (JSON) UnmarshalLayout(b []byte) (game.Layout, error) {
	return decodeJSON[game.Layout](b)
}

// MarshalPositions implements game.Encoder.
func (JSON) MarshalPositions(p game.Positions) ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPositions implements game.Encoder.
func (JSON) UnmarshalPositions(b []byte) (game.Positions, error) {
	return decodeJSON[game.Positions](b)
}

// MarshalOutcome implements game.Encoder.
func (JSON) MarshalOutcome(o game.Outcome) ([]byte, error) {
	return json.Marshal(o)
}

// UnmarshalOutcome implements game.Encoder.
func (JSON) UnmarshalOutcome(b []byte) (game.Outcome, error) {
	return decodeJSON[game.Outcome](b)
}

// MarshalTilt implements game.Encoder.
func (JSON) MarshalTilt(a physics.Angles) ([]byte, error) {
	return json.Marshal(a)
}

// UnmarshalTilt implements game.Encoder.
func (JSON) UnmarshalTilt(b []byte) (physics.Angles, error) {
	return decodeJSON[physics.Angles](b)
}

// MarshalReset implements game.Encoder.
func (JSON) MarshalReset(r game.ResetRequest) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalReset implements game.Encoder.
func (JSON) UnmarshalReset(b []byte) (game.ResetRequest, error) {
	return decodeJSON[game.ResetRequest](b)
}

func decodeJSON[T any](b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}
