package encoder

import (
	"github.com/beka-birhanu/tilt-maze/game"
	"github.com/beka-birhanu/tilt-maze/physics"
	"github.com/vmihailenco/msgpack/v5"
)

var _ game.Encoder = Msgpack{}

// Msgpack encodes records as MessagePack maps keyed by the msgpack struct tags.
type Msgpack struct{}

// MarshalLayout implements game.Encoder.
func (Msgpack) MarshalLayout(l game.Layout) ([]byte, error) {
	return msgpack.Marshal(l)
}

// UnmarshalLayout implements game.Encoder.
func (Msgpack) UnmarshalLayout(b []byte) (game.Layout, error) {
	return decodeMsgpack[game.Layout](b)
}

// MarshalPositions implements game.Encoder.
func (Msgpack) MarshalPositions(p game.Positions) ([]byte, error) {
	return msgpack.Marshal(p)
}

// UnmarshalPositions implements game.Encoder.
func (Msgpack) UnmarshalPositions(b []byte) (game.Positions, error) {
	return decodeMsgpack[game.Positions](b)
}

// MarshalOutcome implements game.Encoder.
func (Msgpack) MarshalOutcome(o game.Outcome) ([]byte, error) {
	return msgpack.Marshal(o)
}

// UnmarshalOutcome implements game.Encoder.
func (Msgpack) UnmarshalOutcome(b []byte) (game.Outcome, error) {
	return decodeMsgpack[game.Outcome](b)
}

// MarshalTilt implements game.Encoder.
func (Msgpack) MarshalTilt(a physics.Angles) ([]byte, error) {
	return msgpack.Marshal(a)
}

// UnmarshalTilt implements game.Encoder.
func (Msgpack) UnmarshalTilt(b []byte) (physics.Angles, error) {
	return decodeMsgpack[physics.Angles](b)
}

// MarshalReset implements game.Encoder.
func (Msgpack) MarshalReset(r game.ResetRequest) ([]byte, error) {
	return msgpack.Marshal(r)
}

// UnmarshalReset implements game.Encoder.
func (Msgpack) UnmarshalReset(b []byte) (game.ResetRequest, error) {
	return decodeMsgpack[game.ResetRequest](b)
}

func decodeMsgpack[T any](b []byte) (T, error) {
	var v T
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
