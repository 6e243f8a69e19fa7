package game

import (
	"github.com/beka-birhanu/tilt-maze/maze"
	"github.com/beka-birhanu/tilt-maze/physics"
)

// Record types of inbound player actions.
const (
	TiltActionType         byte = 1
	StateRequestActionType byte = 2
	WinActionType          byte = 4
	ResetActionType        byte = 8
)

// Record types of outbound updates.
const (
	LayoutRecordType    byte = 10
	PositionsRecordType byte = 11
	OutcomeRecordType   byte = 12
	GameEndedRecordType byte = 13
)

// Layout is the static part of a round.
type Layout struct {
	Width    int                 `json:"width" msgpack:"width"`
	Height   int                 `json:"height" msgpack:"height"`
	Walls    []maze.Wall         `json:"walls" msgpack:"walls"`
	Holes    []physics.Hole      `json:"holes,omitempty" msgpack:"holes,omitempty"`
	Goal     physics.Goal        `json:"goal" msgpack:"goal"`
	Solution []maze.CellPosition `json:"solution,omitempty" msgpack:"solution,omitempty"`
	Hard     bool                `json:"hard" msgpack:"hard"`
}

// BallState is a ball as seen by clients.
type BallState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
}

// Positions is sent after every committed tick.
type Positions struct {
	Tick  uint64      `json:"tick" msgpack:"tick"`
	Balls []BallState `json:"balls" msgpack:"balls"`
}

// Outcome ends a round. BallID is set on a loss, PlayerID on a reported win.
type Outcome struct {
	Result   string `json:"result" msgpack:"result"`
	BallID   string `json:"ballId,omitempty" msgpack:"ballId,omitempty"`
	PlayerID string `json:"playerId,omitempty" msgpack:"playerId,omitempty"`
}

// ResetRequest starts a new round.
type ResetRequest struct {
	Hard bool `json:"hard" msgpack:"hard"`
}

// Encoder serializes game records for the wire.
type Encoder interface {
	MarshalLayout(Layout) ([]byte, error)
	UnmarshalLayout([]byte) (Layout, error)
	MarshalPositions(Positions) ([]byte, error)
	UnmarshalPositions([]byte) (Positions, error)
	MarshalOutcome(Outcome) ([]byte, error)
	UnmarshalOutcome([]byte) (Outcome, error)
	MarshalTilt(physics.Angles) ([]byte, error)
	UnmarshalTilt([]byte) (physics.Angles, error)
	MarshalReset(ResetRequest) ([]byte, error)
	UnmarshalReset([]byte) (ResetRequest, error)
}
