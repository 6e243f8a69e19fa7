package encoder

import (
	"testing"

	"github.com/beka-birhanu/tilt-maze/game"
	"github.com/beka-birhanu/tilt-maze/maze"
	"github.com/beka-birhanu/tilt-maze/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)
	assert.IsType(t, JSON{}, e)

	e, err = New("MsgPack")
	require.NoError(t, err)
	assert.IsType(t, Msgpack{}, e)

	_, err = New("protobuf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLayoutCarriesTheBoard(t *testing.T) {
	m, err := maze.New(maze.DefaultWidth, maze.DefaultHeight, maze.WithSeed(2))
	require.NoError(t, err)
	solution, err := m.Solve()
	require.NoError(t, err)

	layout := game.Layout{
		Width:    m.Width,
		Height:   m.Height,
		Walls:    m.Walls(),
		Holes:    []physics.Hole{{X: 17.5, Y: 192.5}},
		Goal:     physics.DefaultGoal(),
		Solution: solution,
		Hard:     true,
	}

	for _, e := range []game.Encoder{JSON{}, Msgpack{}} {
		b, err := e.MarshalLayout(layout)
		require.NoError(t, err)

		got, err := e.UnmarshalLayout(b)
		require.NoError(t, err)
		assert.Equal(t, layout, got)
	}
}

func TestJSONFieldNames(t *testing.T) {
	b, err := JSON{}.MarshalPositions(game.Positions{Tick: 3, Balls: []game.BallState{{ID: "p1", X: 1.5, Y: 2}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tick":3,"balls":[{"id":"p1","x":1.5,"y":2}]}`, string(b))

	b, err = JSON{}.MarshalOutcome(game.Outcome{Result: "lost", BallID: "p1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"lost","ballId":"p1"}`, string(b))
}

func TestTiltFromClients(t *testing.T) {
	a, err := JSON{}.UnmarshalTilt([]byte(`{"beta":12.5,"gamma":-3}`))
	require.NoError(t, err)
	assert.Equal(t, physics.Angles{Beta: 12.5, Gamma: -3}, a)

	_, err = JSON{}.UnmarshalTilt([]byte(`not json`))
	assert.Error(t, err)

	b, err := Msgpack{}.MarshalTilt(physics.Angles{Beta: 1, Gamma: 2})
	require.NoError(t, err)
	a, err = Msgpack{}.UnmarshalTilt(b)
	require.NoError(t, err)
	assert.Equal(t, physics.Angles{Beta: 1, Gamma: 2}, a)
}

func TestReset(t *testing.T) {
	r, err := JSON{}.UnmarshalReset([]byte(`{"hard":true}`))
	require.NoError(t, err)
	assert.True(t, r.Hard)

	b, err := Msgpack{}.MarshalReset(game.ResetRequest{Hard: true})
	require.NoError(t, err)
	r, err = Msgpack{}.UnmarshalReset(b)
	require.NoError(t, err)
	assert.True(t, r.Hard)
}
