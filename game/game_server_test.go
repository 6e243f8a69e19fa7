package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/beka-birhanu/tilt-maze/maze"
	"github.com/beka-birhanu/tilt-maze/physics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

// jsonEncoder mirrors the JSON wire format without importing it.
type jsonEncoder struct{}

func (jsonEncoder) MarshalLayout(l Layout) ([]byte, error)       { return json.Marshal(l) }
func (jsonEncoder) MarshalPositions(p Positions) ([]byte, error) { return json.Marshal(p) }
func (jsonEncoder) MarshalOutcome(o Outcome) ([]byte, error)     { return json.Marshal(o) }
func (jsonEncoder) MarshalTilt(a physics.Angles) ([]byte, error) { return json.Marshal(a) }
func (jsonEncoder) MarshalReset(r ResetRequest) ([]byte, error)  { return json.Marshal(r) }

func (jsonEncoder) UnmarshalLayout(b []byte) (Layout, error) {
	var v Layout
	return v, json.Unmarshal(b, &v)
}

func (jsonEncoder) UnmarshalPositions(b []byte) (Positions, error) {
	var v Positions
	return v, json.Unmarshal(b, &v)
}

func (jsonEncoder) UnmarshalOutcome(b []byte) (Outcome, error) {
	var v Outcome
	return v, json.Unmarshal(b, &v)
}

func (jsonEncoder) UnmarshalTilt(b []byte) (physics.Angles, error) {
	var v physics.Angles
	return v, json.Unmarshal(b, &v)
}

func (jsonEncoder) UnmarshalReset(b []byte) (ResetRequest, error) {
	var v ResetRequest
	return v, json.Unmarshal(b, &v)
}

func newTestGame(t *testing.T, w *World, tick time.Duration, onOutcome func(Outcome)) *Game {
	t.Helper()
	g, err := New(Config{World: w, Encoder: jsonEncoder{}, Logger: nopLogger{}, TickRate: tick, OnOutcome: onOutcome})
	require.NoError(t, err)
	go g.Start()
	t.Cleanup(g.Stop)
	return g
}

// waitFor drains updates until one of the given type arrives.
func waitFor(t *testing.T, g *Game, recordType byte) Update {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-g.StateChan:
			require.True(t, ok, "state channel closed")
			if u.Type == recordType {
				return u
			}
		case <-timeout:
			t.Fatalf("no record of type %d", recordType)
		}
	}
}

func TestNewGameValidation(t *testing.T) {
	_, err := New(Config{Encoder: jsonEncoder{}, Logger: nopLogger{}})
	assert.Error(t, err)
}

func TestGameJoinLeave(t *testing.T) {
	w, err := NewWorld(openFactory, false)
	require.NoError(t, err)
	g := newTestGame(t, w, time.Hour, nil)

	waitFor(t, g, LayoutRecordType)

	players := make([]uuid.UUID, MaxPlayers)
	for i := range players {
		players[i] = uuid.New()
		require.NoError(t, g.Join(players[i]))
		waitFor(t, g, LayoutRecordType)
		waitFor(t, g, PositionsRecordType)
	}
	assert.ErrorIs(t, g.Join(uuid.New()), ErrTooManyPlayers)

	g.Leave(players[0])
	u := waitFor(t, g, PositionsRecordType)
	var p Positions
	require.NoError(t, json.Unmarshal(u.Payload, &p))
	assert.Len(t, p.Balls, MaxPlayers-1)

	require.NoError(t, g.Join(uuid.New()), "freed slot is reused")
}

func TestGameTicks(t *testing.T) {
	w, err := NewWorld(openFactory, false)
	require.NoError(t, err)
	g := newTestGame(t, w, 2*time.Millisecond, nil)

	id := uuid.New()
	require.NoError(t, g.Join(id))

	tilt, err := json.Marshal(physics.Angles{Beta: 0, Gamma: 30})
	require.NoError(t, err)
	require.NoError(t, g.Submit(Action{PlayerID: id, Type: TiltActionType, Payload: tilt}))

	spawnX, _ := maze.CellCenter(SpawnCells[0])
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-g.StateChan:
			if u.Type != PositionsRecordType {
				continue
			}
			var p Positions
			require.NoError(t, json.Unmarshal(u.Payload, &p))
			if len(p.Balls) == 1 && p.Balls[0].X > spawnX+1 {
				return
			}
		case <-deadline:
			t.Fatal("ball never rolled")
		}
	}
}

func TestGameLossAndReset(t *testing.T) {
	w, err := NewWorld(openFactory, true)
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, w.AddBall(id.String()))
	hole := safeHoles()[0]
	w.balls[0].X, w.balls[0].Y = hole.X, hole.Y

	outcomes := make(chan Outcome, 1)
	g := newTestGame(t, w, 2*time.Millisecond, func(o Outcome) { outcomes <- o })

	u := waitFor(t, g, OutcomeRecordType)
	var o Outcome
	require.NoError(t, json.Unmarshal(u.Payload, &o))
	assert.Equal(t, Outcome{Result: "lost", BallID: id.String()}, o)
	assert.Equal(t, o, <-outcomes)

	reset, err := json.Marshal(ResetRequest{Hard: false})
	require.NoError(t, err)
	require.NoError(t, g.Submit(Action{PlayerID: id, Type: ResetActionType, Payload: reset}))

	u = waitFor(t, g, LayoutRecordType)
	var l Layout
	require.NoError(t, json.Unmarshal(u.Payload, &l))
	assert.False(t, l.Hard)
	assert.Empty(t, l.Holes)

	waitFor(t, g, PositionsRecordType)
}

func TestGameWinReport(t *testing.T) {
	w, err := NewWorld(openFactory, false)
	require.NoError(t, err)

	winner, loser := uuid.New(), uuid.New()
	require.NoError(t, w.AddBall(winner.String()))
	require.NoError(t, w.AddBall(loser.String()))
	w.balls[0].X, w.balls[0].Y = physics.GoalX, physics.GoalY

	g := newTestGame(t, w, time.Hour, nil)
	waitFor(t, g, LayoutRecordType)

	// A report from a ball outside the goal is ignored.
	require.NoError(t, g.Submit(Action{PlayerID: loser, Type: WinActionType}))
	require.NoError(t, g.Submit(Action{PlayerID: loser, Type: StateRequestActionType}))
	u := <-g.StateChan
	assert.Equal(t, LayoutRecordType, u.Type)

	require.NoError(t, g.Submit(Action{PlayerID: winner, Type: WinActionType}))
	u = waitFor(t, g, OutcomeRecordType)
	var o Outcome
	require.NoError(t, json.Unmarshal(u.Payload, &o))
	assert.Equal(t, Outcome{Result: "won", PlayerID: winner.String()}, o)
}

func TestGameStop(t *testing.T) {
	w, err := NewWorld(openFactory, false)
	require.NoError(t, err)
	g, err := New(Config{World: w, Encoder: jsonEncoder{}, Logger: nopLogger{}, TickRate: time.Hour})
	require.NoError(t, err)
	go g.Start()

	g.Stop()
	g.Stop()

	end, ok := <-g.EndChan
	require.True(t, ok)
	assert.Equal(t, GameEndedRecordType, end.Type)

	for range g.StateChan {
	}
	assert.ErrorIs(t, g.Join(uuid.New()), ErrGameStopped)
}
