package game

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/beka-birhanu/tilt-maze/physics"
	"github.com/beka-birhanu/tilt-maze/service/i"
	"github.com/google/uuid"
)

var ErrGameStopped = errors.New("game stopped")

const (
	defaultTickRate = time.Second / 60

	updateBuffer = 64
	actionBuffer = 64
)

// Action is a record sent by a player.
type Action struct {
	PlayerID uuid.UUID
	Type     byte
	Payload  []byte
}

// Update is an encoded record for the players of a game.
type Update struct {
	Type    byte
	Payload []byte
}

type joinRequest struct {
	id    uuid.UUID
	reply chan error
}

// Config configures a Game.
type Config struct {
	World     *World
	Encoder   Encoder
	Logger    i.Logger
	TickRate  time.Duration // defaults to 60 ticks per second
	OnOutcome func(Outcome) // called from the game loop once per finished round
}

// Game runs the authoritative simulation of one shared world.
//
// All state is owned by the goroutine running Start. Players talk to it through
// ActionChan, Join and Leave; encoded updates come out of StateChan, and a single
// game-ended record comes out of EndChan once Stop is called.
type Game struct {
	ID uuid.UUID

	world     *World
	encoder   Encoder
	logger    i.Logger
	tickRate  time.Duration
	onOutcome func(Outcome)

	tilts    map[uuid.UUID]physics.Angles // latest report per player
	running  bool
	lastTick time.Time
	tick     uint64

	StateChan  chan Update
	EndChan    chan Update
	ActionChan chan Action
	joins      chan joinRequest
	leaves     chan uuid.UUID
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

// New creates a game around a world. Call Start to run it.
func New(c Config) (*Game, error) {
	if c.World == nil || c.Encoder == nil || c.Logger == nil {
		return nil, errors.New("game: world, encoder and logger are required")
	}
	if c.TickRate <= 0 {
		c.TickRate = defaultTickRate
	}

	return &Game{
		ID:         uuid.New(),
		world:      c.World,
		encoder:    c.Encoder,
		logger:     c.Logger,
		tickRate:   c.TickRate,
		onOutcome:  c.OnOutcome,
		tilts:      make(map[uuid.UUID]physics.Angles),
		running:    true,
		StateChan:  make(chan Update, updateBuffer),
		EndChan:    make(chan Update, 1),
		ActionChan: make(chan Action, actionBuffer),
		joins:      make(chan joinRequest),
		leaves:     make(chan uuid.UUID),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

// Start runs the game loop until Stop is called.
func (g *Game) Start() {
	defer close(g.done)

	ticker := time.NewTicker(g.tickRate)
	defer ticker.Stop()

	g.broadcastLayout()
	for {
		var tickC <-chan time.Time
		if g.running {
			tickC = ticker.C
		}

		select {
		case <-g.stop:
			g.end()
			return
		case a := <-g.ActionChan:
			g.handleAction(a)
		case req := <-g.joins:
			req.reply <- g.handleJoin(req.id)
		case id := <-g.leaves:
			g.handleLeave(id)
		case now := <-tickC:
			g.step(now)
		}
	}
}

// Stop ends the game and waits for the loop to exit. It is safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
	<-g.done
}

// Submit hands a player action to the loop.
func (g *Game) Submit(a Action) error {
	select {
	case g.ActionChan <- a:
		return nil
	case <-g.stop:
		return ErrGameStopped
	}
}

// Join adds a ball for the player on the lowest free spawn slot.
func (g *Game) Join(id uuid.UUID) error {
	reply := make(chan error, 1)
	select {
	case g.joins <- joinRequest{id: id, reply: reply}:
	case <-g.stop:
		return ErrGameStopped
	}
	return <-reply
}

// Leave removes the player's ball; the mean tilt is taken over whoever remains.
func (g *Game) Leave(id uuid.UUID) {
	select {
	case g.leaves <- id:
	case <-g.stop:
	}
}

func (g *Game) handleJoin(id uuid.UUID) error {
	if err := g.world.AddBall(id.String()); err != nil {
		return err
	}
	g.logger.Info(fmt.Sprintf("player %s joined game %s", id, g.ID))
	g.broadcastLayout()
	g.broadcastPositions()
	return nil
}

func (g *Game) handleLeave(id uuid.UUID) {
	delete(g.tilts, id)
	if err := g.world.RemoveBall(id.String()); err != nil {
		return
	}
	g.logger.Info(fmt.Sprintf("player %s left game %s", id, g.ID))
	g.broadcastPositions()
}

// handleAction processes incoming actions based on their type.
func (g *Game) handleAction(a Action) {
	switch a.Type {
	case TiltActionType:
		angles, err := g.encoder.UnmarshalTilt(a.Payload)
		if err != nil || !angles.Valid() {
			g.logger.Warning(fmt.Sprintf("invalid tilt from %s, treating it as level", a.PlayerID))
			angles = physics.Angles{}
		}
		g.tilts[a.PlayerID] = angles
	case StateRequestActionType:
		g.broadcastLayout()
		g.broadcastPositions()
	case WinActionType:
		g.handleWinReport(a.PlayerID)
	case ResetActionType:
		var req ResetRequest
		if len(a.Payload) > 0 {
			var err error
			if req, err = g.encoder.UnmarshalReset(a.Payload); err != nil {
				g.logger.Warning(fmt.Sprintf("invalid reset from %s: %s", a.PlayerID, err))
				return
			}
		}
		g.reset(req.Hard)
	default:
		g.logger.Warning(fmt.Sprintf("unknown action type %d from %s", a.Type, a.PlayerID))
	}
}

func (g *Game) handleWinReport(id uuid.UUID) {
	if !g.running {
		return
	}
	if !g.world.InGoalRegion(id.String()) {
		g.logger.Warning(fmt.Sprintf("win report from %s whose ball is not in the goal", id))
		return
	}
	g.finish(Outcome{Result: physics.Won.String(), PlayerID: id.String()})
}

func (g *Game) reset(hard bool) {
	if err := g.world.Reset(hard); err != nil {
		g.logger.Error(fmt.Sprintf("resetting game %s: %s", g.ID, err))
		return
	}
	clear(g.tilts)
	g.running = true
	g.lastTick = time.Time{}
	g.broadcastLayout()
	g.broadcastPositions()
}

// step runs one tick. The first tick after a (re)start only records the time.
func (g *Game) step(now time.Time) {
	if g.lastTick.IsZero() {
		g.lastTick = now
		return
	}
	dt := physics.FrameDelta(float64(now.Sub(g.lastTick)) / float64(time.Millisecond))
	g.lastTick = now

	res := g.world.Step(g.meanTilt(), dt)
	g.tick++
	if res.Outcome == physics.Lost {
		g.finish(Outcome{Result: physics.Lost.String(), BallID: res.BallID})
		return
	}
	g.broadcastPositions()
}

// meanTilt averages the players' reports in player order.
func (g *Game) meanTilt() physics.Tilt {
	ids := slices.SortedFunc(maps.Keys(g.tilts), func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	reports := make([]physics.Angles, 0, len(ids))
	for _, id := range ids {
		reports = append(reports, g.tilts[id])
	}
	mean := physics.MeanAngles(reports)
	return physics.FromAngles(mean.Beta, mean.Gamma)
}

// finish halts ticking until the next reset and announces the outcome once.
func (g *Game) finish(o Outcome) {
	g.running = false
	g.lastTick = time.Time{}
	g.logger.Info(fmt.Sprintf("game %s round ended: %s", g.ID, o.Result))

	payload, err := g.encoder.MarshalOutcome(o)
	if err != nil {
		g.logger.Error(fmt.Sprintf("encoding outcome: %s", err))
	} else {
		g.publish(Update{Type: OutcomeRecordType, Payload: payload})
	}
	if g.onOutcome != nil {
		g.onOutcome(o)
	}
}

func (g *Game) broadcastLayout() {
	payload, err := g.encoder.MarshalLayout(g.world.Layout())
	if err != nil {
		g.logger.Error(fmt.Sprintf("encoding layout: %s", err))
		return
	}
	g.publish(Update{Type: LayoutRecordType, Payload: payload})
}

func (g *Game) broadcastPositions() {
	payload, err := g.encoder.MarshalPositions(g.world.Positions(g.tick))
	if err != nil {
		g.logger.Error(fmt.Sprintf("encoding positions: %s", err))
		return
	}
	g.publish(Update{Type: PositionsRecordType, Payload: payload})
}

// publish blocks until the update is taken or the game is stopped.
func (g *Game) publish(u Update) {
	select {
	case g.StateChan <- u:
	case <-g.stop:
	}
}

// end sends the final positions on EndChan and closes the outbound channels.
func (g *Game) end() {
	payload, err := g.encoder.MarshalPositions(g.world.Positions(g.tick))
	if err != nil {
		g.logger.Error(fmt.Sprintf("encoding final positions: %s", err))
	}
	g.EndChan <- Update{Type: GameEndedRecordType, Payload: payload}
	close(g.StateChan)
	close(g.EndChan)
	g.logger.Info(fmt.Sprintf("game %s stopped", g.ID))
}
