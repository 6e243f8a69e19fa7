package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/tilt-maze/game"
	"github.com/beka-birhanu/tilt-maze/physics"
	"github.com/beka-birhanu/tilt-maze/service/i"
	"github.com/google/uuid"
)

const recordWinTimeout = 2 * time.Second

var (
	ErrNoSession   = errors.New("player does not have a game session")
	ErrNoPlayers   = errors.New("a session needs at least one player")
	ErrNoTransport = errors.New("at least one socket is required")
)

type session struct {
	game        *game.Game
	connections map[uuid.UUID]int // open sockets per player
}

// GameSessionManager owns every running world. It authenticates socket clients,
// routes their records into the right game and broadcasts the game's updates back.
type GameSessionManager struct {
	ws              i.ServerSocketManager
	udp             i.ServerSocketManager
	sessions        map[uuid.UUID]*session
	playerToSession map[uuid.UUID]uuid.UUID
	mazeFactory     game.MazeFactory
	encoder         game.Encoder
	tokenizer       i.Tokenizer
	userRepo        i.UserRepo
	logger          i.Logger
	tickRate        time.Duration
	sync.RWMutex
}

// Config holds the dependencies of a GameSessionManager. Either socket may be nil.
type Config struct {
	WS          i.ServerSocketManager
	UDP         i.ServerSocketManager
	MazeFactory game.MazeFactory
	Encoder     game.Encoder
	Tokenizer   i.Tokenizer
	UserRepo    i.UserRepo
	Logger      i.Logger
	TickRate    time.Duration
}

// NewGameSessionManager wires the manager into the given sockets.
func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.WS == nil && c.UDP == nil {
		return nil, ErrNoTransport
	}
	if c.Encoder == nil || c.Tokenizer == nil || c.Logger == nil {
		return nil, errors.New("encoder, tokenizer and logger are required")
	}
	if c.MazeFactory == nil {
		c.MazeFactory = game.DefaultMazeFactory
	}

	gsm := &GameSessionManager{
		ws:              c.WS,
		udp:             c.UDP,
		mazeFactory:     c.MazeFactory,
		encoder:         c.Encoder,
		tokenizer:       c.Tokenizer,
		userRepo:        c.UserRepo,
		logger:          c.Logger,
		tickRate:        c.TickRate,
		sessions:        make(map[uuid.UUID]*session),
		playerToSession: make(map[uuid.UUID]uuid.UUID),
	}

	for _, socket := range gsm.sockets() {
		socket.SetClientRequestHandler(gsm.writePlayerRequest)
		socket.SetClientRegisterHandler(gsm.playerConnected)
		socket.SetClientLeaveHandler(gsm.playerDisconnected)
		socket.SetClientAuthenticator(gsm)
	}
	return gsm, nil
}

// NewSession starts a new world shared by the given players. Players that are
// still in another world are moved out of it first.
func (g *GameSessionManager) NewSession(playerIDs []uuid.UUID) {
	if _, err := g.newSession(playerIDs); err != nil {
		g.logger.Error(fmt.Sprintf("starting game for players %v: %s", playerIDs, err))
	}
}

func (g *GameSessionManager) newSession(playerIDs []uuid.UUID) (uuid.UUID, error) {
	if len(playerIDs) == 0 {
		return uuid.Nil, ErrNoPlayers
	}
	if len(playerIDs) > game.MaxPlayers {
		return uuid.Nil, game.ErrTooManyPlayers
	}

	world, err := game.NewWorld(g.mazeFactory, false)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating world: %w", err)
	}

	gameServer, err := game.New(game.Config{
		World:     world,
		Encoder:   g.encoder,
		Logger:    g.logger,
		TickRate:  g.tickRate,
		OnOutcome: g.recordOutcome,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating game: %w", err)
	}

	for _, id := range playerIDs {
		g.detach(id)
	}

	go gameServer.Start()
	for _, id := range playerIDs {
		if err := gameServer.Join(id); err != nil {
			gameServer.Stop()
			return uuid.Nil, fmt.Errorf("joining %s: %w", id, err)
		}
	}

	g.saveSession(playerIDs, gameServer)
	go g.listenGameChan(gameServer)
	g.logger.Info(fmt.Sprintf("started game %s for players: %v", gameServer.ID, playerIDs))
	return gameServer.ID, nil
}

// SessionInfo returns where the player's world can be reached.
func (g *GameSessionManager) SessionInfo(_ context.Context, playerID uuid.UUID) (i.SessionInfo, error) {
	g.RLock()
	defer g.RUnlock()
	sessionID, ok := g.playerToSession[playerID]
	if !ok {
		return i.SessionInfo{}, ErrNoSession
	}

	info := i.SessionInfo{SessionID: sessionID}
	if g.ws != nil {
		info.WSPath = g.ws.GetAddr()
	}
	if g.udp != nil {
		info.UDPAddr = g.udp.GetAddr()
	}
	return info, nil
}

// Authenticate accepts a signed token whose user is in a running world.
func (g *GameSessionManager) Authenticate(token []byte) (uuid.UUID, error) {
	claims, err := g.tokenizer.Decode(string(token))
	if err != nil {
		g.logger.Warning(fmt.Sprintf("invalid token provided: %s", err))
		return uuid.Nil, errors.New("invalid token")
	}
	id, err := UserIDFromClaims(claims)
	if err != nil {
		g.logger.Warning(fmt.Sprintf("invalid token provided: %s", err))
		return uuid.Nil, errors.New("invalid token")
	}

	g.RLock()
	defer g.RUnlock()
	if _, ok := g.playerToSession[id]; !ok {
		g.logger.Warning(fmt.Sprintf("player %s does not have a game session", id))
		return uuid.Nil, ErrNoSession
	}

	g.logger.Info(fmt.Sprintf("authenticated player: %s", id))
	return id, nil
}

// StopAll stops every running game.
func (g *GameSessionManager) StopAll() {
	g.RLock()
	games := make([]*game.Game, 0, len(g.sessions))
	for _, s := range g.sessions {
		games = append(games, s.game)
	}
	g.RUnlock()

	for _, gs := range games {
		gs.Stop()
	}
}

func (g *GameSessionManager) sockets() []i.ServerSocketManager {
	var sockets []i.ServerSocketManager
	if g.ws != nil {
		sockets = append(sockets, g.ws)
	}
	if g.udp != nil {
		sockets = append(sockets, g.udp)
	}
	return sockets
}

func (g *GameSessionManager) saveSession(players []uuid.UUID, gs *game.Game) {
	g.Lock()
	defer g.Unlock()

	s := &session{game: gs, connections: make(map[uuid.UUID]int)}
	for _, player := range players {
		s.connections[player] = 0
		g.playerToSession[player] = gs.ID
	}
	g.sessions[gs.ID] = s
}

func (g *GameSessionManager) players(sessionID uuid.UUID) []uuid.UUID {
	g.RLock()
	defer g.RUnlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return nil
	}
	players := make([]uuid.UUID, 0, len(s.connections))
	for id := range s.connections {
		players = append(players, id)
	}
	return players
}

func (g *GameSessionManager) broadcast(players []uuid.UUID, u game.Update) {
	for _, socket := range g.sockets() {
		socket.BroadcastToClients(players, u.Type, u.Payload)
	}
}

func (g *GameSessionManager) listenGameChan(gs *game.Game) {
	stateChan := gs.StateChan
	for {
		select {
		case u, ok := <-stateChan:
			if !ok {
				stateChan = nil
				continue
			}
			g.broadcast(g.players(gs.ID), u)
		case u, ok := <-gs.EndChan:
			if ok {
				g.broadcast(g.players(gs.ID), u)
			}
			g.clean(gs.ID)
			return
		}
	}
}

func (g *GameSessionManager) writePlayerRequest(pID uuid.UUID, actionType byte, payload []byte) {
	gs, ok := g.gameOf(pID)
	if !ok {
		g.logger.Warning(fmt.Sprintf("received request for player without session: %s", pID))
		return
	}

	if err := gs.Submit(game.Action{PlayerID: pID, Type: actionType, Payload: payload}); err != nil {
		g.logger.Warning(fmt.Sprintf("dropping request of %s: %s", pID, err))
	}
}

func (g *GameSessionManager) playerConnected(pID uuid.UUID) {
	g.Lock()
	s, ok := g.sessionOf(pID)
	if ok {
		s.connections[pID]++
	}
	g.Unlock()
	if !ok {
		return
	}

	// New connections need the layout they missed.
	if err := s.game.Submit(game.Action{PlayerID: pID, Type: game.StateRequestActionType}); err != nil {
		g.logger.Warning(fmt.Sprintf("sending state to %s: %s", pID, err))
	}
}

// playerDisconnected removes the player's ball once their last socket is gone.
func (g *GameSessionManager) playerDisconnected(pID uuid.UUID) {
	g.Lock()
	s, ok := g.sessionOf(pID)
	if !ok {
		g.Unlock()
		return
	}
	if s.connections[pID] > 1 {
		s.connections[pID]--
		g.Unlock()
		return
	}
	g.Unlock()

	g.detach(pID)
}

// detach takes the player out of their world and stops the world once it is empty.
func (g *GameSessionManager) detach(pID uuid.UUID) {
	g.Lock()
	s, ok := g.sessionOf(pID)
	if !ok {
		g.Unlock()
		return
	}
	delete(s.connections, pID)
	delete(g.playerToSession, pID)
	empty := len(s.connections) == 0
	g.Unlock()

	s.game.Leave(pID)
	g.logger.Info(fmt.Sprintf("player %s left game %s", pID, s.game.ID))
	if empty {
		go s.game.Stop()
	}
}

// sessionOf must be called with the lock held.
func (g *GameSessionManager) sessionOf(pID uuid.UUID) (*session, bool) {
	sessionID, ok := g.playerToSession[pID]
	if !ok {
		return nil, false
	}
	s, ok := g.sessions[sessionID]
	return s, ok
}

func (g *GameSessionManager) gameOf(pID uuid.UUID) (*game.Game, bool) {
	g.RLock()
	defer g.RUnlock()
	s, ok := g.sessionOf(pID)
	if !ok {
		return nil, false
	}
	return s.game, true
}

// recordOutcome runs on the game loop, so the write happens in the background.
func (g *GameSessionManager) recordOutcome(o game.Outcome) {
	if o.Result != physics.Won.String() || o.PlayerID == "" || g.userRepo == nil {
		return
	}
	id, err := uuid.Parse(o.PlayerID)
	if err != nil {
		g.logger.Warning(fmt.Sprintf("winner is not a player id: %s", o.PlayerID))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordWinTimeout)
		defer cancel()
		if err := g.userRepo.RecordWin(ctx, id); err != nil {
			g.logger.Error(fmt.Sprintf("recording win of %s: %s", id, err))
		}
	}()
}

func (g *GameSessionManager) clean(sessionID uuid.UUID) {
	g.Lock()
	defer g.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return
	}
	for pID := range s.connections {
		delete(g.playerToSession, pID)
	}

	delete(g.sessions, sessionID)
	g.logger.Info(fmt.Sprintf("game %s cleaned up", sessionID))
}
