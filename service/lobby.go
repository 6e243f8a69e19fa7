package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/tilt-maze/game"
	"github.com/beka-birhanu/tilt-maze/service/i"
	"github.com/google/uuid"
)

const (
	defaultPrefix    = "lobby"
	defaultBatchSize = 1
	queueKeyFmt      = "%s:queue"
)

var ErrInvalidBatchSize = errors.New("batch size must be between 1 and the player limit")

type handlerFunc func(IDs []uuid.UUID)

// LobbyOptions configures a Lobby.
type LobbyOptions struct {
	Prefix    string
	Handler   handlerFunc
	BatchSize int64
}

// Lobby queues players first come first served and hands every full batch to the
// match handler.
type Lobby struct {
	sortedQueue i.SortedQueue
	logger      i.Logger
	opts        *LobbyOptions
	now         func() time.Time
}

// NewLobby creates a lobby over a shared sorted queue.
func NewLobby(sortedQueue i.SortedQueue, logger i.Logger, opts *LobbyOptions) (*Lobby, error) {
	if opts == nil {
		opts = &LobbyOptions{}
	}

	if opts.BatchSize == 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.BatchSize < 0 || opts.BatchSize > game.MaxPlayers {
		return nil, ErrInvalidBatchSize
	}

	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}

	return &Lobby{
		opts:        opts,
		sortedQueue: sortedQueue,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Enqueue adds the player to the queue and tries to form a batch.
func (l *Lobby) Enqueue(ctx context.Context, id uuid.UUID) error {
	l.logger.Info(fmt.Sprintf("Adding player to lobby: ID=%s", id))

	score := float64(l.now().UnixNano())
	if err := l.sortedQueue.Enqueue(ctx, l.queueKey(), score, id.String()); err != nil {
		l.logger.Error(fmt.Sprintf("Failed to enqueue player: %s", err))
		return err
	}

	l.logger.Info(fmt.Sprintf("Player enqueued successfully: ID=%s", id))
	go l.match(context.WithoutCancel(ctx))
	return nil
}

// Leave removes the player from the queue. Leaving when not queued is not an error.
func (l *Lobby) Leave(ctx context.Context, id uuid.UUID) error {
	if err := l.sortedQueue.Remove(ctx, l.queueKey(), id.String()); err != nil {
		l.logger.Error(fmt.Sprintf("Failed to remove player from lobby: %s", err))
		return err
	}
	l.logger.Info(fmt.Sprintf("Player left lobby: ID=%s", id))
	return nil
}

func (l *Lobby) match(ctx context.Context) {
	queueKey := l.queueKey()
	if l.sortedQueue.Count(ctx, queueKey) < l.opts.BatchSize {
		return
	}

	rawPlayers, err := l.sortedQueue.DequeTops(ctx, queueKey, l.opts.BatchSize)
	if err != nil {
		l.logger.Error(fmt.Sprintf("obtaining lobby lock: %s", err))
		return
	}
	if len(rawPlayers) == 0 {
		return
	}

	var playersIDs []uuid.UUID
	for _, raw := range rawPlayers {
		if id, err := uuid.Parse(raw); err == nil {
			playersIDs = append(playersIDs, id)
		} else {
			l.logger.Warning(fmt.Sprintf("Non-UUID value in queue: %s", raw))
		}
	}

	if l.opts.Handler != nil && len(playersIDs) > 0 {
		l.logger.Info(fmt.Sprintf("Batch formed for players: %v", playersIDs))
		go l.opts.Handler(playersIDs)
	}
}

// SetMatchHandler sets the function that receives every full batch.
func (l *Lobby) SetMatchHandler(f func([]uuid.UUID)) {
	l.opts.Handler = f
}

func (l *Lobby) queueKey() string {
	return fmt.Sprintf(queueKeyFmt, l.opts.Prefix)
}
