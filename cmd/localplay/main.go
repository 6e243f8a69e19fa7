// Command localplay runs a single player round in the terminal. Tilt comes from
// stdin lines and positions are printed as JSON records.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/beka-birhanu/tilt-maze/game"
	"github.com/beka-birhanu/tilt-maze/game/encoder"
	logger "github.com/beka-birhanu/tilt-maze/infrastruture/log"
	"github.com/beka-birhanu/tilt-maze/physics"
	"github.com/beka-birhanu/tilt-maze/service/i"
)

const colorGreen = "\033[32m"

var (
	hard       = flag.Bool("hard", false, "Start with holes on the board")
	printEvery = flag.Uint64("every", 30, "Print positions every N ticks")
	format     = flag.String("format", "json", "Record format: json|msgpack")
)

// inputTilt holds the latest tilt typed by the player.
type inputTilt struct {
	mu   sync.Mutex
	tilt physics.Tilt
}

func (s *inputTilt) Tilt() physics.Tilt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tilt
}

func (s *inputTilt) set(t physics.Tilt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tilt = t
}

func main() {
	flag.Parse()

	log, err := logger.New("LOCAL", colorGreen, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	enc, err := encoder.New(*format)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}

	world, err := game.NewWorld(game.DefaultMazeFactory, *hard)
	if err != nil {
		log.Error(fmt.Sprintf("creating world: %s", err))
		os.Exit(1)
	}

	source := &inputTilt{tilt: physics.Level()}
	local, err := game.NewLocal(world, source)
	if err != nil {
		log.Error(fmt.Sprintf("creating round: %s", err))
		os.Exit(1)
	}
	local.OnTick = func(p game.Positions) {
		if *printEvery > 0 && p.Tick%*printEvery == 0 {
			emit(enc, log, game.PositionsRecordType, func() ([]byte, error) { return enc.MarshalPositions(p) })
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands := make(chan command)
	go readCommands(os.Stdin, source, commands, func(err error) { log.Warning(err.Error()) })

	play(ctx, local, source, enc, log, commands)
}

// play runs rounds until input ends, the player quits or ctx is done.
func play(ctx context.Context, local *game.Local, source *inputTilt, enc game.Encoder, log i.Logger, commands <-chan command) {
	for {
		layout := local.Layout()
		emit(enc, log, game.LayoutRecordType, func() ([]byte, error) { return enc.MarshalLayout(layout) })

		roundCtx, cancelRound := context.WithCancel(ctx)
		results := make(chan physics.Result, 1)
		go func() {
			defer close(results)
			if res, err := local.Run(roundCtx); err == nil {
				results <- res
			}
		}()

		var next command
		select {
		case res, ok := <-results:
			cancelRound()
			if ok {
				outcome := game.Outcome{Result: res.Outcome.String(), BallID: res.BallID}
				emit(enc, log, game.OutcomeRecordType, func() ([]byte, error) { return enc.MarshalOutcome(outcome) })
			}
			// The round is over; wait for the player to start another.
			select {
			case cmd, ok := <-commands:
				if !ok {
					return
				}
				next = cmd
			case <-ctx.Done():
				return
			}
		case cmd, ok := <-commands:
			cancelRound()
			<-results
			if !ok {
				return
			}
			next = cmd
		case <-ctx.Done():
			cancelRound()
			<-results
			return
		}

		if next.kind == quitCommand {
			return
		}
		source.set(physics.Level())
		if err := local.Reset(next.hard); err != nil {
			log.Error(fmt.Sprintf("resetting round: %s", err))
			return
		}
	}
}

func emit(enc game.Encoder, log i.Logger, typ byte, marshal func() ([]byte, error)) {
	b, err := marshal()
	if err != nil {
		log.Error(fmt.Sprintf("encoding record %d: %s", typ, err))
		return
	}
	if _, ok := enc.(encoder.JSON); ok {
		fmt.Printf("%d %s\n", typ, b)
		return
	}
	fmt.Printf("%d %x\n", typ, b)
}
