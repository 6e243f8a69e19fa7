package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beka-birhanu/tilt-maze/physics"
)

type commandKind int

const (
	tiltCommand commandKind = iota
	resetCommand
	quitCommand
)

var ErrUnknownCommand = errors.New("unknown command")

type command struct {
	kind commandKind
	tilt physics.Tilt
	hard bool
}

// parseCommand reads one input line:
//
//	t <beta> <gamma>   device angles in degrees
//	j <dx> <dy>        joystick deltas
//	r | h              new easy or hard round
//	q                  quit
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, ErrUnknownCommand
	}

	switch fields[0] {
	case "t", "j":
		if len(fields) != 3 {
			return command{}, fmt.Errorf("%s needs two numbers", fields[0])
		}
		a, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return command{}, err
		}
		b, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return command{}, err
		}
		if fields[0] == "t" {
			return command{kind: tiltCommand, tilt: physics.FromAngles(a, b)}, nil
		}
		return command{kind: tiltCommand, tilt: physics.FromJoystick(a, b)}, nil
	case "r":
		return command{kind: resetCommand}, nil
	case "h":
		return command{kind: resetCommand, hard: true}, nil
	case "q":
		return command{kind: quitCommand}, nil
	}
	return command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}

// readCommands applies tilt lines to the source and forwards the rest. The
// channel is closed at end of input.
func readCommands(r io.Reader, source *inputTilt, out chan<- command, onError func(error)) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cmd, err := parseCommand(scanner.Text())
		if err != nil {
			onError(err)
			continue
		}
		if cmd.kind == tiltCommand {
			source.set(cmd.tilt)
			continue
		}
		out <- cmd
	}
	if err := scanner.Err(); err != nil {
		onError(err)
	}
}
