// Package encoder holds the wire formats for game records.
package encoder

import (
	"errors"
	"strings"

	"github.com/beka-birhanu/tilt-maze/game"
)

var ErrUnknownFormat = errors.New("unknown wire format")

// New returns the encoder for a format name, "json" or "msgpack".
func New(format string) (game.Encoder, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return JSON{}, nil
	case "msgpack":
		return Msgpack{}, nil
	default:
		return nil, ErrUnknownFormat
	}
}
