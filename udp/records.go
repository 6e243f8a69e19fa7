package udp

import "github.com/vmihailenco/msgpack/v5"

// ServerHello is sent once a client token is accepted.
type ServerHello struct {
	SessionID []byte `msgpack:"sessionId"`
	Timestamp int64  `msgpack:"timestamp"` // unix milliseconds
}

// Ping is a client heartbeat.
type Ping struct {
	SentAt int64 `msgpack:"sentAt"`
}

// Pong answers a ping.
type Pong struct {
	PingSentAt int64 `msgpack:"pingSentAt"`
	ReceivedAt int64 `msgpack:"receivedAt"`
	SentAt     int64 `msgpack:"sentAt"`
}

func marshalRecord(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func unmarshalRecord(b []byte, v any) error {
	return msgpack.Unmarshal(b, v)
}
