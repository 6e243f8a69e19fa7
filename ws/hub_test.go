package ws

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

type tokenAuth map[string]uuid.UUID

func (a tokenAuth) Authenticate(token []byte) (uuid.UUID, error) {
	id, ok := a[string(token)]
	if !ok {
		return uuid.Nil, errors.New("bad token")
	}
	return id, nil
}

type request struct {
	id   uuid.UUID
	typ  byte
	body []byte
}

func newTestHub(t *testing.T, auth tokenAuth) (*Hub, *httptest.Server, chan uuid.UUID, chan uuid.UUID, chan request) {
	t.Helper()
	registered := make(chan uuid.UUID, 4)
	left := make(chan uuid.UUID, 4)
	requests := make(chan request, 4)

	hub := NewHub("/ws", nopLogger{})
	hub.SetClientAuthenticator(auth)
	hub.SetClientRegisterHandler(func(id uuid.UUID) { registered <- id })
	hub.SetClientLeaveHandler(func(id uuid.UUID) { left <- id })
	hub.SetClientRequestHandler(func(id uuid.UUID, typ byte, body []byte) {
		requests <- request{id: id, typ: typ, body: body}
	})

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Stop)
	return hub, srv, registered, left, requests
}

func dial(srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func receive[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	var zero T
	return zero
}

func TestHubRelaysRecords(t *testing.T) {
	player := uuid.New()
	hub, srv, registered, left, requests := newTestHub(t, tokenAuth{"good": player})

	conn, _, err := dial(srv, "good")
	require.NoError(t, err)
	assert.Equal(t, player, receive(t, registered))

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, append([]byte{1}, `{"beta":3,"gamma":4}`...)))
	r := receive(t, requests)
	assert.Equal(t, player, r.id)
	assert.Equal(t, byte(1), r.typ)
	assert.JSONEq(t, `{"beta":3,"gamma":4}`, string(r.body))

	hub.BroadcastToClients([]uuid.UUID{player, uuid.New()}, 11, []byte("positions"))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	typ, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, typ)
	assert.Equal(t, append([]byte{11}, "positions"...), msg)

	require.NoError(t, conn.Close())
	assert.Equal(t, player, receive(t, left))
	assert.ErrorIs(t, hub.SendToClient(player, []byte{11}), ErrClientNotFound)
}

func TestHubRejectsBadTokens(t *testing.T) {
	_, srv, _, _, _ := newTestHub(t, tokenAuth{"good": uuid.New()})

	_, resp, err := dial(srv, "bad")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHubReplacesReconnectingClient(t *testing.T) {
	player := uuid.New()
	hub, srv, registered, left, _ := newTestHub(t, tokenAuth{"good": player})

	first, _, err := dial(srv, "good")
	require.NoError(t, err)
	receive(t, registered)

	second, _, err := dial(srv, "good")
	require.NoError(t, err)

	// The replaced connection is closed by the server.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case <-left:
		t.Fatal("replacing a connection must not count as leaving")
	case <-registered:
		t.Fatal("replacing a connection must not count as joining again")
	case <-time.After(100 * time.Millisecond):
	}

	hub.BroadcastToClients([]uuid.UUID{player}, 10, []byte("layout"))
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := second.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, append([]byte{10}, "layout"...), msg)

	require.NoError(t, second.Close())
	assert.Equal(t, player, receive(t, left))
}

func TestHubStop(t *testing.T) {
	hub, srv, registered, _, _ := newTestHub(t, tokenAuth{"good": uuid.New()})
	conn, _, err := dial(srv, "good")
	require.NoError(t, err)
	receive(t, registered)

	done := make(chan struct{})
	go func() {
		hub.Serve()
		close(done)
	}()
	hub.Stop()
	receive(t, done)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, "/ws", hub.GetAddr())
}
