// Package ws relays game records over WebSocket connections.
package ws

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/beka-birhanu/tilt-maze/service/i"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var ErrClientNotFound = errors.New("client not found")

// Hub accepts websocket players and implements the same socket manager contract
// as the UDP transport. Every message is a record: one type byte then the body.
type Hub struct {
	path          string
	upgrader      websocket.Upgrader
	authenticator i.PlayerAuthenticator
	onRequest     func(uuid.UUID, byte, []byte)
	onRegister    func(uuid.UUID)
	onLeave       func(uuid.UUID)
	clients       map[uuid.UUID]*client
	logger        i.Logger
	stop          chan struct{}
	stopOnce      sync.Once
	sync.RWMutex
}

// NewHub creates a hub that is reachable under path.
func NewHub(path string, logger i.Logger) *Hub {
	return &Hub{
		path: path,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uuid.UUID]*client),
		logger:  logger,
		stop:    make(chan struct{}),
	}
}

// ServeHTTP authenticates the token query parameter and upgrades the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.authenticator == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	id, err := h.authenticator.Authenticate([]byte(r.URL.Query().Get("token")))
	if err != nil {
		h.logger.Warning(fmt.Sprintf("rejected websocket client: %s", err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(fmt.Sprintf("upgrading websocket: %s", err))
		return
	}

	c := newClient(id, h, conn)
	h.register(c)
	go c.writePump()
	go c.readPump()
}

// register adds c. A reconnecting player replaces their old connection; the
// register and leave handlers only see the player arriving and finally leaving.
func (h *Hub) register(c *client) {
	h.Lock()
	old, replaced := h.clients[c.id]
	if replaced {
		close(old.send)
	}
	h.clients[c.id] = c
	h.Unlock()

	h.logger.Info(fmt.Sprintf("accepted websocket client: %s", c.id))
	if !replaced && h.onRegister != nil {
		h.onRegister(c.id)
	}
}

// unregister drops c unless it was already replaced by a newer connection.
func (h *Hub) unregister(c *client) {
	h.Lock()
	current, ok := h.clients[c.id]
	if !ok || current != c {
		h.Unlock()
		return
	}
	delete(h.clients, c.id)
	close(c.send)
	h.Unlock()

	h.logger.Info(fmt.Sprintf("websocket client left: %s", c.id))
	if h.onLeave != nil {
		h.onLeave(c.id)
	}
}

func (h *Hub) dispatch(id uuid.UUID, typ byte, body []byte) {
	if h.onRequest != nil {
		h.onRequest(id, typ, body)
	}
}

// Serve blocks until Stop is called. Connections arrive through ServeHTTP.
func (h *Hub) Serve() {
	<-h.stop
}

// Stop disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
		h.Lock()
		for id, c := range h.clients {
			close(c.send)
			delete(h.clients, id)
		}
		h.Unlock()
	})
}

// GetAddr returns the path players connect to.
func (h *Hub) GetAddr() string {
	return h.path
}

// SetClientRequestHandler sets the handler for game records.
func (h *Hub) SetClientRequestHandler(f func(uuid.UUID, byte, []byte)) {
	h.onRequest = f
}

// SetClientRegisterHandler sets the handler called after a client connects.
func (h *Hub) SetClientRegisterHandler(f func(uuid.UUID)) {
	h.onRegister = f
}

// SetClientLeaveHandler sets the handler called after a client disconnects.
func (h *Hub) SetClientLeaveHandler(f func(uuid.UUID)) {
	h.onLeave = f
}

// SetClientAuthenticator sets the token authenticator.
func (h *Hub) SetClientAuthenticator(a i.PlayerAuthenticator) {
	h.authenticator = a
}

// BroadcastToClients queues a record for every listed client that is connected.
// A client too slow to drain its queue is disconnected.
func (h *Hub) BroadcastToClients(ids []uuid.UUID, typ byte, payload []byte) {
	message := append([]byte{typ}, payload...)
	for _, id := range ids {
		if err := h.SendToClient(id, message); err != nil && !errors.Is(err, ErrClientNotFound) {
			h.logger.Warning(fmt.Sprintf("writing to client %s: %s", id, err))
		}
	}
}

// SendToClient queues a raw record for one client.
func (h *Hub) SendToClient(id uuid.UUID, message []byte) error {
	h.RLock()
	c, ok := h.clients[id]
	if !ok {
		h.RUnlock()
		return ErrClientNotFound
	}
	select {
	case c.send <- message:
		h.RUnlock()
		return nil
	default:
		h.RUnlock()
		_ = c.conn.Close()
		return errors.New("send buffer full")
	}
}
