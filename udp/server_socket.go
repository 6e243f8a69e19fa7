package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/beka-birhanu/tilt-maze/service/i"
	"github.com/google/uuid"
)

// ClientRequestHandler is called when an authenticated client sends a game record.
type ClientRequestHandler func(uuid.UUID, byte, []byte)

// ClientRegisterHandler is called when a client is registered into a session after being authenticated.
type ClientRegisterHandler func(uuid.UUID)

// ClientLeaveHandler is called when a client is dropped for missing heartbeats.
type ClientLeaveHandler func(uuid.UUID)

type ServerOption func(*ServerSocketManager)

// Custom error types
var (
	ErrClientSessionNotFound        = errors.New("client session not found")
	ErrClientAddressIsNotRegistered = errors.New("client address is not registered")
	ErrClientNotFound               = errors.New("client not found")
	ErrMaximumPayloadSizeLimit      = errors.New("maximum payload size limit")
	ErrInvalidPayloadBodySize       = errors.New("invalid payload body size")
	ErrNoAuthenticator              = errors.New("no client authenticator set")
)

// Transport record types have the high bit set; lower values are game records.
const (
	ClientHelloRecordType byte = 0x80 + iota
	ServerHelloRecordType
	PingRecordType
	PongRecordType
	UnAuthenticated
)

const (
	defaultReadBufferSize  = 2048
	defaultHeartbeatExpiry = 10 * time.Second
)

// Incoming bytes are parsed into the record struct
type record struct {
	Type byte
	Body []byte
}

// rawRecord is sent to the rawRecords channel when a new payload is received
type rawRecord struct {
	payload []byte
	addr    *net.UDPAddr
}

// Client represents an authenticated UDP client
type Client struct {
	ID uuid.UUID // ID provided by the authenticator.

	// sessionID proves the client completed the handshake; every record body starts with it.
	sessionID []byte

	addr *net.UDPAddr // UDP address of the client.

	lastHeartbeat time.Time // Last time a record was received from the client.

	sync.Mutex
}

// ServerSocketManager is a UDP socket manager that accepts clients after a token
// handshake and relays their game records.
type ServerSocketManager struct {
	readBufferSize        int                   // Maximum buffer size for incoming bytes.
	heartbeatExpiration   time.Duration         // Silence after which a client is dropped.
	conn                  *net.UDPConn          // Connection to listen to.
	authenticator         Authenticator         // Authenticates client tokens and returns user identifiers.
	onCustomClientRequest ClientRequestHandler  // Called when an authenticated client sends a request.
	onClientRegister      ClientRegisterHandler // Called when a client completes the handshake.
	onClientLeave         ClientLeaveHandler    // Called when a client is dropped.
	clients               map[uuid.UUID]*Client // Map of clients indexed by their identifier.
	clientsLock           sync.RWMutex          // Read-write lock for accessing the clients map.
	sessionManager        *SessionManager       // Generates session IDs.
	rawRecords            chan rawRecord        // Channel for raw records.
	logger                i.Logger
	stop                  chan struct{}
	stopOnce              sync.Once
	wg                    sync.WaitGroup
}

// ServerConfig is a struct used to pass the required parameters to initialize a new SocketManager
type ServerConfig struct {
	ListenAddr    *net.UDPAddr  // UDP address to listen on.
	Authenticator Authenticator // Optional, may be set later with SetClientAuthenticator.
}

// NewServerSocketManager initializes a new SocketManager instance with the given configuration and options
func NewServerSocketManager(c ServerConfig, options ...ServerOption) (*ServerSocketManager, error) {
	conn, err := net.ListenUDP("udp", c.ListenAddr)
	if err != nil {
		return nil, err
	}

	s := &ServerSocketManager{
		conn:                conn,
		authenticator:       c.Authenticator,
		heartbeatExpiration: defaultHeartbeatExpiry,
		clients:             make(map[uuid.UUID]*Client),
		rawRecords:          make(chan rawRecord, 256),
		stop:                make(chan struct{}),
	}

	// Run optional configurations
	for _, opt := range options {
		opt(s)
	}

	if s.readBufferSize == 0 {
		s.readBufferSize = defaultReadBufferSize
	}
	if s.logger == nil {
		s.logger = nopLogger{}
	}

	s.sessionManager, err = NewSessionManager()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Serve reads datagrams until Stop is called. Records are handled in order on a
// single goroutine.
func (s *ServerSocketManager) Serve() {
	s.wg.Add(2)
	go s.handleRawRecords()
	go s.clientGarbageCollection()

	s.logger.Info(fmt.Sprintf("server listening on udp address: %v", s.conn.LocalAddr()))
	defer close(s.rawRecords)
	for {
		buf := make([]byte, s.readBufferSize+1) // Intentionally create more space than allowed for checking
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warning(fmt.Sprintf("reading from udp: %s", err))
			continue
		}
		if n > s.readBufferSize {
			s.logger.Warning(fmt.Sprintf("reading from udp: %s", ErrMaximumPayloadSizeLimit))
			continue
		}
		select {
		case s.rawRecords <- rawRecord{payload: buf[:n], addr: addr}:
		case <-s.stop:
			return
		}
	}
}

// Stop closes the socket and waits for the server goroutines.
func (s *ServerSocketManager) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("server stopping gracefully...")
		close(s.stop)
		_ = s.conn.Close()
	})
	s.wg.Wait()
}

// GetAddr returns the server's socket address.
func (s *ServerSocketManager) GetAddr() string {
	return s.conn.LocalAddr().String()
}

// SetClientRequestHandler sets the handler for game records.
func (s *ServerSocketManager) SetClientRequestHandler(f func(uuid.UUID, byte, []byte)) {
	s.onCustomClientRequest = f
}

// SetClientRegisterHandler sets the handler called after a handshake.
func (s *ServerSocketManager) SetClientRegisterHandler(f func(uuid.UUID)) {
	s.onClientRegister = f
}

// SetClientLeaveHandler sets the handler called when a client is dropped.
func (s *ServerSocketManager) SetClientLeaveHandler(f func(uuid.UUID)) {
	s.onClientLeave = f
}

// SetClientAuthenticator sets the token authenticator.
func (s *ServerSocketManager) SetClientAuthenticator(a i.PlayerAuthenticator) {
	s.authenticator = a
}

// clientGarbageCollection removes any client whose last heartbeat is older than
// the heartbeat expiration.
func (s *ServerSocketManager) clientGarbageCollection() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.heartbeatExpiration)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.dropExpired(now)
		}
	}
}

func (s *ServerSocketManager) dropExpired(now time.Time) {
	var expired []uuid.UUID
	s.clientsLock.Lock()
	for id, c := range s.clients {
		c.Lock()
		stale := now.After(c.lastHeartbeat.Add(s.heartbeatExpiration))
		c.Unlock()
		if stale {
			delete(s.clients, id)
			expired = append(expired, id)
		}
	}
	s.clientsLock.Unlock()

	for _, id := range expired {
		s.logger.Info(fmt.Sprintf("dropped silent client: %s", id))
		if s.onClientLeave != nil {
			s.onClientLeave(id)
		}
	}
}

func (s *ServerSocketManager) handleRawRecords() {
	defer s.wg.Done()
	for r := range s.rawRecords {
		s.handleRawRecord(r.payload, r.addr)
	}
}

func (s *ServerSocketManager) handleRawRecord(payload []byte, addr *net.UDPAddr) {
	record, err := parseRecord(payload)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("parsing record: %s", err))
		return
	}

	switch record.Type {
	case ClientHelloRecordType:
		s.sayServerHello(record, addr)
	case PingRecordType:
		s.handlePingRecord(record, addr)
	default:
		s.handleCustomRecord(record, addr)
	}
}

// sayServerHello authenticates the token carried by a client hello and answers
// with a fresh session ID.
//
// Post-registration, clients must prepend the session ID to every record body.
func (s *ServerSocketManager) sayServerHello(r *record, addr *net.UDPAddr) {
	if s.authenticator == nil {
		s.logger.Error(ErrNoAuthenticator.Error())
		return
	}

	ID, err := s.authenticator.Authenticate(r.Body)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("authenticating client token: %s", err))
		s.unAuthenticated(addr)
		return
	}

	client, replaced, err := s.registerClient(addr, ID)
	if err != nil {
		s.logger.Error(fmt.Sprintf("registering client: %s", err))
		return
	}

	payload, err := marshalRecord(ServerHello{SessionID: client.sessionID, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		s.logger.Error(fmt.Sprintf("marshaling server hello record: %s", err))
		return
	}

	if err := s.sendToClient(client, ServerHelloRecordType, payload); err != nil {
		s.logger.Warning(fmt.Sprintf("sending server hello: %s", err))
		return
	}

	s.logger.Info(fmt.Sprintf("accepted connection with client: %s", ID))
	if !replaced && s.onClientRegister != nil {
		s.onClientRegister(ID)
	}
}

// handlePingRecord handles ping record and sends pong response
func (s *ServerSocketManager) handlePingRecord(r *record, addr *net.UDPAddr) {
	receivedAt := time.Now().UnixMilli()
	cl, body, ok := s.authorize(r, addr)
	if !ok {
		return
	}

	var ping Ping
	if err := unmarshalRecord(body, &ping); err != nil {
		s.logger.Warning(fmt.Sprintf("unmarshaling ping record: %s", err))
		return
	}

	payload, err := marshalRecord(Pong{PingSentAt: ping.SentAt, ReceivedAt: receivedAt, SentAt: time.Now().UnixMilli()})
	if err != nil {
		s.logger.Error(fmt.Sprintf("marshaling pong record: %s", err))
		return
	}

	if err := s.sendToClient(cl, PongRecordType, payload); err != nil {
		s.logger.Warning(fmt.Sprintf("sending pong record: %s", err))
	}
}

// handleCustomRecord authorizes the record and passes it to the request handler.
func (s *ServerSocketManager) handleCustomRecord(r *record, addr *net.UDPAddr) {
	cl, body, ok := s.authorize(r, addr)
	if !ok {
		return
	}
	if s.onCustomClientRequest != nil {
		s.onCustomClientRequest(cl.ID, r.Type, body)
	}
}

// authorize checks the sender address and session ID of a record, refreshes the
// client's heartbeat and returns the body after the session ID.
func (s *ServerSocketManager) authorize(r *record, addr *net.UDPAddr) (*Client, []byte, bool) {
	cl, err := s.findClientWithAddr(addr)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("authenticating record type %d: %s", r.Type, err))
		s.unAuthenticated(addr)
		return nil, nil, false
	}

	sessionID, body, err := splitSessionIDAndBody(r.Body, len(cl.sessionID))
	if err != nil || !SessionIDEqual(sessionID, cl.sessionID) {
		s.logger.Warning(fmt.Sprintf("validating session id for record type %d: %s", r.Type, ErrClientSessionNotFound))
		s.unAuthenticated(addr)
		return nil, nil, false
	}

	cl.Lock()
	cl.lastHeartbeat = time.Now()
	cl.Unlock()
	return cl, body, true
}

// registerClient generates a new session ID and registers the address under the client ID.
// A client that shakes hands again replaces its previous session, and replaced is true.
func (s *ServerSocketManager) registerClient(addr *net.UDPAddr, ID uuid.UUID) (cl *Client, replaced bool, err error) {
	sessionID, err := s.sessionManager.GenerateSessionID(addr, ID)
	if err != nil {
		return nil, false, err
	}

	cl = &Client{
		ID:            ID,
		sessionID:     sessionID,
		addr:          addr,
		lastHeartbeat: time.Now(),
	}

	s.clientsLock.Lock()
	_, replaced = s.clients[ID]
	s.clients[ID] = cl
	s.clientsLock.Unlock()
	return cl, replaced, nil
}

// findClientWithAddr finds a registered client with given addr.
func (s *ServerSocketManager) findClientWithAddr(a *net.UDPAddr) (*Client, error) {
	s.clientsLock.RLock()
	defer s.clientsLock.RUnlock()

	for _, cl := range s.clients {
		if cl.addr.IP.Equal(a.IP) && cl.addr.Port == a.Port {
			return cl, nil
		}
	}
	return nil, ErrClientAddressIsNotRegistered
}

// BroadcastToClients sends a record to every listed client that is connected.
func (s *ServerSocketManager) BroadcastToClients(ids []uuid.UUID, typ byte, payload []byte) {
	for _, id := range ids {
		if err := s.SendToClient(id, typ, payload); err != nil && !errors.Is(err, ErrClientNotFound) {
			s.logger.Warning(fmt.Sprintf("writing to client %s: %s", id, err))
		}
	}
}

// SendToClient sends a record to one client. The record type is prepended to the body.
func (s *ServerSocketManager) SendToClient(clientID uuid.UUID, typ byte, payload []byte) error {
	s.clientsLock.RLock()
	client, found := s.clients[clientID]
	s.clientsLock.RUnlock()
	if !found {
		return ErrClientNotFound
	}
	return s.sendToClient(client, typ, payload)
}

func (s *ServerSocketManager) sendToClient(client *Client, typ byte, payload []byte) error {
	return s.sendToAddr(client.addr, append([]byte{typ}, payload...))
}

// sends a message byte array to the address given.
func (s *ServerSocketManager) sendToAddr(addr *net.UDPAddr, message []byte) error {
	_, err := s.conn.WriteToUDP(message, addr)
	return err
}

// unAuthenticated tells the client a handshake is required.
func (s *ServerSocketManager) unAuthenticated(addr *net.UDPAddr) {
	if err := s.sendToAddr(addr, []byte{UnAuthenticated}); err != nil {
		s.logger.Warning(fmt.Sprintf("sending UnAuthenticated record to the client: %s", err))
	}
}

// parseRecord splits a datagram into [type, body].
func parseRecord(r []byte) (*record, error) {
	if len(r) < 2 {
		return nil, ErrInvalidPayloadBodySize
	}
	return &record{Type: r[0], Body: r[1:]}, nil
}

// splitSessionIDAndBody splits sessionID and body from payload
func splitSessionIDAndBody(payload []byte, sIDLength int) ([]byte, []byte, error) {
	if len(payload) < sIDLength {
		return nil, nil, ErrInvalidPayloadBodySize
	}
	return payload[:sIDLength], payload[sIDLength:], nil
}

// ServerWithClientRequestHandler sets a callback function to handle game records received from the client
func ServerWithClientRequestHandler(f ClientRequestHandler) ServerOption {
	return func(s *ServerSocketManager) {
		s.onCustomClientRequest = f
	}
}

// ServerWithClientRegisterHandler sets a callback function to handle client registration after the handshake
func ServerWithClientRegisterHandler(f ClientRegisterHandler) ServerOption {
	return func(s *ServerSocketManager) {
		s.onClientRegister = f
	}
}

// ServerWithClientLeaveHandler sets a callback function called when a client is dropped
func ServerWithClientLeaveHandler(f ClientLeaveHandler) ServerOption {
	return func(s *ServerSocketManager) {
		s.onClientLeave = f
	}
}

// ServerWithHeartbeatExpiration sets the server heartbeat expiration option
func ServerWithHeartbeatExpiration(t time.Duration) ServerOption {
	return func(s *ServerSocketManager) {
		if t > 0 {
			s.heartbeatExpiration = t
		}
	}
}

// ServerWithReadBufferSize sets the read buffer size option
func ServerWithReadBufferSize(i int) ServerOption {
	return func(s *ServerSocketManager) {
		s.readBufferSize = i
	}
}

// ServerWithLogger sets the logger
func ServerWithLogger(l i.Logger) ServerOption {
	return func(s *ServerSocketManager) {
		s.logger = l
	}
}

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}
