package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/beka-birhanu/tilt-maze/identity"
	"github.com/beka-birhanu/tilt-maze/service/i"
	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

// memoryRepo is an in-memory i.UserRepo.
type memoryRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*identity.User
	wins  chan uuid.UUID
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[uuid.UUID]*identity.User), wins: make(chan uuid.UUID, 8)}
}

func (r *memoryRepo) Save(_ context.Context, u *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memoryRepo) ByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

func (r *memoryRepo) ByUsername(_ context.Context, username string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (r *memoryRepo) RecordWin(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	if u, ok := r.users[id]; ok {
		u.GamesWon++
	}
	r.mu.Unlock()
	r.wins <- id
	return nil
}

// claimsTokenizer hands out the claims map's user id as the token itself.
type claimsTokenizer struct {
	generated []map[string]interface{}
}

func (t *claimsTokenizer) Generate(claims map[string]interface{}, _ time.Duration) (string, error) {
	t.generated = append(t.generated, claims)
	return claims[UserIDClaim].(string), nil
}

func (t *claimsTokenizer) Decode(token string) (map[string]interface{}, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, errors.New("malformed token")
	}
	return map[string]interface{}{UserIDClaim: token}, nil
}

// memoryQueue is an in-memory i.SortedQueue.
type memoryQueue struct {
	mu     sync.Mutex
	scores map[string]map[string]float64
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{scores: make(map[string]map[string]float64)}
}

func (q *memoryQueue) Enqueue(_ context.Context, key string, score float64, member string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.scores[key] == nil {
		q.scores[key] = make(map[string]float64)
	}
	q.scores[key][member] = score
	return nil
}

func (q *memoryQueue) DequeTops(_ context.Context, key string, amount int64) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	members := make([]string, 0, len(q.scores[key]))
	for m := range q.scores[key] {
		members = append(members, m)
	}
	if int64(len(members)) < amount {
		return nil, nil
	}
	sort.Slice(members, func(a, b int) bool { return q.scores[key][members[a]] < q.scores[key][members[b]] })
	members = members[:amount]
	for _, m := range members {
		delete(q.scores[key], m)
	}
	return members, nil
}

func (q *memoryQueue) Count(_ context.Context, key string) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.scores[key]))
}

func (q *memoryQueue) Remove(_ context.Context, key string, member string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.scores[key], member)
	return nil
}

type sent struct {
	ids     []uuid.UUID
	typ     byte
	payload []byte
}

// fakeSocket records broadcasts and lets tests play the client side.
type fakeSocket struct {
	addr       string
	onRequest  func(uuid.UUID, byte, []byte)
	onRegister func(uuid.UUID)
	onLeave    func(uuid.UUID)
	auth       i.PlayerAuthenticator

	mu   sync.Mutex
	sent []sent
}

func (s *fakeSocket) SetClientRequestHandler(f func(uuid.UUID, byte, []byte)) { s.onRequest = f }
func (s *fakeSocket) SetClientRegisterHandler(f func(uuid.UUID))              { s.onRegister = f }
func (s *fakeSocket) SetClientLeaveHandler(f func(uuid.UUID))                 { s.onLeave = f }
func (s *fakeSocket) SetClientAuthenticator(a i.PlayerAuthenticator)          { s.auth = a }
func (s *fakeSocket) Serve()                                                  {}
func (s *fakeSocket) Stop()                                                   {}
func (s *fakeSocket) GetAddr() string                                         { return s.addr }

func (s *fakeSocket) BroadcastToClients(ids []uuid.UUID, typ byte, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sent{ids: ids, typ: typ, payload: payload})
}

func (s *fakeSocket) sentOfType(typ byte) []sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sent
	for _, m := range s.sent {
		if m.typ == typ {
			out = append(out, m)
		}
	}
	return out
}
