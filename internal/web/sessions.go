package web

import (
	"errors"
	"sync"
	"time"

	"boardview/internal/board"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var errSessionGone = errors.New("board session not found")

// boardSession is one opened board. Moves on a session are serialized by mu;
// the engine itself is single-threaded.
type boardSession struct {
	id   string
	file string

	mu       sync.Mutex
	engine   *board.Engine
	lastSeen time.Time
}

// apply runs in through the engine and returns the resulting projection.
// changed is false for rejected, cancelled and no-op moves.
func (bs *boardSession) apply(in board.MoveIntent) (view board.BoardView, changed bool, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastSeen = time.Now()
	before := bs.engine.State()
	err = bs.engine.Apply(in)
	after := bs.engine.State()
	return board.Project(after), after != before, err
}

func (bs *boardSession) touch() {
	bs.mu.Lock()
	bs.lastSeen = time.Now()
	bs.mu.Unlock()
}

// snapshot returns the current state. States are immutable, so the caller may
// read it without holding the lock.
func (bs *boardSession) snapshot() *board.State {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastSeen = time.Now()
	return bs.engine.State()
}

type sessionManager struct {
	ttl time.Duration

	mu   sync.Mutex
	byID map[string]*boardSession
}

func newSessionManager(ttl time.Duration) *sessionManager {
	return &sessionManager{ttl: ttl, byID: map[string]*boardSession{}}
}

func (m *sessionManager) create(file string, st *board.State, logger log.FieldLogger) *boardSession {
	id := uuid.NewString()
	bs := &boardSession{
		id:       id,
		file:     file,
		engine:   board.NewEngine(st, logger.WithFields(log.Fields{"session": id, "file": file})),
		lastSeen: time.Now(),
	}
	m.mu.Lock()
	m.byID[id] = bs
	m.mu.Unlock()
	return bs
}

func (m *sessionManager) get(id string) (*boardSession, error) {
	m.mu.Lock()
	bs := m.byID[id]
	m.mu.Unlock()
	if bs == nil {
		return nil, errSessionGone
	}
	return bs, nil
}

func (m *sessionManager) remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return false
	}
	delete(m.byID, id)
	return true
}

func (m *sessionManager) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// reap removes sessions idle for longer than the TTL and returns their ids.
func (m *sessionManager) reap(now time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var gone []string
	for id, bs := range m.byID {
		bs.mu.Lock()
		idle := now.Sub(bs.lastSeen)
		bs.mu.Unlock()
		if idle > m.ttl {
			delete(m.byID, id)
			gone = append(gone, id)
		}
	}
	return gone
}
