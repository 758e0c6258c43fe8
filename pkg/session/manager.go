package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/pipeline"
)

// Manager keeps live sessions in memory and persists them to a Store after
// every change, so another instance can pick them up.
//
// The store is the source of truth. Get reloads a live session when the
// stored record carries a newer revision, and Save refuses to overwrite a
// revision it has not seen (SUPERSEDED). Live sessions idle for longer than
// the TTL are dropped.
type Manager struct {
	mu     sync.Mutex
	saveMu sync.Mutex
	live   map[string]*liveEntry
	store  Store
	runner *pipeline.Runner
	opts   pipeline.Options
	ttl    time.Duration
	logger *log.Logger
}

type liveEntry struct {
	sess     *Session
	lastUsed time.Time
}

// NewManager creates a manager. A nil store keeps sessions in memory only.
func NewManager(store Store, runner *pipeline.Runner, opts pipeline.Options) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	return &Manager{
		live:   make(map[string]*liveEntry),
		store:  store,
		runner: runner,
		opts:   opts,
		ttl:    DefaultTTL,
		logger: runner.Logger,
	}
}

// Create starts and saves a session over a.
func (m *Manager) Create(ctx context.Context, a contact.Analysis, department string) (*Session, error) {
	opts := m.opts
	opts.Department = department
	s, err := New(GenerateID(), a, m.runner, opts)
	if err != nil {
		return nil, err
	}
	if err := m.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the session with id. The live copy is reused while it is as
// new as the stored record; otherwise the record is restored. Unknown or
// expired ids fail with SESSION_NOT_FOUND.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load session")
	}
	if rec == nil {
		m.forget(id)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}

	if s := m.lookup(id); s != nil && s.Revision() >= rec.Revision {
		return s, nil
	}

	s, err := Restore(ctx, rec, m.runner, m.opts)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("restored session", "id", id, "revision", rec.Revision, "positions", len(rec.Positions))

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.live[id]; ok && e.sess.Revision() >= rec.Revision {
		e.lastUsed = time.Now()
		return e.sess, nil
	}
	m.live[id] = &liveEntry{sess: s, lastUsed: time.Now()}
	return s, nil
}

// Save persists s under the next revision and keeps it live. When the store
// already holds a newer revision than s was loaded from, Save fails with
// SUPERSEDED and drops the live copy, so the next Get reloads it.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	id := s.ID()
	current, err := m.store.Get(ctx, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "load session")
	}
	if current != nil && current.Revision > s.Revision() {
		m.forget(id)
		return errors.New(errors.ErrCodeSuperseded,
			"session %q was changed elsewhere (revision %d, have %d)", id, current.Revision, s.Revision())
	}

	rec := s.Record(m.ttl)
	rec.Revision++
	if err := m.store.Set(ctx, rec); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save session")
	}
	s.setRevision(rec.Revision)

	now := time.Now()
	m.mu.Lock()
	m.live[id] = &liveEntry{sess: s, lastUsed: now}
	m.evictIdleLocked(now)
	m.mu.Unlock()
	return nil
}

// Delete forgets the session with id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.forget(id)
	return m.store.Delete(ctx, id)
}

// Live returns how many sessions this instance holds in memory.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Close closes the store.
func (m *Manager) Close() error {
	return m.store.Close()
}

func (m *Manager) lookup(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live[id]
	if !ok {
		return nil
	}
	e.lastUsed = time.Now()
	return e.sess
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
}

func (m *Manager) evictIdleLocked(now time.Time) {
	for id, e := range m.live {
		if now.Sub(e.lastUsed) > m.ttl {
			delete(m.live, id)
		}
	}
}
