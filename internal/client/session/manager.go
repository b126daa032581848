package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/logging"
)

var (
	ErrInvalidSession = errors.New("session requires both a token and a user")
	ErrNotRestored    = errors.New("session has not been restored yet")
)

type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Persister is the storage the Manager writes through to. *Store implements it.
type Persister interface {
	Save(ctx context.Context, s models.Session) error
	Load(ctx context.Context) (models.Session, error)
	Clear(ctx context.Context) error
}

// Manager holds the current session. Transitions return the new session
// and notify subscribers synchronously before returning.
type Manager struct {
	mu      sync.Mutex
	store   Persister
	log     logging.Logger
	state   State
	current models.Session

	subsMu sync.Mutex
	nextID int
	subs   map[int]func(models.Session)
}

func NewManager(store Persister, log logging.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log,
		subs:  make(map[int]func(models.Session)),
	}
}

// Restore loads the persisted session once. Partial or malformed data
// yields Unauthenticated and the leftovers are cleared. Later calls return
// the current session without touching storage.
func (m *Manager) Restore(ctx context.Context) (models.Session, error) {
	m.mu.Lock()
	if m.state != StateLoading {
		s := m.current
		m.mu.Unlock()
		return s, nil
	}

	stored, err := m.store.Load(ctx)
	if err != nil {
		m.state = StateUnauthenticated
		m.current = models.Session{}
		m.mu.Unlock()
		m.log.Error(ctx, "session restore failed", "error", err)
		m.publish(models.Session{})
		return models.Session{}, fmt.Errorf("restore session: %w", err)
	}

	if !stored.Authenticated() {
		if stored.User != nil || stored.Token != "" {
			m.log.Warn(ctx, "discarding incomplete stored session")
		}
		if err := m.store.Clear(ctx); err != nil {
			m.log.Warn(ctx, "clearing stored session failed", "error", err)
		}
		stored = models.Session{}
		m.state = StateUnauthenticated
	} else {
		m.state = StateAuthenticated
		m.log.Info(ctx, "session restored", "user", stored.User.Username, "role", stored.User.Role)
	}
	m.current = stored
	m.mu.Unlock()

	m.publish(stored)
	return stored, nil
}

// Ready reports whether Restore has completed.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != StateLoading
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a copy of the session.
func (m *Manager) Current() models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.current)
}

func (m *Manager) Login(ctx context.Context, token string, user *models.User) (models.Session, error) {
	if token == "" || user == nil {
		return m.Current(), ErrInvalidSession
	}

	m.mu.Lock()
	if m.state == StateLoading {
		m.mu.Unlock()
		return models.Session{}, ErrNotRestored
	}
	u := *user
	next := models.Session{User: &u, Token: token}
	if err := m.store.Save(ctx, next); err != nil {
		s := copySession(m.current)
		m.mu.Unlock()
		return s, fmt.Errorf("login: %w", err)
	}
	m.current = next
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.log.Info(ctx, "logged in", "user", u.Username, "role", u.Role)
	m.publish(next)
	return copySession(next), nil
}

// Logout clears storage and memory. Memory is reset even when clearing
// storage fails; the error is returned.
func (m *Manager) Logout(ctx context.Context) (models.Session, error) {
	m.mu.Lock()
	if m.state == StateLoading {
		m.mu.Unlock()
		return models.Session{}, ErrNotRestored
	}
	err := m.store.Clear(ctx)
	m.current = models.Session{}
	m.state = StateUnauthenticated
	m.mu.Unlock()

	m.publish(models.Session{})
	if err != nil {
		return models.Session{}, fmt.Errorf("logout: %w", err)
	}
	m.log.Info(ctx, "logged out")
	return models.Session{}, nil
}

// Expire forgets the in-memory session without touching storage. It is
// used after the request client has already cleared a rejected token.
func (m *Manager) Expire(ctx context.Context) models.Session {
	m.mu.Lock()
	wasAuth := m.state == StateAuthenticated
	m.current = models.Session{}
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if wasAuth {
		m.log.Warn(ctx, "session expired by the server")
	}
	m.publish(models.Session{})
	return models.Session{}
}

// Subscribe registers fn for every transition and returns a function that
// removes it.
func (m *Manager) Subscribe(fn func(models.Session)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) publish(s models.Session) {
	m.subsMu.Lock()
	fns := make([]func(models.Session), 0, len(m.subs))
	for i := 0; i < m.nextID; i++ {
		if fn, ok := m.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(copySession(s))
	}
}

func copySession(s models.Session) models.Session {
	if s.User == nil {
		return s
	}
	u := *s.User
	return models.Session{User: &u, Token: s.Token}
}
