// Package session holds per-user dashboard context: the coordinate and
// disaster type chosen in the prediction view, read back by the resource
// tracking view.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-relief/internal/domain"
	"github.com/couchcryptid/disaster-relief/internal/observability"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// ErrNoLocation is returned when a session has no coordinate recorded yet.
var ErrNoLocation = errors.New("session has no location")

// Session is one user's dashboard context.
type Session struct {
	ID           string             `json:"session_id"`
	Location     *domain.Coordinate `json:"location,omitempty"`
	DisasterType domain.Model       `json:"disaster_type,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	LastSeen     time.Time          `json:"last_seen"`
}

// Manager stores sessions in memory and expires them after an idle TTL.
type Manager struct {
	sessions map[string]Session
	mu       sync.Mutex
	ttl      time.Duration
	clock    clockwork.Clock
	metrics  *observability.Metrics
}

// NewManager creates an empty session manager.
func NewManager(ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *Manager {
	return &Manager{
		sessions: make(map[string]Session),
		ttl:      ttl,
		clock:    clock,
		metrics:  metrics,
	}
}

// Create starts a new session with no location.
func (m *Manager) Create() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now().UTC()
	s := Session{ID: uuid.NewString(), CreatedAt: now, LastSeen: now}
	m.sessions[s.ID] = s
	m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return s
}

// Get returns the session and marks it as used.
func (m *Manager) Get(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	s.LastSeen = m.clock.Now().UTC()
	m.sessions[id] = s
	return s, nil
}

// Location returns the coordinate recorded on the session.
func (m *Manager) Location(id string) (domain.Coordinate, error) {
	s, err := m.Get(id)
	if err != nil {
		return domain.Coordinate{}, err
	}
	if s.Location == nil {
		return domain.Coordinate{}, ErrNoLocation
	}
	return *s.Location, nil
}

// Record stores the coordinate and disaster type of the latest prediction.
func (m *Manager) Record(id string, model domain.Model, loc domain.Coordinate) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	s.Location = &loc
	s.DisasterType = model
	s.LastSeen = m.clock.Now().UTC()
	m.sessions[id] = s
	return s, nil
}

// Clear removes the session.
func (m *Manager) Clear(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops every expired session and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	removed := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return removed
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.Sweep()
		}
	}
}

// lookup must be called with mu held.
func (m *Manager) lookup(id string) (Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if m.expired(s, m.clock.Now()) {
		delete(m.sessions, id)
		m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *Manager) expired(s Session, now time.Time) bool {
	return now.Sub(s.LastSeen) > m.ttl
}
