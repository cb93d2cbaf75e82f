// Package session maps externally supplied session handles to transient
// conversation state and a bound AI Person. Sessions move through
// absent -> active -> (cleared | expired); expiry and explicit clears
// consolidate short-term memory into the bound Person before discarding.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/memory"
)

// Config holds session lifecycle settings.
type Config struct {
	// Timeout is the inactivity age after which a session expires.
	Timeout time.Duration

	// SweepInterval is how often the background sweep runs.
	SweepInterval time.Duration
}

// Defaults matching the original backend's constants.
const (
	DefaultTimeout       = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// Session is the transient per-handle state. Messages live in the
// memory store's short-term buffer; the session holds the Person
// binding and activity stamps. Never persisted.
type Session struct {
	ID           string    `json:"sessionId"`
	PersonID     string    `json:"aiPersonId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// Manager owns all sessions, keyed by session id.
type Manager struct {
	cfg    Config
	memory *memory.Store

	mu       sync.Mutex
	sessions map[string]*Session

	// Per-session locks serialize mutation + consolidation sequences so
	// the sweep never races an in-flight request for the same session.
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewManager creates a session manager over the given memory store.
func NewManager(cfg Config, mem *memory.Store) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &Manager{
		cfg:      cfg,
		memory:   mem,
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *Manager) sessionLock(sessionID string) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	lk, ok := m.locks[sessionID]
	if !ok {
		lk = &sync.Mutex{}
		m.locks[sessionID] = lk
	}
	return lk
}

// releaseSessionLock drops the lock entry for a discarded session so the
// map does not grow with every session id ever seen.
func (m *Manager) releaseSessionLock(sessionID string) {
	m.lockMu.Lock()
	delete(m.locks, sessionID)
	m.lockMu.Unlock()
}

// GetOrCreate transitions absent -> active, stamping creation and
// activity times. An existing session is touched.
func (m *Manager) GetOrCreate(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		now := time.Now().UTC()
		s = &Session{ID: sessionID, CreatedAt: now, LastActivity: now}
		m.sessions[sessionID] = s
		log.Printf("[SESSION] Created session %s", sessionID)
		return copySession(s)
	}
	s.LastActivity = time.Now().UTC()
	return copySession(s)
}

func copySession(s *Session) *Session {
	c := *s
	return &c
}

// Get returns the session if it is active.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return copySession(s), true
}

// Append adds a message to the session's short-term buffer, creating
// the session if absent and refreshing its activity stamp.
func (m *Manager) Append(sessionID, role, content string) {
	lk := m.sessionLock(sessionID)
	lk.Lock()
	defer lk.Unlock()

	m.GetOrCreate(sessionID)
	m.memory.Append(sessionID, role, content)
}

// Bind attaches the session to a Person. Rebinding to a different
// Person first consolidates the buffered messages into the previously
// bound Person and clears the buffer, so messages are never attributed
// across Persons.
func (m *Manager) Bind(ctx context.Context, sessionID, personID string) error {
	lk := m.sessionLock(sessionID)
	lk.Lock()
	defer lk.Unlock()

	m.GetOrCreate(sessionID)

	m.mu.Lock()
	s := m.sessions[sessionID]
	previous := s.PersonID
	m.mu.Unlock()

	if previous != "" && previous != personID {
		if len(m.memory.Messages(sessionID)) > 0 {
			log.Printf("[SESSION] Rebinding %s from %s to %s, consolidating first",
				sessionID, previous, personID)
			if err := m.memory.Consolidate(ctx, sessionID, previous); err != nil {
				return err
			}
		}
		m.memory.ClearShortTerm(sessionID)
	}

	m.mu.Lock()
	s.PersonID = personID
	s.LastActivity = time.Now().UTC()
	m.mu.Unlock()
	m.memory.Bind(sessionID, personID)
	return nil
}

// Clear consolidates the session into its bound Person (if any) and
// discards it. Clearing an absent session is a no-op success.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	lk := m.sessionLock(sessionID)
	// Registered first so the entry is dropped after lk unlocks.
	defer m.releaseSessionLock(sessionID)
	lk.Lock()
	defer lk.Unlock()

	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	var personID string
	if ok {
		personID = s.PersonID
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		log.Printf("[SESSION] Clear of absent session %s (no-op)", sessionID)
		return nil
	}

	var err error
	if personID != "" && len(m.memory.Messages(sessionID)) > 0 {
		err = m.memory.Consolidate(ctx, sessionID, personID)
	}
	m.memory.ClearShortTerm(sessionID)
	log.Printf("[SESSION] Cleared session %s", sessionID)
	return err
}

// IsBound reports whether any active session is bound to the Person.
// Installed as the person store's bound checker.
func (m *Manager) IsBound(personID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.PersonID == personID {
			return true
		}
	}
	return false
}

// Unbind detaches every session bound to the Person without
// consolidating. Used when a Person's memory is being deleted.
func (m *Manager) Unbind(personID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.PersonID == personID {
			s.PersonID = ""
		}
	}
}

// ActiveCount returns the number of active sessions.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep runs one expiry pass: sessions whose inactivity age exceeds the
// timeout are consolidated into their bound Person and discarded.
func (m *Manager) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-m.cfg.Timeout)

	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.LastActivity.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		log.Printf("[SESSION] Expiring inactive session %s", id)
		if err := m.Clear(ctx, id); err != nil {
			log.Printf("[SESSION] Consolidation on expiry of %s failed: %v", id, err)
		}
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}
