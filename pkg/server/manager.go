package server

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/reflow/pkg/protocol"
)

// ErrTooManySessions is returned by Create when MaxSessions is reached.
var ErrTooManySessions = errors.New("server: too many sessions")

// SessionManager tracks active sessions.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	config      *SessionConfig
	maxSessions int
	hooks       Hooks

	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peakSessions int

	base   *slog.Logger
	logger *slog.Logger
}

// ManagerStats is a snapshot of the manager counters.
type ManagerStats struct {
	Active       int
	Peak         int
	TotalCreated uint64
	TotalClosed  uint64
}

// NewSessionManager creates a SessionManager. maxSessions of 0 means no
// limit.
func NewSessionManager(config *SessionConfig, maxSessions int, hooks Hooks, logger *slog.Logger) *SessionManager {
	if config == nil {
		config = DefaultSessionConfig()
	}
	if hooks == nil {
		hooks = NopHooks{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		config:      config,
		maxSessions: maxSessions,
		hooks:       hooks,
		base:        logger,
		logger:      logger.With("component", "session_manager"),
	}
}

// Create registers a session for conn. The session removes itself when it
// closes.
func (sm *SessionManager) Create(conn *websocket.Conn) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.maxSessions > 0 && len(sm.sessions) >= sm.maxSessions {
		return nil, ErrTooManySessions
	}

	s := newSession(conn, sm.config, sm.base, sm.hooks)
	s.onClose = sm.remove
	sm.sessions[s.ID] = s
	sm.totalCreated.Add(1)
	if n := len(sm.sessions); n > sm.peakSessions {
		sm.peakSessions = n
	}
	return s, nil
}

func (sm *SessionManager) remove(s *Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, ok := sm.sessions[s.ID]; ok {
		delete(sm.sessions, s.ID)
		sm.totalClosed.Add(1)
	}
}

// Get returns the session with id, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// IDs returns the ids of the active sessions, sorted.
func (sm *SessionManager) IDs() []string {
	sm.mu.RLock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	sm.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Stats returns a snapshot of the manager counters.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		Peak:         sm.peakSessions,
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
	}
}

// Shutdown sends reason to every session and closes it.
func (sm *SessionManager) Shutdown(reason protocol.CloseReason) {
	sm.mu.RLock()
	sessions := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	for _, s := range sessions {
		s.SendClose(reason)
		s.Close()
	}
	sm.logger.Info("sessions closed", "count", len(sessions))
}
