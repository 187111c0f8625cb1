package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ErrNoAuthorizationHeader is returned when a request carries no
// Authorization header.
var ErrNoAuthorizationHeader = errors.New("no authorization header provided")

// DefaultSessionTimeout is how long an idle session stays valid.
const DefaultSessionTimeout = 24 * time.Hour

// sessionInfo tracks session metadata for cleanup.
type sessionInfo struct {
	account    string
	lastAccess time.Time
}

// SessionIDManager maps Bearer tokens to accounts so multiple users can share
// one HTTP server instance. Sessions expire after a period of inactivity.
type SessionIDManager struct {
	sessions       map[string]*sessionInfo
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan struct{}
	sessionTimeout time.Duration
	logger         *slog.Logger
	metrics        func(delta int64)
}

// NewSessionIDManager creates a session manager with the default timeout.
func NewSessionIDManager() *SessionIDManager {
	return NewSessionIDManagerWithLogger(DefaultSessionTimeout, slog.Default())
}

// NewSessionIDManagerWithLogger creates a session manager with a custom
// timeout and logger.
func NewSessionIDManagerWithLogger(timeout time.Duration, logger *slog.Logger) *SessionIDManager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &SessionIDManager{
		sessions:       make(map[string]*sessionInfo),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan struct{}),
		sessionTimeout: timeout,
		logger:         logger,
	}

	go m.cleanupExpiredSessions()

	return m
}

// SetSessionGauge installs a callback invoked with +1/-1 as sessions come and
// go, used to drive the active sessions metric.
func (m *SessionIDManager) SetSessionGauge(fn func(delta int64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = fn
}

// ResolveSessionID derives a stable session ID from the request's
// Authorization header.
func (m *SessionIDManager) ResolveSessionID(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthorizationHeader
	}

	return m.generateSessionID(authHeader), nil
}

// GetAccountForSession returns the account associated with a session ID,
// refreshing its last access time. The second return reports whether the
// session is known; unknown sessions map to "default".
func (m *SessionIDManager) GetAccountForSession(sessionID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info, ok := m.sessions[sessionID]; ok {
		info.lastAccess = time.Now()
		return info.account, true
	}
	return "default", false
}

// SetAccountForSession associates an account with a session ID.
func (m *SessionIDManager) SetAccountForSession(sessionID, account string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; !exists && m.metrics != nil {
		m.metrics(1)
	}
	m.sessions[sessionID] = &sessionInfo{
		account:    account,
		lastAccess: time.Now(),
	}
}

func (m *SessionIDManager) generateSessionID(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// RemoveSession removes a session from the manager.
func (m *SessionIDManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; exists && m.metrics != nil {
		m.metrics(-1)
	}
	delete(m.sessions, sessionID)
}

// ListSessions returns all active session IDs.
func (m *SessionIDManager) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]string, 0, len(m.sessions))
	for sessionID := range m.sessions {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

func (m *SessionIDManager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.mu.Lock()
			now := time.Now()
			expiredCount := 0
			for sessionID, info := range m.sessions {
				if now.Sub(info.lastAccess) > m.sessionTimeout {
					delete(m.sessions, sessionID)
					if m.metrics != nil {
						m.metrics(-1)
					}
					expiredCount++
				}
			}
			m.mu.Unlock()
			if expiredCount > 0 {
				m.logger.Info("Cleaned up expired sessions", "count", expiredCount)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop stops the cleanup goroutine.
func (m *SessionIDManager) Stop() {
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}
	if m.cleanupDone != nil {
		close(m.cleanupDone)
	}
}
