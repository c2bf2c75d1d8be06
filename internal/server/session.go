package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/registration"
)

// SessionCookie carries the session id between requests.
const SessionCookie = "courseform_session"

// session owns one visitor's form. mu serialises requests for the same
// visitor so a field update and the action that follows it apply together.
type session struct {
	id        string
	mu        sync.Mutex
	component *registration.Component
	notice    string
	lastSeen  time.Time
}

// takeNotice returns the pending rejection notice and clears it. Callers
// hold s.mu.
func (s *session) takeNotice() string {
	notice := s.notice
	s.notice = ""
	return notice
}

// ComponentFactory builds the form for a new session. The notifier records
// rejection notices on the session.
type ComponentFactory func(id string, notifier registration.Notifier) *registration.Component

// Sessions is an in-memory session table. Idle sessions are dropped after
// the TTL and their form state is discarded.
type Sessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
	build    ComponentFactory
	sessions map[string]*session
	logger   *zap.Logger
}

// NewSessions creates a session table.
func NewSessions(ttl time.Duration, build ComponentFactory, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if build == nil {
		build = func(_ string, notifier registration.Notifier) *registration.Component {
			return registration.New(registration.WithNotifier(notifier))
		}
	}
	return &Sessions{
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
		build:    build,
		sessions: make(map[string]*session),
		logger:   logger,
	}
}

// Acquire returns the caller's session, creating one (and setting the
// cookie) when the request has none or it expired.
func (s *Sessions) Acquire(w http.ResponseWriter, r *http.Request) *session {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.sessions[cookie.Value]; ok {
			if now.Sub(sess.lastSeen) < s.ttl {
				sess.lastSeen = now
				return sess
			}
			delete(s.sessions, cookie.Value)
		}
	}

	sess := &session{id: s.newID(), lastSeen: now}
	sess.component = s.build(sess.id, registration.NotifierFunc(func(_ context.Context, notice registration.Notice) error {
		sess.notice = notice.Message
		return nil
	}))
	s.sessions[sess.id] = sess
	s.logger.Debug("session created", zap.String("session", sess.id))

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl / time.Second),
	})
	return sess
}

// Evict drops sessions idle for at least the TTL and reports how many were
// removed.
func (s *Sessions) Evict() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) >= s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("sessions evicted", zap.Int("count", removed), zap.Int("remaining", len(s.sessions)))
	}
	return removed
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts idle sessions every interval until ctx is done.
func (s *Sessions) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl
	}
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Evict()
		}
	}
}
