package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goliatone/go-formwizard/pkg/stepform"
)

// WizardFactory builds a fresh wizard for a new session. The server passes
// options that attach its logger and metrics observer.
type WizardFactory func(ctx context.Context, options ...stepform.Option) (*stepform.Wizard, error)

type session struct {
	wizard   *stepform.Wizard
	lastSeen time.Time
}

// sessions keeps one wizard per cookie in memory. Sessions idle for longer
// than ttl are dropped, and once limit sessions exist the least recently seen
// one makes room for a new one.
type sessions struct {
	mu      sync.Mutex
	entries map[string]*session
	factory WizardFactory
	options []stepform.Option
	ttl     time.Duration
	limit   int
	now     func() time.Time
}

func newSessions(factory WizardFactory, ttl time.Duration, limit int, options ...stepform.Option) *sessions {
	return &sessions{
		entries: make(map[string]*session),
		factory: factory,
		options: options,
		ttl:     ttl,
		limit:   limit,
		now:     time.Now,
	}
}

// lookup returns the live wizard for id and marks it as seen.
func (s *sessions) lookup(id string) (*stepform.Wizard, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(entry, now) {
		delete(s.entries, id)
		return nil, false
	}
	entry.lastSeen = now
	return entry.wizard, true
}

// create starts a session and returns its id and the number of sessions
// evicted to make room for it.
func (s *sessions) create(ctx context.Context) (string, *stepform.Wizard, int, error) {
	w, err := s.factory(ctx, s.options...)
	if err != nil {
		return "", nil, 0, fmt.Errorf("server: create wizard: %w", err)
	}
	id, err := newSessionID()
	if err != nil {
		return "", nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	evicted := s.sweep(now)
	for s.limit > 0 && len(s.entries) >= s.limit {
		s.evictOldest()
		evicted++
	}
	s.entries[id] = &session{wizard: w, lastSeen: now}
	return id, w, evicted, nil
}

func (s *sessions) expired(entry *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(entry.lastSeen) > s.ttl
}

// sweep drops expired sessions. Callers hold s.mu.
func (s *sessions) sweep(now time.Time) int {
	dropped := 0
	for id, entry := range s.entries {
		if s.expired(entry, now) {
			delete(s.entries, id)
			dropped++
		}
	}
	return dropped
}

// evictOldest drops the least recently seen session. Callers hold s.mu.
func (s *sessions) evictOldest() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, entry := range s.entries {
		if oldestID == "" || entry.lastSeen.Before(oldest) {
			oldestID, oldest = id, entry.lastSeen
		}
	}
	delete(s.entries, oldestID)
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func newSessionID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("server: session id: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

// existingWizard resolves the caller's wizard without starting a session.
func (srv *Server) existingWizard(r *http.Request) (*stepform.Wizard, bool) {
	cookie, err := r.Cookie(srv.cookieName)
	if err != nil {
		return nil, false
	}
	return srv.sessions.lookup(cookie.Value)
}

// wizardFor resolves the caller's wizard, starting a session and setting the
// cookie when the request carries none or an unknown id. Only page views
// start sessions.
func (srv *Server) wizardFor(w http.ResponseWriter, r *http.Request) (*stepform.Wizard, error) {
	if wizard, ok := srv.existingWizard(r); ok {
		return wizard, nil
	}

	id, wizard, evicted, err := srv.sessions.create(r.Context())
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     srv.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	srv.metrics.sessions.Set(float64(srv.sessions.len()))
	if evicted > 0 {
		srv.metrics.evictions.Add(float64(evicted))
	}
	srv.logger.Debug().Str("session", id).Int("evicted", evicted).Msg("session started")
	return wizard, nil
}
