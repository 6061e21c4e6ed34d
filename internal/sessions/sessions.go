// Package sessions keeps one picker per visitor, keyed by a cookie.
package sessions

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kartoza/symptom-checker/internal/logging"
	"github.com/kartoza/symptom-checker/internal/metrics"
	"github.com/kartoza/symptom-checker/internal/picker"
)

// CookieName is the cookie carrying the session id
const CookieName = "symptom_session"

// Session is one visitor's picker
type Session struct {
	ID        string
	CreatedAt time.Time
	Picker    *picker.Picker
}

// Factory builds the picker for a new session
type Factory func() *picker.Picker

// Config configures a Store
type Config struct {
	TTL         time.Duration
	MaxSessions int
	NewPicker   Factory
	Logger      logging.Logger
	Metrics     *metrics.Metrics
}

// Store holds live sessions in memory. Idle sessions expire after TTL and
// the least recently used one is evicted once MaxSessions is reached.
type Store struct {
	cache     *expirable.LRU[string, *Session]
	ttl       time.Duration
	newPicker Factory
	logger    logging.Logger
	metrics   *metrics.Metrics
}

// NewStore creates a session store
func NewStore(cfg Config) (*Store, error) {
	if cfg.NewPicker == nil {
		return nil, errors.New("sessions: picker factory is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("sessions: ttl must be positive")
	}
	if cfg.MaxSessions <= 0 {
		return nil, errors.New("sessions: max sessions must be positive")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	s := &Store{
		ttl:       cfg.TTL,
		newPicker: cfg.NewPicker,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
	s.cache = expirable.NewLRU[string, *Session](cfg.MaxSessions, s.onEvict, cfg.TTL)
	return s, nil
}

func (s *Store) onEvict(id string, sess *Session) {
	if !sess.Picker.Close() {
		return
	}
	s.metrics.SessionClosed()
	s.logger.Debug("session closed", logging.String("session_id", id))
}

// Create starts a new session
func (s *Store) Create() *Session {
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Picker:    s.newPicker(),
	}
	s.cache.Add(sess.ID, sess)
	s.metrics.SessionOpened()
	s.logger.Debug("session opened", logging.String("session_id", sess.ID))
	return sess
}

// Get returns a live session and extends its lifetime
func (s *Store) Get(id string) (*Session, bool) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	s.cache.Add(id, sess)

	// Expiry may have closed the session between the lookup and the re-add
	if sess.Picker.Closed() {
		s.cache.Remove(id)
		return nil, false
	}
	return sess, true
}

// Delete ends a session
func (s *Store) Delete(id string) {
	s.cache.Remove(id)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return s.cache.Len()
}

// Close ends every session
func (s *Store) Close() {
	s.cache.Purge()
}

// GetOrCreate resolves the session named by the request cookie, starting a
// new one (and setting the cookie) when it is missing or expired.
func (s *Store) GetOrCreate(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(CookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			if sess, ok := s.Get(c.Value); ok {
				return sess
			}
		}
	}

	sess := s.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}
