// internal/query/sessions.go
package query

import (
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/xid"

	"github-profile-finder/internal/metrics"
)

// Sessions keeps one Controller per browser session. The least recently used
// session is dropped once the limit is reached; its in-flight lookup still
// settles but nobody reads the result.
type Sessions struct {
	cache   *lru.Cache
	fetcher ProfileFetcher
	logger  *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// NewSessions creates a session store holding at most size controllers.
func NewSessions(size int, fetcher ProfileFetcher, logger *slog.Logger, m *metrics.Metrics, timeout time.Duration) (*Sessions, error) {
	s := &Sessions{
		fetcher: fetcher,
		logger:  logger,
		metrics: m,
		timeout: timeout,
	}

	cache, err := lru.NewWithEvict(size, s.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// Get returns the controller for id, if the session is still held.
func (s *Sessions) Get(id string) (*Controller, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Controller), true
}

// Create starts a new Idle session and returns its id.
func (s *Sessions) Create() (string, *Controller) {
	id := xid.New().String()
	c := NewController(s.fetcher, s.logger.With("session", id), s.metrics, s.timeout)
	s.cache.Add(id, c)
	s.metrics.SetSessions(s.cache.Len())
	s.logger.Debug("Session created", "session", id)
	return id, c
}

// GetOrCreate returns the controller for id, creating a fresh session (with a
// new id) when id is unknown or was evicted.
func (s *Sessions) GetOrCreate(id string) (string, *Controller, bool) {
	if c, ok := s.Get(id); ok {
		return id, c, false
	}
	newID, c := s.Create()
	return newID, c, true
}

func (s *Sessions) Len() int {
	return s.cache.Len()
}

func (s *Sessions) onEvict(key, _ interface{}) {
	s.logger.Debug("Session evicted", "session", key)
}
