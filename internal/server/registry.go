package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// finishedLinger is how long an ended match stays resolvable before the
// cleanup loop removes it.
const finishedLinger = 5 * time.Minute

// Registry manages all active match instances: an explicit mapping from
// match identifier to an owned engine, created on match start and
// removed on termination or idleness. Concurrent matches are fully
// independent.
type Registry struct {
	mu          sync.RWMutex
	matches     map[string]*Match
	maxMatches  int
	idleTimeout time.Duration
	logger      zerolog.Logger
}

// NewRegistry creates a registry and starts its cleanup loop.
func NewRegistry(maxMatches int, idleTimeout time.Duration, logger zerolog.Logger) *Registry {
	r := &Registry{
		matches:     make(map[string]*Match),
		maxMatches:  maxMatches,
		idleTimeout: idleTimeout,
		logger:      logger.With().Str("component", "registry").Logger(),
	}
	go r.runCleanup()
	return r
}

// CreateMatch allocates a new match with a generated identifier.
func (r *Registry) CreateMatch(settings MatchSettings) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxMatches > 0 && len(r.matches) >= r.maxMatches {
		r.logger.Warn().
			Int("current_matches", len(r.matches)).
			Int("max_matches", r.maxMatches).
			Msg("Rejecting match creation - server at capacity")
		return nil, fmt.Errorf("server at capacity: %d/%d matches active", len(r.matches), r.maxMatches)
	}

	id := uuid.NewString()
	m := NewMatch(id, settings, r.logger)
	r.matches[id] = m
	r.logger.Info().Str("match_id", id).Int("active_matches", len(r.matches)).Msg("Match created")
	return m, nil
}

// Get returns the match for an identifier.
func (r *Registry) Get(id string) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[id]
	return m, ok
}

// Remove drops a match from the registry, stopping its timer and hub.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.matches[id]; ok {
		delete(r.matches, id)
		m.Close()
		r.logger.Info().Str("match_id", id).Msg("Match removed")
	}
}

// Count returns the number of active matches.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

// runCleanup periodically removes finished and abandoned matches.
func (r *Registry) runCleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		r.cleanupOnce(time.Now())
	}
}

func (r *Registry) cleanupOnce(now time.Time) {
	r.mu.RLock()
	var stale []string
	for id, m := range r.matches {
		idle := now.Sub(m.LastActive())
		if (m.Finished() && idle > finishedLinger) || idle > r.idleTimeout {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range stale {
		r.Remove(id)
	}
}
