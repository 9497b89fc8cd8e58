// Package tracker counts cache, synthesis, and playback outcomes during a run.
package tracker

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// Component names used as tracker keys.
const (
	ComponentClips      = "clips"
	ComponentElevenLabs = "elevenlabs"
	ComponentAudio      = "audio"
)

// Tracker tracks usage statistics per component.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*Stats
}

// Stats holds counters for a specific component.
// Fields are accessed atomically.
type Stats struct {
	CacheHits        int64
	CacheMisses      int64
	APISuccess       int64
	APIFailures      int64
	PlaybackFailures int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*Stats),
	}
}

// getStats returns the stats object for a component, creating it if needed.
func (t *Tracker) getStats(component string) *Stats {
	t.mu.RLock()
	s, ok := t.stats[component]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.stats[component]; ok {
		return s
	}
	s = &Stats{}
	t.stats[component] = s
	return s
}

// TrackCacheHit increments the cache hit counter.
func (t *Tracker) TrackCacheHit(component string) {
	if t == nil {
		return
	}
	atomic.AddInt64(&t.getStats(component).CacheHits, 1)
}

func (t *Tracker) TrackCacheMiss(component string) {
	if t == nil {
		return
	}
	atomic.AddInt64(&t.getStats(component).CacheMisses, 1)
}

func (t *Tracker) TrackAPISuccess(component string) {
	if t == nil {
		return
	}
	atomic.AddInt64(&t.getStats(component).APISuccess, 1)
}

func (t *Tracker) TrackAPIFailure(component string) {
	if t == nil {
		return
	}
	atomic.AddInt64(&t.getStats(component).APIFailures, 1)
}

func (t *Tracker) TrackPlaybackFailure(component string) {
	if t == nil {
		return
	}
	atomic.AddInt64(&t.getStats(component).PlaybackFailures, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]Stats, len(t.stats))
	for k, v := range t.stats {
		result[k] = Stats{
			CacheHits:        atomic.LoadInt64(&v.CacheHits),
			CacheMisses:      atomic.LoadInt64(&v.CacheMisses),
			APISuccess:       atomic.LoadInt64(&v.APISuccess),
			APIFailures:      atomic.LoadInt64(&v.APIFailures),
			PlaybackFailures: atomic.LoadInt64(&v.PlaybackFailures),
		}
	}
	return result
}

// LogSummary writes one line per component at INFO level, sorted by name.
func (t *Tracker) LogSummary(logger *slog.Logger) {
	snap := t.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := snap[name]
		logger.Info("Usage summary",
			"component", name,
			"cache_hits", s.CacheHits,
			"cache_misses", s.CacheMisses,
			"api_success", s.APISuccess,
			"api_failures", s.APIFailures,
			"playback_failures", s.PlaybackFailures)
	}
}
