package service

import (
	"math"
	"sync"
	"time"
)

const (
	// ScoreFloor and ScoreCeiling bound the trust score. The floor is
	// above zero so a session can always climb back out.
	ScoreFloor   = 0.3
	ScoreCeiling = 100.0

	// DecayPerMinute is the linear decay applied per minute of
	// wall-clock time since the last read or mutation.
	DecayPerMinute = 0.02

	// DefaultInitialScore is where a fresh session starts.
	DefaultInitialScore = 1.0
)

// TrustStore holds the process-wide decaying trust score. Decay is
// pull-based: it is computed lazily from elapsed time whenever the score
// is read or mutated, not by a background timer. The score is a soft
// session signal and is intentionally not persisted; authoritative trust
// state lives server-side.
type TrustStore struct {
	mu       sync.Mutex
	score    float64
	lastTick time.Time
	now      func() time.Time
}

// NewTrustStore creates a store starting at the given score, clamped to
// the valid range.
func NewTrustStore(initial float64) *TrustStore {
	return NewTrustStoreWithClock(initial, time.Now)
}

// NewTrustStoreWithClock creates a store with an injected clock so tests
// can advance virtual time deterministically.
func NewTrustStoreWithClock(initial float64, now func() time.Time) *TrustStore {
	return &TrustStore{
		score:    clampScore(initial),
		lastTick: now(),
		now:      now,
	}
}

// Read applies decay for the elapsed time since the last observation,
// advances the decay timestamp, and returns the clamped score rounded to
// two decimal places.
func (s *TrustStore) Read() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decayLocked()
	return round2(s.score)
}

// Mutate applies decay for elapsed time, then adds delta and clamps. The
// decay timestamp is reset so already-elapsed time is never decayed twice.
func (s *TrustStore) Mutate(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decayLocked()
	s.score = clampScore(s.score + delta)
	return round2(s.score)
}

// decayLocked folds elapsed wall-clock time into the score. Caller holds mu.
func (s *TrustStore) decayLocked() {
	nowT := s.now()
	minutes := nowT.Sub(s.lastTick).Minutes()
	if minutes > 0 {
		s.score = clampScore(s.score - minutes*DecayPerMinute)
	}
	s.lastTick = nowT
}

func clampScore(v float64) float64 {
	return math.Min(math.Max(v, ScoreFloor), ScoreCeiling)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
