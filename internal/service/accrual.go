package service

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Accrual defaults.
const (
	DefaultBufferDelay = 800 * time.Millisecond
	DefaultTickPeriod  = 100 * time.Millisecond
	DefaultBaseRate    = 0.5 // reward units per second at 1x speed
)

// SpeedModifier pairs a playback speed with its accrual multiplier.
type SpeedModifier struct {
	Speed      float64
	Multiplier float64
}

// DefaultSpeedModifiers reward slower, more attentive playback and
// penalize skimming at higher speed.
func DefaultSpeedModifiers() []SpeedModifier {
	return []SpeedModifier{
		{Speed: 0.75, Multiplier: 1.05},
		{Speed: 1.0, Multiplier: 1.00},
		{Speed: 1.25, Multiplier: 0.90},
		{Speed: 1.5, Multiplier: 0.80},
	}
}

// AccrualConfig configures an AccrualEngine. Zero values fall back to
// the defaults above.
type AccrualConfig struct {
	BufferDelay    time.Duration
	TickPeriod     time.Duration
	BaseRate       float64
	SpeedModifiers []SpeedModifier
	Now            func() time.Time
}

type accrualState int

const (
	accrualIdle accrualState = iota
	accrualBuffering
	accrualEarning
	accrualPaused
)

// AccrualEngine is a per-content continuous reward accumulator. Accrual
// only begins after a sustained-engagement buffer delay, which denies
// reward to rapid scroll-past playback. While earning, a periodic tick
// converts elapsed real time into sub-unit reward; whole units are
// emitted through the callback and the fraction is retained, so the
// caller never sees fractional reward and no accrued fraction is lost.
type AccrualEngine struct {
	mu    sync.Mutex
	cfg   AccrualConfig
	sched Scheduler
	emit  func(units float64)

	state        accrualState
	accumulated  float64
	speed        float64
	lastTick     time.Time
	cancelBuffer func()
	cancelTick   func()
}

// NewAccrualEngine creates an engine that reports earned units through
// emit. The callback is always invoked without internal locks held.
func NewAccrualEngine(cfg AccrualConfig, sched Scheduler, emit func(units float64)) *AccrualEngine {
	if cfg.BufferDelay <= 0 {
		cfg.BufferDelay = DefaultBufferDelay
	}
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = DefaultTickPeriod
	}
	if cfg.BaseRate <= 0 {
		cfg.BaseRate = DefaultBaseRate
	}
	if len(cfg.SpeedModifiers) == 0 {
		cfg.SpeedModifiers = DefaultSpeedModifiers()
	}
	sort.Slice(cfg.SpeedModifiers, func(i, j int) bool {
		return cfg.SpeedModifiers[i].Speed < cfg.SpeedModifiers[j].Speed
	})
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if emit == nil {
		emit = func(float64) {}
	}
	return &AccrualEngine{
		cfg:   cfg,
		sched: sched,
		emit:  emit,
		speed: 1.0,
	}
}

// Start begins the buffer delay before earning. Calling Start while
// already buffering or earning is a no-op.
func (e *AccrualEngine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == accrualBuffering || e.state == accrualEarning {
		return
	}
	e.state = accrualBuffering
	e.cancelBuffer = e.sched.After(e.cfg.BufferDelay, e.beginEarning)
}

func (e *AccrualEngine) beginEarning() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != accrualBuffering {
		return
	}
	e.state = accrualEarning
	e.lastTick = e.cfg.Now()
	e.cancelTick = e.sched.Every(e.cfg.TickPeriod, e.tick)
}

func (e *AccrualEngine) tick() {
	e.mu.Lock()
	if e.state != accrualEarning {
		e.mu.Unlock()
		return
	}
	nowT := e.cfg.Now()
	elapsed := nowT.Sub(e.lastTick).Seconds()
	e.lastTick = nowT
	if elapsed > 0 {
		e.accumulated += elapsed * e.cfg.BaseRate * e.modifierFor(e.speed)
	}

	var whole float64
	if e.accumulated >= 1 {
		whole = math.Floor(e.accumulated)
		e.accumulated -= whole
	}
	e.mu.Unlock()

	if whole > 0 {
		e.emit(whole)
	}
}

// SetSpeed updates the playback speed used for the rate modifier.
func (e *AccrualEngine) SetSpeed(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = speed
}

// Pause cancels the buffer and tick timers but preserves the sub-unit
// accumulator; resuming does not lose partial progress.
func (e *AccrualEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimersLocked()
	e.state = accrualPaused
}

// Stop cancels all timers and discards accrued progress entirely. Used
// when switching content.
func (e *AccrualEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimersLocked()
	e.state = accrualIdle
	e.accumulated = 0
}

// Flush emits whatever remains in the accumulator, fractional or not,
// zeroes it, and returns the emitted amount. Used when leaving a view so
// a sub-threshold remainder is not silently dropped.
func (e *AccrualEngine) Flush() float64 {
	e.mu.Lock()
	remainder := e.accumulated
	e.accumulated = 0
	e.mu.Unlock()

	if remainder > 0 {
		e.emit(remainder)
	}
	return remainder
}

// Pending returns the current sub-unit accumulator value.
func (e *AccrualEngine) Pending() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.accumulated
}

// Close cancels all timers. Must be called on teardown so no tick keeps
// firing against a detached engine.
func (e *AccrualEngine) Close() {
	e.Stop()
}

// cancelTimersLocked stops both timers; cancelling an absent timer is a
// no-op. Caller holds mu.
func (e *AccrualEngine) cancelTimersLocked() {
	if e.cancelBuffer != nil {
		e.cancelBuffer()
		e.cancelBuffer = nil
	}
	if e.cancelTick != nil {
		e.cancelTick()
		e.cancelTick = nil
	}
}

// modifierFor selects the multiplier of the configured speed numerically
// closest to the given playback speed. Ties keep the first match in
// ascending speed order. Caller holds mu.
func (e *AccrualEngine) modifierFor(speed float64) float64 {
	mods := e.cfg.SpeedModifiers
	best := mods[0]
	bestDiff := math.Abs(mods[0].Speed - speed)
	for _, m := range mods[1:] {
		diff := math.Abs(m.Speed - speed)
		if diff < bestDiff {
			best = m
			bestDiff = diff
		}
	}
	return best.Multiplier
}
