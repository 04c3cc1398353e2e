package service

import "sync"

// AccrualManager owns the per-(session, content) accrual engines behind
// the accrual API. Engines are created lazily on first use and share one
// scheduler and config. Emitted units are forwarded with their video id
// so the caller can credit the right ledger record.
type AccrualManager struct {
	mu      sync.Mutex
	engines map[string]map[string]*AccrualEngine

	cfg   AccrualConfig
	sched Scheduler
	emit  func(videoID string, units float64)
}

func NewAccrualManager(cfg AccrualConfig, sched Scheduler, emit func(videoID string, units float64)) *AccrualManager {
	if sched == nil {
		sched = NewWallScheduler()
	}
	if emit == nil {
		emit = func(string, float64) {}
	}
	return &AccrualManager{
		engines: make(map[string]map[string]*AccrualEngine),
		cfg:     cfg,
		sched:   sched,
		emit:    emit,
	}
}

func (m *AccrualManager) engine(sessionID, videoID string) *AccrualEngine {
	m.mu.Lock()
	defer m.mu.Unlock()

	byVideo := m.engines[sessionID]
	if byVideo == nil {
		byVideo = make(map[string]*AccrualEngine)
		m.engines[sessionID] = byVideo
	}
	e := byVideo[videoID]
	if e == nil {
		vid := videoID
		e = NewAccrualEngine(m.cfg, m.sched, func(units float64) {
			m.emit(vid, units)
		})
		byVideo[videoID] = e
	}
	return e
}

// lookup returns an existing engine without creating one.
func (m *AccrualManager) lookup(sessionID, videoID string) *AccrualEngine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engines[sessionID][videoID]
}

// Start begins (or resumes) accrual for a session on a video. A speed of
// 0 keeps the engine's current speed.
func (m *AccrualManager) Start(sessionID, videoID string, speed float64) {
	e := m.engine(sessionID, videoID)
	if speed > 0 {
		e.SetSpeed(speed)
	}
	e.Start()
}

// SetSpeed updates playback speed for a running engine. No-op if no
// engine exists.
func (m *AccrualManager) SetSpeed(sessionID, videoID string, speed float64) {
	if e := m.lookup(sessionID, videoID); e != nil {
		e.SetSpeed(speed)
	}
}

// Pause suspends accrual, keeping the sub-unit accumulator. Returns the
// pending fraction.
func (m *AccrualManager) Pause(sessionID, videoID string) float64 {
	e := m.lookup(sessionID, videoID)
	if e == nil {
		return 0
	}
	e.Pause()
	return e.Pending()
}

// Flush emits and returns the pending remainder.
func (m *AccrualManager) Flush(sessionID, videoID string) float64 {
	e := m.lookup(sessionID, videoID)
	if e == nil {
		return 0
	}
	return e.Flush()
}

// Pending returns the sub-unit accumulator, 0 for an unknown engine.
func (m *AccrualManager) Pending(sessionID, videoID string) float64 {
	e := m.lookup(sessionID, videoID)
	if e == nil {
		return 0
	}
	return e.Pending()
}

// Stop discards accrued progress for a video and drops the engine. Used
// when the viewer switches content.
func (m *AccrualManager) Stop(sessionID, videoID string) {
	m.mu.Lock()
	byVideo := m.engines[sessionID]
	e := byVideo[videoID]
	if e != nil {
		delete(byVideo, videoID)
	}
	m.mu.Unlock()

	if e != nil {
		e.Close()
	}
}

// EndSession flushes and closes every engine owned by a session. The
// flush means session end never silently drops an earned fraction.
func (m *AccrualManager) EndSession(sessionID string) {
	m.mu.Lock()
	byVideo := m.engines[sessionID]
	delete(m.engines, sessionID)
	m.mu.Unlock()

	for _, e := range byVideo {
		e.Flush()
		e.Close()
	}
}

// Close flushes and tears down every engine. Used on shutdown.
func (m *AccrualManager) Close() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.engines))
	for id := range m.engines {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.EndSession(id)
	}
}
