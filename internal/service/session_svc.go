package service

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/model"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/repository"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/pkg/hash"
)

// DefaultResyncPeriod is how often a session re-reads its score so idle
// decay becomes visible to observers even without new events.
const DefaultResyncPeriod = 3 * time.Second

// RewardScale converts the post-event score into reward units.
const RewardScale = 10

// Session is the per-session trust façade: it owns an opaque session id,
// the session's decaying score, a local reward balance, and the typed
// reporting methods. Every report mutates the score through the event
// router and fires a best-effort validation report; the validation
// outcome never affects local state.
type Session struct {
	mu sync.Mutex

	id       string
	store    *TrustStore
	router   *EventRouter
	reporter AttentionReporter

	ups          float64
	balance      int64
	cancelResync func()
}

func newSession(id string, store *TrustStore, reporter AttentionReporter, sched Scheduler, resyncPeriod time.Duration) *Session {
	s := &Session{
		id:       id,
		store:    store,
		router:   NewEventRouter(store),
		reporter: reporter,
		ups:      store.Read(),
	}
	if resyncPeriod <= 0 {
		resyncPeriod = DefaultResyncPeriod
	}
	s.cancelResync = sched.Every(resyncPeriod, s.refresh)
	return s
}

// refresh re-reads the decayed score so tier and UPS observers stay
// fresh during idle periods.
func (s *Session) refresh() {
	score := s.store.Read()
	s.mu.Lock()
	s.ups = score
	s.mu.Unlock()
}

// ID returns the opaque session identifier.
func (s *Session) ID() string {
	return s.id
}

// UPS returns the session's current trust score as of the last event or
// resync.
func (s *Session) UPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ups
}

// TrustState returns the tier derived from the current score.
func (s *Session) TrustState() model.TrustTier {
	return model.TierForScore(s.UPS())
}

// Balance returns the local reward ledger total.
func (s *Session) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// RegisterAttention routes an event through the trust engine, credits
// the local reward ledger, and fires the validation report. The reward
// scales with the post-event score, floored at 1 unit per event so even
// a floor-trust session gets minimal positive reinforcement.
func (s *Session) RegisterAttention(ev model.AttentionEvent, report model.AttentionReport) (reward int64, newScore float64) {
	newScore = s.router.Route(ev)

	reward = int64(math.Floor(newScore * RewardScale))
	if reward < 1 {
		reward = 1
	}

	s.mu.Lock()
	s.ups = newScore
	s.balance += reward
	s.mu.Unlock()

	report.SessionID = s.id
	s.reporter.Report(report)

	return reward, newScore
}

// ReportComment registers a verified comment on a target. The target id
// is carried to the validation boundary only; the local score ignores it.
func (s *Session) ReportComment(targetID string) (int64, float64) {
	return s.RegisterAttention(
		model.AttentionEvent{Kind: model.EventComment, Verified: true},
		s.reportFor("comment", targetID, 0),
	)
}

// ReportVideoWatch registers verified watch time on a video.
func (s *Session) ReportVideoWatch(videoID string, durationMS int64) (int64, float64) {
	return s.RegisterAttention(
		model.AttentionEvent{
			Kind:     model.EventWatch,
			Duration: float64(durationMS) / 1000,
			Verified: true,
		},
		s.reportFor("video_watch", videoID, durationMS),
	)
}

// ReportLike registers a verified like on a target.
func (s *Session) ReportLike(targetID string) (int64, float64) {
	return s.RegisterAttention(
		model.AttentionEvent{Kind: model.EventLike, Verified: true},
		s.reportFor("like", targetID, 0),
	)
}

// ReportSave registers a save. Saves score identically to likes; the
// distinction only matters to the validation boundary.
func (s *Session) ReportSave(targetID string) (int64, float64) {
	return s.RegisterAttention(
		model.AttentionEvent{Kind: model.EventLike, Verified: true},
		s.reportFor("save", targetID, 0),
	)
}

func (s *Session) reportFor(interactionType, targetID string, durationMS int64) model.AttentionReport {
	return model.AttentionReport{
		TargetID:        targetID,
		InteractionType: interactionType,
		DurationMS:      durationMS,
		ContentHash:     hash.ContentHash(interactionType, targetID),
		ContextHash:     hash.ContextHash(s.id, targetID),
	}
}

// close cancels the resync task. Idempotent.
func (s *Session) close() {
	s.cancelResync()
}

// SessionManager tracks live sessions and their lifecycle rows.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	reporter AttentionReporter
	sched    Scheduler
	repo     *repository.SessionRepo

	resyncPeriod time.Duration
	initialScore float64
	now          func() time.Time
}

// SessionManagerConfig carries the injectable pieces of a manager. Zero
// values fall back to production defaults.
type SessionManagerConfig struct {
	Reporter     AttentionReporter
	Scheduler    Scheduler
	Repo         *repository.SessionRepo
	ResyncPeriod time.Duration
	InitialScore float64
	Now          func() time.Time
}

func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	if cfg.Reporter == nil {
		cfg.Reporter = NoopReporter{}
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewWallScheduler()
	}
	if cfg.Repo == nil {
		cfg.Repo = repository.NewSessionRepo(nil)
	}
	if cfg.ResyncPeriod <= 0 {
		cfg.ResyncPeriod = DefaultResyncPeriod
	}
	if cfg.InitialScore <= 0 {
		cfg.InitialScore = DefaultInitialScore
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SessionManager{
		sessions:     make(map[string]*Session),
		reporter:     cfg.Reporter,
		sched:        cfg.Scheduler,
		repo:         cfg.Repo,
		resyncPeriod: cfg.ResyncPeriod,
		initialScore: cfg.InitialScore,
		now:          cfg.Now,
	}
}

// Start creates a session with a fresh id and score, persisting the
// lifecycle row best-effort.
func (m *SessionManager) Start(ctx context.Context) *Session {
	id := uuid.NewString()
	store := NewTrustStoreWithClock(m.initialScore, m.now)
	s := newSession(id, store, m.reporter, m.sched, m.resyncPeriod)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	if err := m.repo.StartSession(ctx, id); err != nil {
		log.Printf("session: start row error (ignored): %v", err)
	}
	return s
}

// Get returns a live session, or nil.
func (m *SessionManager) Get(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID]
}

// End closes a session, cancels its resync task, and marks the lifecycle
// row best-effort. Ending an unknown session is a no-op.
func (m *SessionManager) End(ctx context.Context, sessionID string, abnormal bool) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	s.close()

	if err := m.repo.EndSession(ctx, sessionID, abnormal); err != nil {
		log.Printf("session: end row error (ignored): %v", err)
	}
}

// Close ends every live session. Used on shutdown.
func (m *SessionManager) Close(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.End(ctx, id, false)
	}
}

// Count returns the number of live sessions (for metrics).
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
