package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/metrics"
)

// DefaultTickInterval is the nominal interval between ticks.
const DefaultTickInterval = time.Second

var (
	ErrSessionInProgress = errors.New("a workout session is already in progress")
	ErrNoActiveSession   = errors.New("no workout session found")
)

// View is a rendering-ready snapshot of a session.
type View struct {
	SessionID    string
	WorkoutID    string
	WorkoutTitle string
	State        State
	Current      domain.Exercise
	Next         *domain.Exercise
	Position     int // 1-based
	Total        int
	Summary      *Summary
}

// ActiveSession couples a Runner with the ticker that drives it. Ticks and
// user actions are serialised by mu; the ticker goroutine exits on the
// first terminal transition or when the session is torn down.
type ActiveSession struct {
	ID     string
	UserID string

	mu      sync.Mutex
	runner  *Runner
	subs    map[int]chan State
	nextSub int

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	onEnd    func(State, *Summary)
}

func newActiveSession(userID string, runner *Runner, onEnd func(State, *Summary)) *ActiveSession {
	s := &ActiveSession{
		ID:     uuid.NewString(),
		UserID: userID,
		runner: runner,
		subs:   make(map[int]chan State),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		onEnd:  onEnd,
	}
	runner.Subscribe(s.broadcast)
	return s
}

func (s *ActiveSession) run(ticker Ticker) {
	defer close(s.done)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C():
			s.mu.Lock()
			s.runner.Tick()
			s.mu.Unlock()
		}
	}
}

// Done is closed once the ticker has been released.
func (s *ActiveSession) Done() <-chan struct{} {
	return s.done
}

// View returns the current snapshot.
func (s *ActiveSession) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *ActiveSession) viewLocked() View {
	r := s.runner
	pos, total := r.Progress()
	v := View{
		SessionID:    s.ID,
		WorkoutID:    r.workout.ID,
		WorkoutTitle: r.workout.Title,
		State:        r.State(),
		Current:      *r.CurrentExercise(),
		Next:         r.NextExercise(),
		Position:     pos,
		Total:        total,
	}
	if sum, ok := r.Summary(); ok {
		v.Summary = &sum
	}
	return v
}

func (s *ActiveSession) Pause() View   { return s.apply((*Runner).Pause) }
func (s *ActiveSession) Resume() View  { return s.apply((*Runner).Resume) }
func (s *ActiveSession) Advance() View { return s.apply((*Runner).Advance) }
func (s *ActiveSession) Retreat() View { return s.apply((*Runner).Retreat) }
func (s *ActiveSession) Quit() View    { return s.apply((*Runner).Quit) }

func (s *ActiveSession) apply(action func(*Runner) State) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := action(s.runner)
	if st.Phase.Terminal() {
		s.releaseLocked()
	}
	return s.viewLocked()
}

// Terminal reports whether the session has completed or been quit.
func (s *ActiveSession) Terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.State().Phase.Terminal()
}

// Subscribe returns a channel of state snapshots. The channel keeps only the
// latest undelivered snapshot and is closed when the session ends.
func (s *ActiveSession) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	ch <- s.runner.State()
	if s.runner.State().Phase.Terminal() {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// broadcast runs under mu, called by the runner after each change.
func (s *ActiveSession) broadcast(st State) {
	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			// Drop the stale snapshot in favour of the newest one.
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

// teardown quits a non-terminal session and releases its ticker.
func (s *ActiveSession) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runner.Quit()
	s.releaseLocked()
}

func (s *ActiveSession) releaseLocked() {
	s.stopOnce.Do(func() {
		close(s.stop)
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
		if s.onEnd != nil {
			var sum *Summary
			if v, ok := s.runner.Summary(); ok {
				sum = &v
			}
			s.onEnd(s.runner.State(), sum)
		}
	})
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTicker overrides how session tickers are created.
func WithTicker(fn TickerFunc) ManagerOption {
	return func(m *Manager) { m.newTicker = fn }
}

// Manager keeps at most one running session per user.
type Manager struct {
	mu           sync.Mutex
	sessions     map[string]*ActiveSession // by user ID
	tickInterval time.Duration
	newTicker    TickerFunc
	logger       *zap.Logger
}

// NewManager creates a Manager ticking sessions every tickInterval.
func NewManager(tickInterval time.Duration, logger *zap.Logger, opts ...ManagerOption) *Manager {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		sessions:     make(map[string]*ActiveSession),
		tickInterval: tickInterval,
		newTicker:    NewTimeTicker,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start registers runner as the user's session and starts its ticker.
// A finished session of the same user is replaced.
func (m *Manager) Start(userID string, runner *Runner) (*ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[userID]; ok && !existing.Terminal() {
		return nil, ErrSessionInProgress
	}

	s := newActiveSession(userID, runner, func(st State, sum *Summary) {
		metrics.ActiveSessionsGauge.Dec()
		metrics.SessionsEndedCount.WithLabelValues(string(st.Phase)).Inc()
		if sum != nil {
			metrics.CompletedSessionMinutes.Observe(float64(sum.DurationMinutes))
		}
		m.logger.Info("workout session ended",
			zap.String("userId", userID),
			zap.String("phase", string(st.Phase)),
			zap.Int("elapsedSeconds", st.ElapsedSeconds))
	})
	m.sessions[userID] = s
	metrics.SessionsStartedCount.Inc()
	metrics.ActiveSessionsGauge.Inc()
	go s.run(m.newTicker(m.tickInterval))

	m.logger.Info("workout session started",
		zap.String("userId", userID),
		zap.String("sessionId", s.ID),
		zap.String("workoutId", runner.workout.ID))
	return s, nil
}

// Get returns the user's latest session, which may already be finished.
func (m *Manager) Get(userID string) (*ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s, nil
}

// End tears down the user's session, quitting it if still running, and
// forgets it. It is used when the owning user signs out.
func (m *Manager) End(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		s.teardown()
		<-s.done
	}
}

// Shutdown tears down every session and waits for their tickers to stop.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*ActiveSession)
	m.mu.Unlock()

	for _, s := range sessions {
		s.teardown()
	}
	for _, s := range sessions {
		<-s.done
	}
}
