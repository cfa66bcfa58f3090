package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// manualTicker lets tests deliver ticks one at a time.
type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *manualTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// fire delivers n ticks; each send blocks until the session loop takes it.
func (t *manualTicker) fire(n int) {
	for i := 0; i < n; i++ {
		t.ch <- time.Now()
	}
}

type tickerRecorder struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (r *tickerRecorder) newTicker(time.Duration) Ticker {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := newManualTicker()
	r.tickers = append(r.tickers, t)
	return t
}

func (r *tickerRecorder) last() *manualTicker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickers[len(r.tickers)-1]
}

func newTestManager() (*Manager, *tickerRecorder) {
	rec := &tickerRecorder{}
	return NewManager(time.Second, zap.NewNop(), WithTicker(rec.newTicker)), rec
}

func TestManager_TicksDriveTheRunner(t *testing.T) {
	m, rec := newTestManager()
	defer m.Shutdown()
	r := newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{})
	s, err := m.Start("user-1", r)
	require.NoError(t, err)

	rec.last().fire(3)
	require.Eventually(t, func() bool {
		return s.View().State.ElapsedSeconds == 3
	}, time.Second, 5*time.Millisecond)

	v := s.Advance()
	require.Equal(t, PhaseResting, v.State.Phase)
	require.Equal(t, "B", v.Next.Name)
	rec.last().fire(RestDuration)
	require.Eventually(t, func() bool {
		return s.View().State.CurrentExerciseIndex == 1
	}, time.Second, 5*time.Millisecond)
}

func TestManager_OneRunningSessionPerUser(t *testing.T) {
	m, _ := newTestManager()
	defer m.Shutdown()

	_, err := m.Start("user-1", newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{}))
	require.NoError(t, err)
	_, err = m.Start("user-1", newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{}))
	require.ErrorIs(t, err, ErrSessionInProgress)

	// Other users are independent.
	_, err = m.Start("user-2", newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{}))
	require.NoError(t, err)
}

func TestManager_FinishedSessionIsReplaced(t *testing.T) {
	m, _ := newTestManager()
	defer m.Shutdown()

	first, err := m.Start("user-1", newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{}))
	require.NoError(t, err)
	first.Quit()

	got, err := m.Get("user-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID, "finished session stays readable")

	second, err := m.Start("user-1", newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{}))
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func TestManager_TickerReleasedOnEveryExitPath(t *testing.T) {
	t.Run("quit", func(t *testing.T) {
		m, rec := newTestManager()
		s, err := m.Start("u", newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{}))
		require.NoError(t, err)
		s.Quit()
		<-s.Done()
		require.True(t, rec.last().isStopped())
	})
	t.Run("complete", func(t *testing.T) {
		m, rec := newTestManager()
		p := &recordingPersister{}
		s, err := m.Start("u", newTestRunner(t, workoutOf(1), 70, p))
		require.NoError(t, err)
		v := s.Advance()
		require.Equal(t, PhaseCompleted, v.State.Phase)
		require.NotNil(t, v.Summary)
		<-s.Done()
		require.True(t, rec.last().isStopped())
		require.Len(t, p.entries, 1)
	})
	t.Run("sign out", func(t *testing.T) {
		m, rec := newTestManager()
		p := &recordingPersister{}
		s, err := m.Start("u", newTestRunner(t, threeStepWorkout(), 70, p))
		require.NoError(t, err)
		m.End("u")
		require.True(t, rec.last().isStopped())
		require.Equal(t, PhaseQuit, s.View().State.Phase)
		require.Empty(t, p.entries)
		_, err = m.Get("u")
		require.ErrorIs(t, err, ErrNoActiveSession)
	})
	t.Run("shutdown", func(t *testing.T) {
		m, rec := newTestManager()
		_, err := m.Start("a", newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{}))
		require.NoError(t, err)
		_, err = m.Start("b", newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{}))
		require.NoError(t, err)
		m.Shutdown()
		for _, tk := range rec.tickers {
			require.True(t, tk.isStopped())
		}
	})
}

func TestActiveSession_SubscribeStreamsSnapshots(t *testing.T) {
	m, rec := newTestManager()
	s, err := m.Start("u", newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{}))
	require.NoError(t, err)

	updates, cancel := s.Subscribe()
	defer cancel()

	initial := <-updates
	require.Equal(t, PhaseExercising, initial.Phase)

	rec.last().fire(1)
	require.Equal(t, 1, (<-updates).ElapsedSeconds)

	s.Quit()
	var last State
	for st := range updates {
		last = st
	}
	require.Equal(t, PhaseQuit, last.Phase)
}

func TestActiveSession_SlowSubscriberKeepsLatest(t *testing.T) {
	m, rec := newTestManager()
	defer m.Shutdown()
	s, err := m.Start("u", newTestRunner(t, threeStepWorkout(), 70, &recordingPersister{}))
	require.NoError(t, err)

	updates, cancel := s.Subscribe()
	defer cancel()

	rec.last().fire(5)
	require.Eventually(t, func() bool {
		return s.View().State.ElapsedSeconds == 5
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 5, (<-updates).ElapsedSeconds)
}
