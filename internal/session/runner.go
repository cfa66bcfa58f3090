package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"vyam/fitness-app/internal/domain"
)

// RestDuration is the rest period between exercises, in ticks (seconds).
const RestDuration = 30

// ErrInvalidWeight is returned for negative or non-numeric body weights.
var ErrInvalidWeight = errors.New("invalid weight")

// Phase is the lifecycle stage of a session.
type Phase string

const (
	PhaseExercising Phase = "exercising"
	PhaseResting    Phase = "resting"
	PhasePaused     Phase = "paused"
	PhaseCompleted  Phase = "completed"
	PhaseQuit       Phase = "quit"
)

// Terminal reports whether no further transition is accepted from p.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseQuit
}

// State is a snapshot of a running session.
type State struct {
	CurrentExerciseIndex int       `json:"currentExerciseIndex"`
	Phase                Phase     `json:"phase"`
	ElapsedSeconds       int       `json:"elapsedSeconds"` // Active time only; rest is excluded
	RestRemainingSeconds int       `json:"restRemainingSeconds"`
	StartedAt            time.Time `json:"startedAt"`
}

// Summary holds the figures computed when a session completes.
type Summary struct {
	DurationMinutes int `json:"durationMin"`
	CaloriesBurned  int `json:"caloriesBurned"`
}

// LogPersister stores the history entry of a completed session.
// Its error is logged by the runner and otherwise ignored.
type LogPersister func(entry domain.WorkoutLog) error

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for persistence failures and degraded mode.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithClock overrides the time source used for StartedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// Runner is the state machine of one in-progress workout. It does not keep
// time itself: an external scheduler calls Tick once per second.
//
// A Runner is not safe for concurrent use; callers serialise ticks and
// user actions.
type Runner struct {
	workout  domain.Workout
	weightKg float64
	persist  LogPersister
	logger   *zap.Logger
	now      func() time.Time

	state       State
	resumePhase Phase // phase restored by Resume
	summary     *Summary

	observers      map[int]func(State)
	nextObserverID int
}

// NewRunner validates workout and starts a session at the first exercise.
// Pass UnknownWeight when the user has no profile weight.
func NewRunner(workout *domain.Workout, weightKg float64, persist LogPersister, opts ...Option) (*Runner, error) {
	if err := workout.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) || weightKg < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeight, weightKg)
	}

	r := &Runner{
		workout:   *workout,
		weightKg:  weightKg,
		persist:   persist,
		logger:    zap.NewNop(),
		now:       time.Now,
		observers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(r)
	}
	// Copy exercises so later edits to the caller's slice cannot leak in.
	r.workout.Exercises = append([]domain.Exercise(nil), workout.Exercises...)

	r.state = State{
		CurrentExerciseIndex: 0,
		Phase:                PhaseExercising,
		StartedAt:            r.now().UTC(),
	}
	if weightKg == UnknownWeight {
		r.logger.Info("starting session without body weight, calories will not be estimated",
			zap.String("workoutId", workout.ID))
	}
	return r, nil
}

// State returns the current snapshot.
func (r *Runner) State() State {
	return r.state
}

// Workout returns the workout being run.
func (r *Runner) Workout() *domain.Workout {
	return &r.workout
}

// WeightKnown reports whether calories will be estimated on completion.
func (r *Runner) WeightKnown() bool {
	return r.weightKg > UnknownWeight
}

// CurrentExercise returns the exercise at the current index.
func (r *Runner) CurrentExercise() *domain.Exercise {
	return &r.workout.Exercises[r.state.CurrentExerciseIndex]
}

// NextExercise returns the exercise after the current one, or nil at the end.
// During rest this is the exercise the session will move to.
func (r *Runner) NextExercise() *domain.Exercise {
	next := r.state.CurrentExerciseIndex + 1
	if next >= len(r.workout.Exercises) {
		return nil
	}
	return &r.workout.Exercises[next]
}

// Progress returns the 1-based position of the current exercise and the total.
func (r *Runner) Progress() (current, total int) {
	return r.state.CurrentExerciseIndex + 1, len(r.workout.Exercises)
}

// Summary returns the completion figures once the session has completed.
func (r *Runner) Summary() (Summary, bool) {
	if r.summary == nil {
		return Summary{}, false
	}
	return *r.summary, true
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the observer.
func (r *Runner) Subscribe(fn func(State)) func() {
	id := r.nextObserverID
	r.nextObserverID++
	r.observers[id] = fn
	return func() { delete(r.observers, id) }
}

// Tick advances the session clock by one second.
func (r *Runner) Tick() State {
	switch r.state.Phase {
	case PhaseExercising:
		r.state.ElapsedSeconds++
	case PhaseResting:
		r.state.RestRemainingSeconds--
		if r.state.RestRemainingSeconds <= 0 {
			r.state.RestRemainingSeconds = 0
			r.state.Phase = PhaseExercising
			if r.state.CurrentExerciseIndex < len(r.workout.Exercises)-1 {
				r.state.CurrentExerciseIndex++
			}
		}
	default:
		return r.state
	}
	r.notify()
	return r.state
}

// Pause freezes both timers. It is a no-op unless exercising or resting.
func (r *Runner) Pause() State {
	if r.state.Phase != PhaseExercising && r.state.Phase != PhaseResting {
		return r.state
	}
	r.resumePhase = r.state.Phase
	r.state.Phase = PhasePaused
	r.notify()
	return r.state
}

// Resume returns to the phase that was interrupted by Pause.
func (r *Runner) Resume() State {
	if r.state.Phase != PhasePaused {
		return r.state
	}
	r.state.Phase = r.resumePhase
	r.notify()
	return r.state
}

// Advance moves towards the next exercise. On the last exercise it
// completes the session; otherwise it starts a rest period and the index
// moves when the rest runs out. Calls while resting are ignored so a
// double tap cannot skip an exercise.
func (r *Runner) Advance() State {
	if r.state.Phase != PhaseExercising {
		return r.state
	}
	if r.workout.IsLastExercise(r.state.CurrentExerciseIndex) {
		r.complete()
		return r.state
	}
	r.state.Phase = PhaseResting
	r.state.RestRemainingSeconds = RestDuration
	r.notify()
	return r.state
}

// Retreat goes back one exercise immediately and cancels any rest in progress.
func (r *Runner) Retreat() State {
	if r.state.Phase != PhaseExercising && r.state.Phase != PhaseResting {
		return r.state
	}
	if r.state.CurrentExerciseIndex == 0 {
		return r.state
	}
	r.state.CurrentExerciseIndex--
	r.state.Phase = PhaseExercising
	r.state.RestRemainingSeconds = 0
	r.notify()
	return r.state
}

// Quit abandons the session. Nothing is logged.
func (r *Runner) Quit() State {
	if r.state.Phase.Terminal() {
		return r.state
	}
	r.state.Phase = PhaseQuit
	r.state.RestRemainingSeconds = 0
	r.notify()
	return r.state
}

func (r *Runner) complete() {
	r.state.Phase = PhaseCompleted
	r.state.RestRemainingSeconds = 0

	minutes := elapsedMinutes(r.state.ElapsedSeconds)
	calories := 0
	if r.WeightKnown() {
		calories = CalculateCalories(minutes, r.workout.METValue, r.weightKg)
	}
	r.summary = &Summary{DurationMinutes: minutes, CaloriesBurned: calories}

	if r.persist != nil {
		entry := domain.WorkoutLog{
			WorkoutID:          r.workout.ID,
			WorkoutTitle:       r.workout.Title,
			Date:               r.state.StartedAt,
			DurationMinutes:    minutes,
			CaloriesBurned:     calories,
			CompletedExercises: len(r.workout.Exercises),
			TotalExercises:     len(r.workout.Exercises),
		}
		if err := r.persist(entry); err != nil {
			r.logger.Warn("failed to save workout log",
				zap.String("workoutId", r.workout.ID), zap.Error(err))
		}
	}
	r.notify()
}

func (r *Runner) notify() {
	for _, fn := range r.observers {
		fn(r.state)
	}
}
