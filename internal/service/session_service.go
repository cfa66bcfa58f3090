package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/metrics"
	"vyam/fitness-app/internal/session"
)

const defaultPersistTimeout = 10 * time.Second

type SessionService interface {
	// Start runs workoutID for userID, estimating calories from the
	// profile weight when the user has one.
	Start(ctx context.Context, userID, workoutID string) (session.View, error)
	Current(userID string) (session.View, error)
	Pause(userID string) (session.View, error)
	Resume(userID string) (session.View, error)
	Next(userID string) (session.View, error)
	Previous(userID string) (session.View, error)
	Quit(userID string) (session.View, error)
	// Subscribe streams state snapshots of the user's current session until it ends.
	Subscribe(userID string) (<-chan session.State, func(), error)
}

type sessionService struct {
	manager        *session.Manager
	catalog        CatalogService
	profiles       ProfileService
	persistTimeout time.Duration
	logger         *zap.Logger
}

func NewSessionService(manager *session.Manager, catalog CatalogService, profiles ProfileService, persistTimeout time.Duration, logger *zap.Logger) SessionService {
	if persistTimeout <= 0 {
		persistTimeout = defaultPersistTimeout
	}
	return &sessionService{
		manager:        manager,
		catalog:        catalog,
		profiles:       profiles,
		persistTimeout: persistTimeout,
		logger:         logger,
	}
}

func (s *sessionService) Start(ctx context.Context, userID, workoutID string) (session.View, error) {
	workout, err := s.catalog.GetWorkout(ctx, workoutID)
	if err != nil {
		return session.View{}, err
	}

	weight := session.UnknownWeight
	profile, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil:
		weight = profile.WeightKg
	case errors.Is(err, ErrProfileNotFound):
	default:
		return session.View{}, err
	}

	runner, err := session.NewRunner(workout, weight, s.persister(ctx, userID),
		session.WithLogger(s.logger.With(zap.String("userId", userID))))
	if err != nil {
		return session.View{}, err
	}

	active, err := s.manager.Start(userID, runner)
	if err != nil {
		return session.View{}, err
	}
	return active.View(), nil
}

// persister saves the history entry when the session completes. That
// happens long after the starting request, so its context is detached.
func (s *sessionService) persister(ctx context.Context, userID string) session.LogPersister {
	base := context.WithoutCancel(ctx)
	return func(entry domain.WorkoutLog) error {
		pctx, cancel := context.WithTimeout(base, s.persistTimeout)
		defer cancel()
		if _, err := s.profiles.SaveWorkoutLog(pctx, userID, entry); err != nil {
			metrics.WorkoutLogPersistFailures.Inc()
			return err
		}
		return nil
	}
}

func (s *sessionService) Current(userID string) (session.View, error) {
	active, err := s.manager.Get(userID)
	if err != nil {
		return session.View{}, err
	}
	return active.View(), nil
}

func (s *sessionService) Pause(userID string) (session.View, error) {
	return s.apply(userID, (*session.ActiveSession).Pause)
}

func (s *sessionService) Resume(userID string) (session.View, error) {
	return s.apply(userID, (*session.ActiveSession).Resume)
}

func (s *sessionService) Next(userID string) (session.View, error) {
	return s.apply(userID, (*session.ActiveSession).Advance)
}

func (s *sessionService) Previous(userID string) (session.View, error) {
	return s.apply(userID, (*session.ActiveSession).Retreat)
}

func (s *sessionService) Quit(userID string) (session.View, error) {
	return s.apply(userID, (*session.ActiveSession).Quit)
}

func (s *sessionService) apply(userID string, action func(*session.ActiveSession) session.View) (session.View, error) {
	active, err := s.manager.Get(userID)
	if err != nil {
		return session.View{}, err
	}
	return action(active), nil
}

func (s *sessionService) Subscribe(userID string) (<-chan session.State, func(), error) {
	active, err := s.manager.Get(userID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := active.Subscribe()
	return ch, cancel, nil
}
