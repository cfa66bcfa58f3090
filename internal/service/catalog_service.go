package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/metrics"
	"vyam/fitness-app/internal/repository"
	"vyam/fitness-app/internal/storage"
)

const (
	DefaultCatalogObjectKey = "master/workouts.json"
	DefaultCatalogCacheTTL  = 24 * time.Hour
)

var (
	ErrCatalogUnavailable = errors.New("workout catalog is unavailable")
	ErrWorkoutNotFound    = errors.New("workout not found")
	ErrNoImage            = errors.New("workout has no image")
)

// WorkoutFilter narrows List results. Zero values match everything.
type WorkoutFilter struct {
	Level    domain.Level
	Query    string // case-insensitive match on title, description and exercise names
	Featured bool   // only featured workouts
}

type CatalogService interface {
	GetLibrary(ctx context.Context) (*domain.WorkoutLibrary, error)
	// Refresh drops the cached copy and fetches the library again.
	Refresh(ctx context.Context) (*domain.WorkoutLibrary, error)
	GetWorkout(ctx context.Context, id string) (*domain.Workout, error)
	List(ctx context.Context, filter WorkoutFilter) ([]domain.Workout, error)
	GetImageURL(ctx context.Context, workoutID string) (string, error)
}

// CatalogOptions tunes the catalog service; zero fields take defaults.
type CatalogOptions struct {
	ObjectKey      string
	CacheTTL       time.Duration
	ImageURLExpiry time.Duration
}

type catalogService struct {
	store  storage.ObjectStorage
	cache  repository.CatalogCacheRepository
	opts   CatalogOptions
	logger *zap.Logger
	now    func() time.Time
	fetch  singleflight.Group
}

func NewCatalogService(store storage.ObjectStorage, cache repository.CatalogCacheRepository, opts CatalogOptions, logger *zap.Logger) CatalogService {
	if opts.ObjectKey == "" {
		opts.ObjectKey = DefaultCatalogObjectKey
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCatalogCacheTTL
	}
	if opts.ImageURLExpiry <= 0 {
		opts.ImageURLExpiry = storage.DefaultPresignedURLExpiry
	}
	return &catalogService{
		store:  store,
		cache:  cache,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// GetLibrary serves a fresh cached copy when there is one, otherwise loads
// the library from object storage. When storage fails an expired copy is
// still better than nothing.
func (s *catalogService) GetLibrary(ctx context.Context) (*domain.WorkoutLibrary, error) {
	cached, err := s.cache.Get(ctx, s.opts.ObjectKey)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed to read catalog cache", zap.Error(err))
		cached = nil
	}
	if cached != nil && s.now().Sub(cached.FetchedAt) < s.opts.CacheTTL {
		lib, err := decodeLibrary(cached.Payload)
		if err == nil {
			metrics.CatalogLoadCount.WithLabelValues("cache").Inc()
			return lib, nil
		}
		s.logger.Warn("discarding undecodable catalog cache entry", zap.Error(err))
		cached = nil
	}

	lib, err := s.loadRemote(ctx)
	if err == nil {
		return lib, nil
	}

	if cached != nil {
		if stale, decodeErr := decodeLibrary(cached.Payload); decodeErr == nil {
			s.logger.Warn("serving stale workout catalog",
				zap.Time("fetchedAt", cached.FetchedAt), zap.Error(err))
			metrics.CatalogLoadCount.WithLabelValues("stale_cache").Inc()
			return stale, nil
		}
	}
	metrics.CatalogLoadCount.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}

// loadRemote fetches and caches the library. Concurrent callers share one fetch.
func (s *catalogService) loadRemote(ctx context.Context) (*domain.WorkoutLibrary, error) {
	v, err, _ := s.fetch.Do(s.opts.ObjectKey, func() (interface{}, error) {
		payload, err := s.store.GetObject(ctx, s.opts.ObjectKey)
		if err != nil {
			return nil, err
		}
		lib, err := decodeLibrary(payload)
		if err != nil {
			return nil, err
		}

		entry := &domain.CachedCatalog{
			Key:       s.opts.ObjectKey,
			Payload:   payload,
			FetchedAt: s.now().UTC(),
		}
		if err := s.cache.Put(ctx, entry); err != nil {
			s.logger.Warn("failed to cache workout catalog", zap.Error(err))
		}
		metrics.CatalogLoadCount.WithLabelValues("remote").Inc()
		s.logger.Info("workout catalog loaded",
			zap.Int("version", lib.Version), zap.Int("workouts", len(lib.Workouts)))
		return lib, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.WorkoutLibrary), nil
}

func decodeLibrary(payload []byte) (*domain.WorkoutLibrary, error) {
	var lib domain.WorkoutLibrary
	if err := json.Unmarshal(payload, &lib); err != nil {
		return nil, fmt.Errorf("failed to decode workout library: %w", err)
	}
	return &lib, nil
}

func (s *catalogService) Refresh(ctx context.Context) (*domain.WorkoutLibrary, error) {
	if err := s.cache.Delete(ctx, s.opts.ObjectKey); err != nil {
		s.logger.Warn("failed to clear catalog cache", zap.Error(err))
	}
	return s.GetLibrary(ctx)
}

func (s *catalogService) GetWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	lib, err := s.GetLibrary(ctx)
	if err != nil {
		return nil, err
	}
	for i := range lib.Workouts {
		if lib.Workouts[i].ID == id {
			return &lib.Workouts[i], nil
		}
	}
	return nil, ErrWorkoutNotFound
}

// List returns the workouts matching filter in catalog order.
func (s *catalogService) List(ctx context.Context, filter WorkoutFilter) ([]domain.Workout, error) {
	lib, err := s.GetLibrary(ctx)
	if err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	result := []domain.Workout{}
	for _, w := range lib.Workouts {
		if filter.Level != "" && w.Level != filter.Level {
			continue
		}
		if filter.Featured && !w.Featured {
			continue
		}
		if query != "" && !matchesQuery(&w, query) {
			continue
		}
		result = append(result, w)
	}
	return result, nil
}

func matchesQuery(w *domain.Workout, query string) bool {
	if strings.Contains(strings.ToLower(w.Title), query) ||
		strings.Contains(strings.ToLower(w.Description), query) {
		return true
	}
	for _, e := range w.Exercises {
		if strings.Contains(strings.ToLower(e.Name), query) {
			return true
		}
	}
	return false
}

func (s *catalogService) GetImageURL(ctx context.Context, workoutID string) (string, error) {
	w, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return "", err
	}
	if w.ImagePath == "" {
		return "", ErrNoImage
	}
	return s.store.GeneratePresignedDownloadURL(ctx, w.ImagePath, s.opts.ImageURLExpiry)
}
