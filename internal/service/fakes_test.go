package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/repository"
	"vyam/fitness-app/internal/storage"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	cp := *user
	cp.ID = primitive.NewObjectID()
	r.users[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	cp.Favorites = append([]string(nil), u.Favorites...)
	return &cp, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	p := *profile
	u.Profile = &p
	return nil
}

func (r *fakeUserRepo) AddFavorite(_ context.Context, id primitive.ObjectID, workoutID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !u.IsFavorite(workoutID) {
		u.Favorites = append(u.Favorites, workoutID)
	}
	return nil
}

func (r *fakeUserRepo) RemoveFavorite(_ context.Context, id primitive.ObjectID, workoutID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	kept := u.Favorites[:0]
	for _, f := range u.Favorites {
		if f != workoutID {
			kept = append(kept, f)
		}
	}
	u.Favorites = kept
	return nil
}

// seed inserts a user and returns its hex ID.
func (r *fakeUserRepo) seed(t *testing.T, email string, profile *domain.Profile) string {
	t.Helper()
	id, err := r.Create(context.Background(), &domain.User{Email: email, PasswordHash: "x", Profile: profile})
	require.NoError(t, err)
	return id.Hex()
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []domain.WorkoutLog
	failErr error
}

func (r *fakeLogRepo) Create(_ context.Context, entry *domain.WorkoutLog) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return primitive.NilObjectID, r.failErr
	}
	entry.ID = primitive.NewObjectID()
	r.entries = append(r.entries, *entry)
	return entry.ID, nil
}

func (r *fakeLogRepo) ListByUser(_ context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutLog
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLogRepo) Stats(_ context.Context, userID primitive.ObjectID) (domain.HistoryStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var st domain.HistoryStats
	for _, e := range r.entries {
		if e.UserID == userID {
			st.TotalWorkouts++
			st.TotalCalories += e.CaloriesBurned
			st.TotalMinutes += e.DurationMinutes
		}
	}
	return st, nil
}

func (r *fakeLogRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type fakeCacheRepo struct {
	mu      sync.Mutex
	entries map[string]domain.CachedCatalog
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: make(map[string]domain.CachedCatalog)}
}

func (r *fakeCacheRepo) Get(_ context.Context, key string) (*domain.CachedCatalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *fakeCacheRepo) Put(_ context.Context, entry *domain.CachedCatalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Key] = *entry
	return nil
}

func (r *fakeCacheRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
	gets    int
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) GetObject(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (s *fakeObjectStore) GeneratePresignedDownloadURL(_ context.Context, key string, expires time.Duration) (string, error) {
	return "https://storage.test/" + key + "?expires=" + expires.String(), nil
}

func (s *fakeObjectStore) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *fakeObjectStore) getCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

var errStorageDown = errors.New("storage down")

func seconds(n int) *int { return &n }

func testLibrary() domain.WorkoutLibrary {
	return domain.WorkoutLibrary{
		Version: 3,
		Workouts: []domain.Workout{
			{
				ID: "full-body", Title: "Full Body Burn", Level: domain.LevelMedium,
				DurationMinutes: 20, METValue: 6, ImagePath: "images/full-body.jpg", Featured: true,
				Description: "Total body conditioning",
				Exercises: []domain.Exercise{
					{Name: "Jumping Jacks", Type: domain.ExerciseWarmup, DurationSeconds: seconds(30)},
					{Name: "Push Ups", Type: domain.ExerciseStrength, Reps: "10"},
				},
			},
			{
				ID: "morning-stretch", Title: "Morning Stretch", Level: domain.LevelEasy,
				DurationMinutes: 10, METValue: 2.5,
				Exercises: []domain.Exercise{
					{Name: "Cat Cow", Type: domain.ExerciseCooldown, DurationSeconds: seconds(60)},
				},
			},
			{
				ID: "hiit-blast", Title: "HIIT Blast", Level: domain.LevelHeavy,
				DurationMinutes: 30, METValue: 8,
				Exercises: []domain.Exercise{
					{Name: "Burpees", Type: domain.ExerciseCardio, DurationSeconds: seconds(45)},
				},
			},
		},
	}
}

func encodeLibrary(t *testing.T, lib domain.WorkoutLibrary) []byte {
	t.Helper()
	data, err := json.Marshal(lib)
	require.NoError(t, err)
	return data
}
