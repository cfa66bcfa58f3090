package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"vyam/fitness-app/internal/domain"
)

func validProfile() domain.Profile {
	return domain.Profile{
		Name:     "Asha",
		Gender:   "Female",
		Age:      29,
		WeightKg: 62.5,
		HeightCm: 168,
		Goal:     "Get Fit",
		Level:    "Intermediate",
	}
}

type profileFixture struct {
	svc   ProfileService
	users *fakeUserRepo
	logs  *fakeLogRepo
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	store := newFakeObjectStore()
	store.objects[DefaultCatalogObjectKey] = encodeLibrary(t, testLibrary())
	catalog := NewCatalogService(store, newFakeCacheRepo(), CatalogOptions{}, zap.NewNop())

	f := &profileFixture{users: newFakeUserRepo(), logs: &fakeLogRepo{}}
	f.svc = NewProfileService(f.users, f.logs, catalog, zap.NewNop())
	return f
}

func TestValidateProfile(t *testing.T) {
	p := validProfile()
	require.NoError(t, ValidateProfile(&p))

	cases := map[string]func(p *domain.Profile){
		"blank name":     func(p *domain.Profile) { p.Name = "  " },
		"unknown gender": func(p *domain.Profile) { p.Gender = "robot" },
		"too young":      func(p *domain.Profile) { p.Age = 12 },
		"too old":        func(p *domain.Profile) { p.Age = 100 },
		"too light":      func(p *domain.Profile) { p.WeightKg = 29.9 },
		"too heavy":      func(p *domain.Profile) { p.WeightKg = 250.1 },
		"too short":      func(p *domain.Profile) { p.HeightCm = 99 },
		"too tall":       func(p *domain.Profile) { p.HeightCm = 251 },
		"unknown goal":   func(p *domain.Profile) { p.Goal = "Fly" },
		"unknown level":  func(p *domain.Profile) { p.Level = "Expert" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validProfile()
			mutate(&p)
			require.ErrorIs(t, ValidateProfile(&p), ErrProfileValidation)
		})
	}

	edges := validProfile()
	edges.Age, edges.WeightKg, edges.HeightCm = domain.MaxAge, domain.MinWeightKg, domain.MaxHeightCm
	require.NoError(t, ValidateProfile(&edges))
}

func TestProfileLifecycle(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	uid := f.users.seed(t, "a@example.com", nil)

	_, err := f.svc.GetProfile(ctx, uid)
	require.ErrorIs(t, err, ErrProfileNotFound)
	_, err = f.svc.UpdateProfile(ctx, uid, ProfileUpdate{})
	require.ErrorIs(t, err, ErrProfileNotFound)

	created, err := f.svc.CreateProfile(ctx, uid, validProfile())
	require.NoError(t, err)
	require.Equal(t, 62.5, created.WeightKg)

	_, err = f.svc.CreateProfile(ctx, uid, validProfile())
	require.ErrorIs(t, err, ErrProfileExists)

	weight := 70.0
	updated, err := f.svc.UpdateProfile(ctx, uid, ProfileUpdate{WeightKg: &weight})
	require.NoError(t, err)
	require.Equal(t, 70.0, updated.WeightKg)
	require.Equal(t, "Asha", updated.Name)

	bad := 300.0
	_, err = f.svc.UpdateProfile(ctx, uid, ProfileUpdate{WeightKg: &bad})
	require.ErrorIs(t, err, ErrProfileValidation)

	got, err := f.svc.GetProfile(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, 70.0, got.WeightKg, "rejected update must not be stored")

	_, err = f.svc.GetProfile(ctx, primitive.NewObjectID().Hex())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestFavorites(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	uid := f.users.seed(t, "a@example.com", nil)

	favs, err := f.svc.ListFavorites(ctx, uid)
	require.NoError(t, err)
	require.Empty(t, favs)

	require.NoError(t, f.svc.AddFavorite(ctx, uid, "hiit-blast"))
	require.NoError(t, f.svc.AddFavorite(ctx, uid, "hiit-blast"))
	require.ErrorIs(t, f.svc.AddFavorite(ctx, uid, "unknown"), ErrWorkoutNotFound)

	on, err := f.svc.ToggleFavorite(ctx, uid, "full-body")
	require.NoError(t, err)
	require.True(t, on)

	favs, err = f.svc.ListFavorites(ctx, uid)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	require.Equal(t, "hiit-blast", favs[0].ID)
	require.Equal(t, "full-body", favs[1].ID)

	on, err = f.svc.ToggleFavorite(ctx, uid, "hiit-blast")
	require.NoError(t, err)
	require.False(t, on)

	require.NoError(t, f.svc.RemoveFavorite(ctx, uid, "full-body"))
	favs, err = f.svc.ListFavorites(ctx, uid)
	require.NoError(t, err)
	require.Empty(t, favs)
}

func TestFavorites_SkipsWithdrawnWorkouts(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	uid := f.users.seed(t, "a@example.com", nil)
	id, _ := primitive.ObjectIDFromHex(uid)
	require.NoError(t, f.users.AddFavorite(ctx, id, "retired-workout"))
	require.NoError(t, f.svc.AddFavorite(ctx, uid, "full-body"))

	favs, err := f.svc.ListFavorites(ctx, uid)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.Equal(t, "full-body", favs[0].ID)
}

func TestHistory(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	uid := f.users.seed(t, "a@example.com", nil)
	other := f.users.seed(t, "b@example.com", nil)

	day := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := f.svc.SaveWorkoutLog(ctx, uid, domain.WorkoutLog{
			WorkoutID:       "full-body",
			Date:            day.AddDate(0, 0, i),
			DurationMinutes: 10 * (i + 1),
			CaloriesBurned:  100 * (i + 1),
		})
		require.NoError(t, err)
	}
	_, err := f.svc.SaveWorkoutLog(ctx, other, domain.WorkoutLog{WorkoutID: "hiit-blast", Date: day, CaloriesBurned: 999})
	require.NoError(t, err)

	history, err := f.svc.GetHistory(ctx, uid, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.True(t, history[0].Date.After(history[1].Date), "newest first")

	limited, err := f.svc.GetHistory(ctx, uid, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)

	stats, err := f.svc.GetHistoryStats(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, domain.HistoryStats{TotalWorkouts: 3, TotalCalories: 600, TotalMinutes: 60}, stats)
}
