package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/repository"
)

// DefaultHistoryLimit caps history listings when the caller gives no limit.
const DefaultHistoryLimit = 50

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileExists     = errors.New("profile already exists")
	ErrProfileValidation = errors.New("profile validation failed")
)

// ProfileUpdate carries a partial profile edit; nil fields are left alone.
type ProfileUpdate struct {
	Name     *string
	Gender   *string
	Age      *int
	WeightKg *float64
	HeightCm *float64
	Goal     *string
	Level    *string
}

type ProfileService interface {
	CreateProfile(ctx context.Context, userID string, profile domain.Profile) (*domain.Profile, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.Profile, error)

	AddFavorite(ctx context.Context, userID, workoutID string) error
	RemoveFavorite(ctx context.Context, userID, workoutID string) error
	// ToggleFavorite flips the favorite flag and reports the new value.
	ToggleFavorite(ctx context.Context, userID, workoutID string) (bool, error)
	ListFavorites(ctx context.Context, userID string) ([]domain.Workout, error)

	SaveWorkoutLog(ctx context.Context, userID string, entry domain.WorkoutLog) (*domain.WorkoutLog, error)
	GetHistory(ctx context.Context, userID string, limit int) ([]domain.WorkoutLog, error)
	GetHistoryStats(ctx context.Context, userID string) (domain.HistoryStats, error)
}

type profileService struct {
	userRepo repository.UserRepository
	logRepo  repository.WorkoutLogRepository
	catalog  CatalogService
	logger   *zap.Logger
}

func NewProfileService(userRepo repository.UserRepository, logRepo repository.WorkoutLogRepository, catalog CatalogService, logger *zap.Logger) ProfileService {
	return &profileService{
		userRepo: userRepo,
		logRepo:  logRepo,
		catalog:  catalog,
		logger:   logger,
	}
}

func (s *profileService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ValidateProfile checks the profile against the accepted ranges and option lists.
func ValidateProfile(p *domain.Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrProfileValidation)
	}
	if !contains(domain.Genders, p.Gender) {
		return fmt.Errorf("%w: unknown gender %q", ErrProfileValidation, p.Gender)
	}
	if p.Age < domain.MinAge || p.Age > domain.MaxAge {
		return fmt.Errorf("%w: age must be between %d and %d", ErrProfileValidation, domain.MinAge, domain.MaxAge)
	}
	if p.WeightKg < domain.MinWeightKg || p.WeightKg > domain.MaxWeightKg {
		return fmt.Errorf("%w: weight must be between %d and %d kg", ErrProfileValidation, domain.MinWeightKg, domain.MaxWeightKg)
	}
	if p.HeightCm < domain.MinHeightCm || p.HeightCm > domain.MaxHeightCm {
		return fmt.Errorf("%w: height must be between %d and %d cm", ErrProfileValidation, domain.MinHeightCm, domain.MaxHeightCm)
	}
	if !contains(domain.Goals, p.Goal) {
		return fmt.Errorf("%w: unknown goal %q", ErrProfileValidation, p.Goal)
	}
	if !contains(domain.FitnessLevels, p.Level) {
		return fmt.Errorf("%w: unknown fitness level %q", ErrProfileValidation, p.Level)
	}
	return nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func (s *profileService) CreateProfile(ctx context.Context, userID string, profile domain.Profile) (*domain.Profile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if err := ValidateProfile(&profile); err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasProfile() {
		return nil, ErrProfileExists
	}
	if err := s.userRepo.UpdateProfile(ctx, user.ID, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasProfile() {
		return nil, ErrProfileNotFound
	}
	return user.Profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.Profile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasProfile() {
		return nil, ErrProfileNotFound
	}

	p := *user.Profile
	if update.Name != nil {
		p.Name = strings.TrimSpace(*update.Name)
	}
	if update.Gender != nil {
		p.Gender = *update.Gender
	}
	if update.Age != nil {
		p.Age = *update.Age
	}
	if update.WeightKg != nil {
		p.WeightKg = *update.WeightKg
	}
	if update.HeightCm != nil {
		p.HeightCm = *update.HeightCm
	}
	if update.Goal != nil {
		p.Goal = *update.Goal
	}
	if update.Level != nil {
		p.Level = *update.Level
	}
	if err := ValidateProfile(&p); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(ctx, user.ID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *profileService) AddFavorite(ctx context.Context, userID, workoutID string) error {
	if _, err := s.catalog.GetWorkout(ctx, workoutID); err != nil {
		return err
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.userRepo.AddFavorite(ctx, user.ID, workoutID)
}

// RemoveFavorite does not consult the catalog so entries for withdrawn
// workouts can still be cleared.
func (s *profileService) RemoveFavorite(ctx context.Context, userID, workoutID string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.userRepo.RemoveFavorite(ctx, user.ID, workoutID)
}

func (s *profileService) ToggleFavorite(ctx context.Context, userID, workoutID string) (bool, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.IsFavorite(workoutID) {
		return false, s.userRepo.RemoveFavorite(ctx, user.ID, workoutID)
	}
	if _, err := s.catalog.GetWorkout(ctx, workoutID); err != nil {
		return false, err
	}
	return true, s.userRepo.AddFavorite(ctx, user.ID, workoutID)
}

// ListFavorites resolves favorite IDs against the catalog, skipping IDs
// that are no longer published.
func (s *profileService) ListFavorites(ctx context.Context, userID string) ([]domain.Workout, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	workouts := []domain.Workout{}
	if len(user.Favorites) == 0 {
		return workouts, nil
	}

	lib, err := s.catalog.GetLibrary(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Workout, len(lib.Workouts))
	for _, w := range lib.Workouts {
		byID[w.ID] = w
	}
	for _, id := range user.Favorites {
		if w, ok := byID[id]; ok {
			workouts = append(workouts, w)
		}
	}
	return workouts, nil
}

func (s *profileService) SaveWorkoutLog(ctx context.Context, userID string, entry domain.WorkoutLog) (*domain.WorkoutLog, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	entry.UserID = id
	if _, err := s.logRepo.Create(ctx, &entry); err != nil {
		return nil, fmt.Errorf("failed to save workout log: %w", err)
	}
	s.logger.Debug("workout log saved",
		zap.String("userId", userID),
		zap.String("workoutId", entry.WorkoutID),
		zap.Int("calories", entry.CaloriesBurned))
	return &entry, nil
}

func (s *profileService) GetHistory(ctx context.Context, userID string, limit int) ([]domain.WorkoutLog, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.logRepo.ListByUser(ctx, id, limit)
}

func (s *profileService) GetHistoryStats(ctx context.Context, userID string) (domain.HistoryStats, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.HistoryStats{}, ErrUserNotFound
	}
	return s.logRepo.Stats(ctx, id)
}
