package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vyam/fitness-app/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository stores accounts together with their profile and favorites.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, profile *domain.Profile) error
	AddFavorite(ctx context.Context, id primitive.ObjectID, workoutID string) error
	RemoveFavorite(ctx context.Context, id primitive.ObjectID, workoutID string) error
}

// WorkoutLogRepository stores the history of completed sessions.
type WorkoutLogRepository interface {
	Create(ctx context.Context, entry *domain.WorkoutLog) (primitive.ObjectID, error)
	// ListByUser returns the newest entries first, at most limit of them.
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error)
	Stats(ctx context.Context, userID primitive.ObjectID) (domain.HistoryStats, error)
}

// CatalogCacheRepository keeps the last fetched copy of catalog documents.
type CatalogCacheRepository interface {
	Get(ctx context.Context, key string) (*domain.CachedCatalog, error)
	Put(ctx context.Context, entry *domain.CachedCatalog) error
	Delete(ctx context.Context, key string) error
}
