package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/repository"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user email and password hash are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Favorites == nil {
		user.Favorites = []string{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile replaces the embedded profile document.
func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, profile *domain.Profile) error {
	update := bson.M{
		"$set": bson.M{
			"profile":   profile,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, id, update)
}

// AddFavorite adds workoutID to the user's favorites. Adding twice is a no-op.
func (r *mongoUserRepository) AddFavorite(ctx context.Context, id primitive.ObjectID, workoutID string) error {
	update := bson.M{
		"$addToSet": bson.M{"favorites": workoutID}, // $addToSet prevents duplicates
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, id, update)
}

// RemoveFavorite removes workoutID from the user's favorites.
func (r *mongoUserRepository) RemoveFavorite(ctx context.Context, id primitive.ObjectID, workoutID string) error {
	update := bson.M{
		"$pull": bson.M{"favorites": workoutID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, id, update)
}

func (r *mongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	// ModifiedCount can be 0 when nothing changed, which is fine.
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := db.Collection(userCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
