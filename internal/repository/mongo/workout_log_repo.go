package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/repository"
)

const workoutLogCollectionName = "workout_logs"

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository.
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new workout history repository.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

// Create inserts a history entry.
func (r *mongoWorkoutLogRepository) Create(ctx context.Context, entry *domain.WorkoutLog) (primitive.ObjectID, error) {
	if entry.UserID.IsZero() || entry.WorkoutID == "" {
		return primitive.NilObjectID, errors.New("workout log requires user and workout IDs")
	}
	entry.ID = primitive.NewObjectID()

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// ListByUser returns the user's entries sorted by date, newest first.
func (r *mongoWorkoutLogRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []domain.WorkoutLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Stats sums the user's history server-side.
func (r *mongoWorkoutLogRepository) Stats(ctx context.Context, userID primitive.ObjectID) (domain.HistoryStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalWorkouts": bson.M{"$sum": 1},
			"totalCalories": bson.M{"$sum": "$caloriesBurned"},
			"totalMinutes":  bson.M{"$sum": "$durationMin"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.HistoryStats{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalWorkouts int `bson:"totalWorkouts"`
		TotalCalories int `bson:"totalCalories"`
		TotalMinutes  int `bson:"totalMinutes"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return domain.HistoryStats{}, err
	}
	if len(rows) == 0 {
		return domain.HistoryStats{}, nil
	}
	return domain.HistoryStats{
		TotalWorkouts: rows[0].TotalWorkouts,
		TotalCalories: rows[0].TotalCalories,
		TotalMinutes:  rows[0].TotalMinutes,
	}, nil
}

// EnsureWorkoutLogIndexes creates the history lookup index.
func EnsureWorkoutLogIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
	}
	_, err := db.Collection(workoutLogCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
