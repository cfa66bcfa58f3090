package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/repository"
)

const catalogCacheCollectionName = "catalog_cache"

type mongoCatalogCacheRepository struct {
	collection *mongo.Collection
}

// NewMongoCatalogCacheRepository stores catalog documents keyed by object key.
func NewMongoCatalogCacheRepository(db *mongo.Database) repository.CatalogCacheRepository {
	return &mongoCatalogCacheRepository{
		collection: db.Collection(catalogCacheCollectionName),
	}
}

func (r *mongoCatalogCacheRepository) Get(ctx context.Context, key string) (*domain.CachedCatalog, error) {
	var entry domain.CachedCatalog
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Put upserts the entry under its key.
func (r *mongoCatalogCacheRepository) Put(ctx context.Context, entry *domain.CachedCatalog) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": entry.Key},
		entry,
		options.Replace().SetUpsert(true))
	return err
}

// Delete removes the entry. Deleting a missing key is not an error.
func (r *mongoCatalogCacheRepository) Delete(ctx context.Context, key string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
