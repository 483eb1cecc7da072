package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DatabaseInterface is the part of *mongo.Database the source uses.
type DatabaseInterface interface {
	Collection(name string) CollectionInterface
	ListCollectionNames(ctx context.Context, filter interface{}) ([]string, error)
}

// CollectionInterface is the part of *mongo.Collection the repositories use.
type CollectionInterface interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorInterface, error)
}

// CursorInterface is the part of *mongo.Cursor the repositories use.
type CursorInterface interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Close(ctx context.Context) error
	Err() error
}

// databaseAdapter makes *mongo.Database satisfy DatabaseInterface.
type databaseAdapter struct {
	db *mongo.Database
}

func (d *databaseAdapter) Collection(name string) CollectionInterface {
	return &collectionAdapter{col: d.db.Collection(name)}
}

func (d *databaseAdapter) ListCollectionNames(ctx context.Context, filter interface{}) ([]string, error) {
	return d.db.ListCollectionNames(ctx, filter)
}

// collectionAdapter makes *mongo.Collection satisfy CollectionInterface.
type collectionAdapter struct {
	col *mongo.Collection
}

func (c *collectionAdapter) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.col.CountDocuments(ctx, filter, opts...)
}

func (c *collectionAdapter) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorInterface, error) {
	cur, err := c.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return cur, nil
}
