package mongo

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
	"github.com/custodia-labs/solrsync/internal/logger"
	"github.com/custodia-labs/solrsync/internal/mapping"
)

// lookupTimeout bounds the collection lookup done by Repository.
const lookupTimeout = 10 * time.Second

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// Ensure Repository implements the interface.
var _ driven.RecordRepository = (*Repository)(nil)

// Config holds configuration for the MongoDB record source.
type Config struct {
	// URI is the connection string, e.g. mongodb://localhost:27017.
	URI string

	// Database is the database holding the collections.
	Database string

	// Collections maps registry type names to collection names. Unlisted
	// types use the snake_case form of the type name.
	Collections map[string]string
}

// Source opens repositories over the collections of one database.
type Source struct {
	client   *mongo.Client
	db       DatabaseInterface
	registry *mapping.Registry
	names    map[string]string
}

// NewSource connects to the server and checks it answers.
func NewSource(ctx context.Context, cfg Config, registry *mapping.Registry) (*Source, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, fmt.Errorf("%w: mongodb source needs a uri and a database", domain.ErrConfiguration)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	logger.Debug("Connected to MongoDB database %s", cfg.Database)

	s := NewSourceWithDatabase(&databaseAdapter{db: client.Database(cfg.Database)}, registry, cfg.Collections)
	s.client = client
	return s, nil
}

// NewSourceWithDatabase creates a source over an existing database handle.
func NewSourceWithDatabase(db DatabaseInterface, registry *mapping.Registry, collections map[string]string) *Source {
	names := make(map[string]string, len(collections))
	for k, v := range collections {
		names[k] = v
	}
	return &Source{db: db, registry: registry, names: names}
}

// Repository returns the repository of typeName. The type must be
// registered and its collection must exist.
func (s *Source) Repository(typeName string) (driven.RecordRepository, error) {
	goType, ok := s.registry.GoType(typeName)
	if !ok {
		return nil, fmt.Errorf("type %s: %w", typeName, domain.ErrNotFound)
	}
	name := s.names[typeName]
	if name == "" {
		name = mapping.SnakeCase(typeName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	found, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return nil, fmt.Errorf("looking up collection %s: %w", name, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("collection %s for %s: %w", name, typeName, domain.ErrNotFound)
	}

	return &Repository{collection: s.db.Collection(name), name: name, goType: goType}, nil
}

// Close disconnects from the server.
func (s *Source) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Repository reads the records of one collection.
type Repository struct {
	collection CollectionInterface
	name       string
	goType     reflect.Type
}

// CountAll returns the number of documents in the collection.
func (r *Repository) CountAll(ctx context.Context) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.name, err)
	}
	return int(n), nil
}

// FindPage returns at most limit records starting at offset, ordered by _id.
func (r *Repository) FindPage(ctx context.Context, offset, limit int) ([]any, error) {
	if limit <= 0 {
		return []any{}, nil
	}
	if offset < 0 {
		offset = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", r.name, err)
	}
	defer cur.Close(ctx)

	out := make([]any, 0, limit)
	for cur.Next(ctx) {
		record := reflect.New(r.goType)
		if err := cur.Decode(record.Interface()); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", r.name, err)
		}
		out = append(out, record.Interface())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", r.name, err)
	}
	return out, nil
}
