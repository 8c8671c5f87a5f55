package archive

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultDatabase is used when the URI names no database.
	DefaultDatabase = "femtopgm"

	// Collection holds one document per compile session.
	Collection = "compiles"

	connectTimeout = 10 * time.Second
)

// Mongo stores records in MongoDB.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to uri and prepares the compiles collection. An empty
// database means DefaultDatabase.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if database == "" {
		database = DefaultDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{client: client, coll: client.Database(database).Collection(Collection)}
	if _, err := m.coll.Indexes().CreateMany(ctx, indexes()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return m, nil
}

func indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "stem", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "programs.sha256", Value: 1}}},
	}
}

// Save inserts r.
func (m *Mongo) Save(ctx context.Context, r Record) error {
	if _, err := m.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("archive session %s: %w", r.Session, err)
	}
	return nil
}

// FindByChecksum returns the records containing a program with the given
// SHA-256, newest first.
func (m *Mongo) FindByChecksum(ctx context.Context, sum string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.coll.Find(ctx, bson.D{{Key: "programs.sha256", Value: sum}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", sum, err)
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return out, nil
}

// Close disconnects from the server.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ Archive = (*Mongo)(nil)
