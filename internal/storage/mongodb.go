package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const mongoCollection = "storage_entries"

type mongoEntry struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// MongoMedium stores each key as one document in a fixed collection. The
// byte ceiling is enforced client-side over the stored values, keeping the
// quota/eviction semantics identical across backends.
type MongoMedium struct {
	client   *mongo.Client
	coll     *mongo.Collection
	maxBytes int
}

// NewMongoMedium connects and pings the deployment. maxBytes <= 0 means
// unbounded.
func NewMongoMedium(uri, database string, maxBytes int) (*MongoMedium, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	log.Printf("Connected to MongoDB: %s", database)

	return &MongoMedium{
		client:   client,
		coll:     client.Database(database).Collection(mongoCollection),
		maxBytes: maxBytes,
	}, nil
}

func (m *MongoMedium) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var entry mongoEntry
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find storage entry: %w", err)
	}
	return entry.Value, true, nil
}

func (m *MongoMedium) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if m.maxBytes > 0 {
		used, err := m.usedExcluding(ctx, key)
		if err != nil {
			return err
		}
		if used+len(value) > m.maxBytes {
			return &QuotaExceededError{Key: key, Attempted: len(value), Used: used, Limit: m.maxBytes}
		}
	}

	_, err := m.coll.ReplaceOne(ctx,
		bson.M{"_id": key},
		mongoEntry{Key: key, Value: value},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("write storage entry: %w", err)
	}
	return nil
}

func (m *MongoMedium) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete storage entry: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (m *MongoMedium) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoMedium) usedExcluding(ctx context.Context, key string) (int, error) {
	cursor, err := m.coll.Find(ctx, bson.M{"_id": bson.M{"$ne": key}})
	if err != nil {
		return 0, fmt.Errorf("scan storage entries: %w", err)
	}
	var entries []mongoEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return 0, fmt.Errorf("decode storage entries: %w", err)
	}
	used := 0
	for _, e := range entries {
		used += len(e.Value)
	}
	return used, nil
}
