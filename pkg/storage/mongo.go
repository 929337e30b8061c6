package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/jobtimeline/pkg/graph"
)

// CollectionLayouts is the collection MongoStore writes to.
const CollectionLayouts = "layouts"

// DefaultDatabase is used when NewMongoStore gets an empty database name.
const DefaultDatabase = "jobtimeline"

// mongoDoc is the stored document. The layout hash is the primary key.
type mongoDoc struct {
	ID      string       `bson:"_id"`
	SavedAt time.Time    `bson:"saved_at"`
	Layout  graph.Layout `bson:"layout"`
}

// MongoStore keeps layouts in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and verifies the server is reachable.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return NewMongoStoreFromClient(client, database), nil
}

// NewMongoStoreFromClient wraps an existing client. Close disconnects it.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	if database == "" {
		database = DefaultDatabase
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(CollectionLayouts),
	}
}

func (s *MongoStore) SaveLayout(ctx context.Context, l graph.Layout) error {
	if err := checkHash(l); err != nil {
		return err
	}
	doc := mongoDoc{ID: l.Hash, SavedAt: time.Now().UTC(), Layout: l}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": l.Hash}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo save %s: %w", l.Hash, err)
	}
	return nil
}

func (s *MongoStore) GetLayout(ctx context.Context, hash string) (graph.Layout, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": hash}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return graph.Layout{}, ErrNotFound
	}
	if err != nil {
		return graph.Layout{}, fmt.Errorf("mongo get %s: %w", hash, err)
	}
	return doc.Layout, nil
}

func (s *MongoStore) DeleteLayout(ctx context.Context, hash string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": hash}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", hash, err)
	}
	return nil
}

func (s *MongoStore) ListLayouts(ctx context.Context, limit int) ([]Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "saved_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	defer cur.Close(ctx)

	var out []Summary
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo decode: %w", err)
		}
		out = append(out, summarize(doc.Layout, doc.SavedAt))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	return out, nil
}

// Ping checks connectivity.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
