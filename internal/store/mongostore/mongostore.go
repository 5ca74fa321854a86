package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "state"

// document is one persisted collection. Value holds the raw JSON so the store
// decodes every backend the same way.
type document struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Backend saves each collection as one document of the state collection.
type Backend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func New(ctx context.Context, uri string, dbName string) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Backend{
		client: client,
		coll:   client.Database(dbName).Collection(collectionName),
	}, nil
}

func (b *Backend) Load(ctx context.Context) (map[string][]byte, error) {
	cur, err := b.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	defer cur.Close(ctx)

	values := make(map[string][]byte)
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode state document: %w", err)
		}
		values[doc.Key] = []byte(doc.Value)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func (b *Backend) Save(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(values))
	for key, value := range values {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: key}}).
			SetReplacement(document{Key: key, Value: string(value), UpdatedAt: now}).
			SetUpsert(true))
	}

	if _, err := b.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (b *Backend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}
