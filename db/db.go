package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo holds the client and the collections the marketplace uses.
type Mongo struct {
	Client *mongo.Client

	UserCollection        *mongo.Collection
	PlantsCollection      *mongo.Collection
	OrdersCollection      *mongo.Collection
	IdempotencyCollection *mongo.Collection
}

// Connect dials MongoDB, pings the primary and resolves the collections.
func Connect(ctx context.Context, uri, database string) (*Mongo, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info().Str("database", database).Msg("connected to MongoDB")

	d := client.Database(database)
	return &Mongo{
		Client:                client,
		UserCollection:        d.Collection("users"),
		PlantsCollection:      d.Collection("plants"),
		OrdersCollection:      d.Collection("orders"),
		IdempotencyCollection: d.Collection("idempotency"),
	}, nil
}

// EnsureIndexes creates the unique and lookup indexes. Safe to call on every start.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_email"),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = m.PlantsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "seller.email", Value: 1}},
		Options: options.Index().SetName("seller_email"),
	})
	if err != nil {
		return fmt.Errorf("plants index: %w", err)
	}

	_, err = m.OrdersCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer.email", Value: 1}}, Options: options.Index().SetName("customer_email")},
		{Keys: bson.D{{Key: "sellerEmail", Value: 1}}, Options: options.Index().SetName("seller_email")},
	})
	if err != nil {
		return fmt.Errorf("orders index: %w", err)
	}

	_, err = m.IdempotencyCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_key")},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at")},
	})
	if err != nil {
		return fmt.Errorf("idempotency index: %w", err)
	}
	return nil
}

// WithinTx runs fn inside a multi-document transaction. Requires a replica set.
func (m *Mongo) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
