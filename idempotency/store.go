package idempotency

import (
	"context"
	"errors"
	"fmt"

	"plantnet/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoStore struct {
	records *mongo.Collection
}

func NewMongoStore(records *mongo.Collection) *MongoStore {
	return &MongoStore{records: records}
}

func (s *MongoStore) Reserve(ctx context.Context, rec *Record) error {
	_, err := s.records.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("reserve idempotency key: %w", err)
	}
	return nil
}

func (s *MongoStore) Find(ctx context.Context, key string) (*Record, error) {
	var rec Record
	err := s.records.FindOne(ctx, bson.M{"key": key}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Expired between Reserve and Find.
		return nil, fmt.Errorf("%w: idempotency key expired, retry the request", apperr.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("find idempotency key: %w", err)
	}
	return &rec, nil
}

func (s *MongoStore) Complete(ctx context.Context, key string, resp Response) error {
	_, err := s.records.UpdateOne(ctx, bson.M{"key": key}, bson.M{"$set": bson.M{"response": resp}})
	if err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *MongoStore) Release(ctx context.Context, key string) error {
	_, err := s.records.DeleteOne(ctx, bson.M{"key": key, "response": bson.M{"$exists": false}})
	if err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
