package orders

import (
	"context"
	"errors"
	"fmt"

	"plantnet/apperr"
	"plantnet/models"
	"plantnet/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoStore struct {
	orders *mongo.Collection
}

func NewMongoStore(orders *mongo.Collection) *MongoStore {
	return &MongoStore{orders: orders}
}

func orderNotFound(id string) error {
	return fmt.Errorf("%w: order %s", apperr.ErrNotFound, id)
}

func (s *MongoStore) Insert(ctx context.Context, o *models.Order) error {
	o.ID = primitive.NewObjectID()
	if _, err := s.orders.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*models.Order, error) {
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return nil, orderNotFound(id)
	}
	var o models.Order
	err = s.orders.FindOne(ctx, bson.M{"_id": oid}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, orderNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	return &o, nil
}

func (s *MongoStore) AdvanceStatus(ctx context.Context, id string, from []string, to string) (int64, error) {
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return 0, orderNotFound(id)
	}
	filter := bson.M{"_id": oid, "status": bson.M{"$in": from}}
	res, err := s.orders.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return 0, fmt.Errorf("update order status %s: %w", id, err)
	}
	return res.MatchedCount, nil
}

func (s *MongoStore) DeleteUnlessDelivered(ctx context.Context, id string) (*models.Order, error) {
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return nil, orderNotFound(id)
	}
	var o models.Order
	filter := bson.M{"_id": oid, "status": bson.M{"$ne": models.OrderDelivered}}
	err = s.orders.FindOneAndDelete(ctx, filter).Decode(&o)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("delete order %s: %w", id, err)
	}

	n, err := s.orders.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("count order %s: %w", id, err)
	}
	if n == 0 {
		return nil, orderNotFound(id)
	}
	return nil, fmt.Errorf("%w: cannot cancel once the product is Delivered", apperr.ErrConflict)
}
