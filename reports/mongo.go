package reports

import (
	"context"
	"fmt"

	"plantnet/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	users  *mongo.Collection
	plants *mongo.Collection
	orders *mongo.Collection
}

func NewMongoStore(users, plants, orders *mongo.Collection) *MongoStore {
	return &MongoStore{users: users, plants: plants, orders: orders}
}

// enrichPipeline joins orders with their plant and flattens the display fields.
func enrichPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{"plantObjectId": bson.M{"$toObjectId": "$plantId"}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "plants",
			"localField":   "plantObjectId",
			"foreignField": "_id",
			"as":           "plants",
		}}},
		{{Key: "$unwind", Value: "$plants"}},
		{{Key: "$addFields", Value: bson.M{
			"name":     "$plants.name",
			"category": "$plants.category",
			"image":    "$plants.image",
		}}},
		{{Key: "$project", Value: bson.M{"plants": 0, "plantObjectId": 0}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
	}
}

func (s *MongoStore) EnrichedOrders(ctx context.Context, scope OrderScope) ([]models.EnrichedOrder, error) {
	match := bson.M{}
	switch {
	case scope.CustomerEmail != "":
		match["customer.email"] = scope.CustomerEmail
	case scope.SellerEmail != "":
		match["sellerEmail"] = scope.SellerEmail
	default:
		return nil, fmt.Errorf("order scope needs a customer or seller email")
	}

	cur, err := s.orders.Aggregate(ctx, enrichPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.EnrichedOrder{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return out, nil
}

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	return s.users.EstimatedDocumentCount(ctx)
}

func (s *MongoStore) CountPlants(ctx context.Context) (int64, error) {
	return s.plants.EstimatedDocumentCount(ctx)
}

func (s *MongoStore) OrderFacts(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetProjection(bson.M{"createdAt": 1, "price": 1, "quantity": 1})
	cur, err := s.orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Order
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return out, nil
}
