package plants

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the Mongo-backed catalog and inventory ledger. Stock only ever
// changes through single-document $inc updates.
type Store struct {
	plants *mongo.Collection
}

func NewStore(plants *mongo.Collection) *Store {
	return &Store{plants: plants}
}

func notFound(id string) error {
	return fmt.Errorf("%w: plant %s", apperr.ErrNotFound, id)
}

func (s *Store) Get(ctx context.Context, id string) (*models.Plant, error) {
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return nil, notFound(id)
	}
	var p models.Plant
	err = s.plants.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find plant %s: %w", id, err)
	}
	return &p, nil
}

// Price is the authoritative unit price of a plant.
func (s *Store) Price(ctx context.Context, id string) (float64, error) {
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return 0, notFound(id)
	}
	var p struct {
		Price float64 `bson:"price"`
	}
	opts := options.FindOne().SetProjection(bson.M{"price": 1})
	err = s.plants.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, notFound(id)
	}
	if err != nil {
		return 0, fmt.Errorf("find plant price %s: %w", id, err)
	}
	return p.Price, nil
}

// Decrement removes amount from stock, rejecting the update when stock is short.
func (s *Store) Decrement(ctx context.Context, id string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", apperr.ErrInvalid)
	}
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return notFound(id)
	}

	filter := bson.M{"_id": oid, "quantity": bson.M{"$gte": amount}}
	res, err := s.plants.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"quantity": -amount}})
	if err != nil {
		return fmt.Errorf("decrement plant %s: %w", id, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return s.missOrShort(ctx, oid, id)
}

func (s *Store) Increment(ctx context.Context, id string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", apperr.ErrInvalid)
	}
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return notFound(id)
	}
	res, err := s.plants.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"quantity": amount}})
	if err != nil {
		return fmt.Errorf("increment plant %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *Store) missOrShort(ctx context.Context, oid primitive.ObjectID, id string) error {
	n, err := s.plants.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("count plant %s: %w", id, err)
	}
	if n == 0 {
		return notFound(id)
	}
	return fmt.Errorf("%w: insufficient stock for plant %s", apperr.ErrConflict, id)
}

func (s *Store) Create(ctx context.Context, p *models.Plant) error {
	p.ID = primitive.NewObjectID()
	if _, err := s.plants.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert plant: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]models.Plant, error) {
	return s.find(ctx, bson.M{})
}

func (s *Store) ListBySeller(ctx context.Context, sellerEmail string) ([]models.Plant, error) {
	return s.find(ctx, bson.M{"seller.email": sellerEmail})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Plant, error) {
	cur, err := s.plants.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find plants: %w", err)
	}
	defer cur.Close(ctx)

	plants := []models.Plant{}
	if err := cur.All(ctx, &plants); err != nil {
		return nil, fmt.Errorf("decode plants: %w", err)
	}
	return plants, nil
}

// DeleteOwned removes a plant only if it belongs to sellerEmail.
func (s *Store) DeleteOwned(ctx context.Context, id, sellerEmail string) error {
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return notFound(id)
	}
	res, err := s.plants.DeleteOne(ctx, bson.M{"_id": oid, "seller.email": sellerEmail})
	if err != nil {
		return fmt.Errorf("delete plant %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}
