package users

import (
	"context"
	"errors"
	"fmt"

	"plantnet/apperr"
	"plantnet/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	users *mongo.Collection
}

func NewMongoStore(users *mongo.Collection) *MongoStore {
	return &MongoStore{users: users}
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	return &u, nil
}

// InsertIfAbsent creates u unless a user with the same email exists, and
// returns the stored record either way.
func (s *MongoStore) InsertIfAbsent(ctx context.Context, u *models.User) (*models.User, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"email":     u.Email,
		"name":      u.Name,
		"image":     u.Image,
		"role":      u.Role,
		"timestamp": u.Timestamp,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"email": u.Email}, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an upsert race against the unique index; the winner's row is the answer.
		return s.FindByEmail(ctx, u.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", u.Email, err)
	}
	return &stored, nil
}

func (s *MongoStore) ListExcept(ctx context.Context, email string) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.M{"email": bson.M{"$ne": email}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return out, nil
}

func (s *MongoStore) MarkRequested(ctx context.Context, email string) (int64, error) {
	filter := bson.M{
		"email":  email,
		"role":   models.RoleCustomer,
		"status": bson.M{"$ne": models.StatusRequested},
	}
	res, err := s.users.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": models.StatusRequested}})
	if err != nil {
		return 0, fmt.Errorf("request seller %s: %w", email, err)
	}
	return res.MatchedCount, nil
}

func (s *MongoStore) SetRole(ctx context.Context, email string, role models.Role) (int64, error) {
	update := bson.M{"$set": bson.M{"role": role, "status": models.StatusVerified}}
	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return 0, fmt.Errorf("set role %s: %w", email, err)
	}
	return res.MatchedCount, nil
}
