package plants

import (
	"context"
	"testing"

	"plantnet/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func updated(n int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func counted(n int) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, mtest.TestDb+".plants", mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, mtest.TestDb+".plants", mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func TestStoreDecrement(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	id := primitive.NewObjectID()

	mt.Run("guards stock in the filter", func(mt *mtest.T) {
		mt.AddMockResponses(updated(1))
		require.NoError(mt, NewStore(mt.Coll).Decrement(ctx, id.Hex(), 3))

		evt := mt.GetStartedEvent()
		require.Equal(mt, "update", evt.CommandName)
		stmt := evt.Command.Lookup("updates", "0").Document()
		assert.Equal(mt, id, stmt.Lookup("q", "_id").ObjectID())
		assert.EqualValues(mt, 3, stmt.Lookup("q", "quantity", "$gte").AsInt64())
		assert.EqualValues(mt, -3, stmt.Lookup("u", "$inc", "quantity").AsInt64())
		assert.Nil(mt, mt.GetStartedEvent(), "no follow-up count on success")
	})

	mt.Run("short stock is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0), counted(1))
		err := NewStore(mt.Coll).Decrement(ctx, id.Hex(), 50)
		assert.ErrorIs(mt, err, apperr.ErrConflict)

		assert.Equal(mt, "update", mt.GetStartedEvent().CommandName)
		count := mt.GetStartedEvent()
		require.NotNil(mt, count)
		assert.Equal(mt, "aggregate", count.CommandName)
		assert.Equal(mt, id, count.Command.Lookup("pipeline", "0", "$match", "_id").ObjectID())
	})

	mt.Run("missing plant is not found", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0), counted(0))
		err := NewStore(mt.Coll).Decrement(ctx, id.Hex(), 1)
		assert.ErrorIs(mt, err, apperr.ErrNotFound)
	})

	mt.Run("rejects non-positive amounts without a write", func(mt *mtest.T) {
		err := NewStore(mt.Coll).Decrement(ctx, id.Hex(), 0)
		assert.ErrorIs(mt, err, apperr.ErrInvalid)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("malformed id is not found", func(mt *mtest.T) {
		err := NewStore(mt.Coll).Decrement(ctx, "not-an-id", 1)
		assert.ErrorIs(mt, err, apperr.ErrNotFound)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestStoreIncrement(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	id := primitive.NewObjectID()

	mt.Run("adds to stock", func(mt *mtest.T) {
		mt.AddMockResponses(updated(1))
		require.NoError(mt, NewStore(mt.Coll).Increment(ctx, id.Hex(), 4))

		stmt := mt.GetStartedEvent().Command.Lookup("updates", "0").Document()
		assert.EqualValues(mt, 4, stmt.Lookup("u", "$inc", "quantity").AsInt64())
		_, err := stmt.LookupErr("q", "quantity")
		assert.Error(mt, err, "increment never guards on stock")
	})

	mt.Run("unmatched id is not found", func(mt *mtest.T) {
		mt.AddMockResponses(updated(0))
		err := NewStore(mt.Coll).Increment(ctx, id.Hex(), 4)
		assert.ErrorIs(mt, err, apperr.ErrNotFound)
	})
}

func TestStoreGet(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	id := primitive.NewObjectID()

	mt.Run("decodes the plant", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mtest.TestDb+".plants", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Fern"},
			{Key: "price", Value: 12.5},
			{Key: "quantity", Value: 7},
			{Key: "seller", Value: bson.D{{Key: "email", Value: "s@x.com"}}},
		}))
		p, err := NewStore(mt.Coll).Get(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "Fern", p.Name)
		assert.Equal(mt, 7, p.Quantity)
		assert.Equal(mt, "s@x.com", p.Seller.Email)
	})

	mt.Run("empty result is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mtest.TestDb+".plants", mtest.FirstBatch))
		_, err := NewStore(mt.Coll).Get(ctx, id.Hex())
		assert.ErrorIs(mt, err, apperr.ErrNotFound)
	})
}
