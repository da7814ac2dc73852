package idempotency

import (
	"context"
	"testing"
	"time"

	"plantnet/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	rec := &Record{Key: "k1", Method: "POST", Path: "/order", RequestHash: "h", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}

	mt.Run("reserve inserts the record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, NewMongoStore(mt.Coll).Reserve(ctx, rec))

		evt := mt.GetStartedEvent()
		require.Equal(mt, "insert", evt.CommandName)
		doc := evt.Command.Lookup("documents", "0").Document()
		assert.Equal(mt, "k1", doc.Lookup("key").StringValue())
		_, err := doc.LookupErr("response")
		assert.Error(mt, err, "a reservation carries no response yet")
	})

	mt.Run("duplicate key means already reserved", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key"}))
		err := NewMongoStore(mt.Coll).Reserve(ctx, rec)
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("release keeps completed records", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, NewMongoStore(mt.Coll).Release(ctx, "k1"))

		evt := mt.GetStartedEvent()
		require.Equal(mt, "delete", evt.CommandName)
		q := evt.Command.Lookup("deletes", "0", "q").Document()
		assert.Equal(mt, "k1", q.Lookup("key").StringValue())
		assert.False(mt, q.Lookup("response", "$exists").Boolean())
	})

	mt.Run("expired record is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mtest.TestDb+".idempotency", mtest.FirstBatch))
		_, err := NewMongoStore(mt.Coll).Find(ctx, "k1")
		assert.ErrorIs(mt, err, apperr.ErrConflict)
	})
}
