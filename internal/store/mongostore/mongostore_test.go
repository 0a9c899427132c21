package mongostore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shopkit/storefront/internal/store"
)

func TestWrapErr(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, wrapErr("get product", nil))
	})

	t.Run("no documents becomes not found", func(t *testing.T) {
		err := wrapErr("get product", mongo.ErrNoDocuments)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate key becomes duplicate", func(t *testing.T) {
		dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		err := wrapErr("create user", dup)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("deadline exceeded becomes unavailable", func(t *testing.T) {
		err := wrapErr("list products", context.DeadlineExceeded)
		assert.ErrorIs(t, err, store.ErrUnavailable)
	})

	t.Run("network error becomes unavailable", func(t *testing.T) {
		netErr := mongo.CommandError{Name: "SocketException", Labels: []string{"NetworkError"}}
		err := wrapErr("get order", netErr)
		assert.ErrorIs(t, err, store.ErrUnavailable)
	})

	t.Run("anything else stays unclassified", func(t *testing.T) {
		err := wrapErr("get order", errors.New("bson decode failed"))
		assert.False(t, errors.Is(err, store.ErrUnavailable))
		assert.False(t, errors.Is(err, store.ErrNotFound))
		assert.Contains(t, err.Error(), "get order")
	})
}
