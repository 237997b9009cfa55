package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/pkg/cart"
	"github.com/qs3c/fitness_go_server/internal/repository"
	"github.com/qs3c/fitness_go_server/internal/testutil"
)

func TestOrderService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	_, rdb := testutil.SetupTestRedis(t)
	ctx := context.Background()

	store := cart.NewRedisStore(rdb, 0)
	service := NewOrderService(repository.NewOrderRepository(db), store)

	owner := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	category := testutil.TestCategory(t, db)
	product := testutil.TestProduct(t, db, category.ID, testutil.WithPrice("12.50"))

	first := testutil.TestOrder(t, db, owner.ID, map[*model.Product]int{product: 1})
	second := testutil.TestOrder(t, db, owner.ID, map[*model.Product]int{product: 2})
	testutil.TestOrder(t, db, other.ID, map[*model.Product]int{product: 1})

	t.Run("list newest first", func(t *testing.T) {
		orders, err := service.List(owner.ID)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Equal(t, first.ID, orders[1].ID)
		assert.Equal(t, "25.00", orders[0].Total)
		assert.True(t, orders[0].IsPaid)
	})

	t.Run("detail", func(t *testing.T) {
		detail, err := service.Detail(owner.ID, second.ID)
		require.NoError(t, err)
		assert.Equal(t, second.PaymentRef, detail.PaymentRef)
		require.Len(t, detail.Items, 1)
		assert.Equal(t, product.Name, detail.Items[0].Name)
		assert.Equal(t, "12.50", detail.Items[0].Price)
		assert.Equal(t, "25.00", detail.Items[0].Subtotal)
	})

	t.Run("detail of another user's order", func(t *testing.T) {
		_, err := service.Detail(other.ID, first.ID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("success clears cart", func(t *testing.T) {
		c := cart.New()
		c.Add(product.ID, 1, decimal.RequireFromString("12.50"))
		require.NoError(t, store.Save(ctx, owner.ID, c))

		require.NoError(t, service.Success(ctx, owner.ID))

		loaded, err := store.Load(ctx, owner.ID)
		require.NoError(t, err)
		assert.True(t, loaded.IsEmpty())
	})
}
