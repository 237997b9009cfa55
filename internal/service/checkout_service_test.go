package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/pkg/cart"
	"github.com/qs3c/fitness_go_server/internal/pkg/payment"
	"github.com/qs3c/fitness_go_server/internal/repository"
	"github.com/qs3c/fitness_go_server/internal/testutil"
)

type checkoutFixture struct {
	checkout *CheckoutService
	carts    *CartService
	db       *gorm.DB
	gateway  *fakeGateway
	store    cart.Store
}

func setupCheckoutService(t *testing.T) *checkoutFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	_, rdb := testutil.SetupTestRedis(t)

	store := cart.NewRedisStore(rdb, 0)
	productRepo := repository.NewProductRepository(db)
	gateway := &fakeGateway{}

	return &checkoutFixture{
		checkout: NewCheckoutService(store, productRepo, repository.NewUserRepository(db), gateway, testConfig()),
		carts:    NewCartService(store, productRepo),
		db:       db,
		gateway:  gateway,
		store:    store,
	}
}

func TestCheckoutService_CheckoutCart_UsesCartPrices(t *testing.T) {
	f := setupCheckoutService(t)
	ctx := context.Background()

	user := testutil.TestUser(t, f.db, testutil.WithEmail("buyer@example.com"))
	category := testutil.TestCategory(t, f.db)
	shoes := testutil.TestProduct(t, f.db, category.ID, testutil.WithPrice("10.00"))
	band := testutil.TestProduct(t, f.db, category.ID, testutil.WithPrice("5.00"))

	_, err := f.carts.Add(ctx, user.ID, shoes.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, user.ID, band.ID, 1)
	require.NoError(t, err)

	// 加购后调价不影响结账金额
	require.NoError(t, repository.NewProductRepository(f.db).UpdatePrice(shoes.ID, decimal.RequireFromString("12.00")))

	resp, err := f.checkout.CheckoutCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", resp.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", resp.RedirectURL)

	require.Equal(t, 1, f.gateway.calls())
	req := f.gateway.requests[0]
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, "buyer@example.com", req.CustomerEmail)
	assert.Equal(t, "http://localhost:3000/store/orders/success?session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	assert.Equal(t, "http://localhost:3000/store/orders/cancel", req.CancelURL)

	require.Len(t, req.LineItems, 2)
	assert.Equal(t, shoes.Name, req.LineItems[0].Name)
	assert.True(t, req.LineItems[0].UnitAmount.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, int64(2), req.LineItems[0].Quantity)

	md, err := payment.DecodeOrderMetadata(req.Metadata)
	require.NoError(t, err)
	assert.Equal(t, user.ID, md.UserID)
	assert.Equal(t, "25.00", md.Cart.Total().StringFixed(2))

	// 结账不会清空购物车，支付成功后由回调处理
	c, err := f.store.Load(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestCheckoutService_CheckoutCart_Empty(t *testing.T) {
	f := setupCheckoutService(t)
	user := testutil.TestUser(t, f.db)

	_, err := f.checkout.CheckoutCart(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Zero(t, f.gateway.calls())
}

func TestCheckoutService_CheckoutCart_ProductDeactivated(t *testing.T) {
	f := setupCheckoutService(t)
	ctx := context.Background()

	user := testutil.TestUser(t, f.db)
	category := testutil.TestCategory(t, f.db)
	product := testutil.TestProduct(t, f.db, category.ID)

	_, err := f.carts.Add(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(product).Update("is_active", false).Error)

	_, err = f.checkout.CheckoutCart(ctx, user.ID)
	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.Zero(t, f.gateway.calls())
}

func TestCheckoutService_CheckoutCart_ProviderError(t *testing.T) {
	f := setupCheckoutService(t)
	ctx := context.Background()
	f.gateway.err = errProviderDown

	user := testutil.TestUser(t, f.db)
	category := testutil.TestCategory(t, f.db)
	product := testutil.TestProduct(t, f.db, category.ID)
	_, err := f.carts.Add(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = f.checkout.CheckoutCart(ctx, user.ID)
	assert.ErrorIs(t, err, ErrPaymentProvider)
	assert.Contains(t, err.Error(), "connection refused")
}
