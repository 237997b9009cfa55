package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/repository"
	"github.com/qs3c/fitness_go_server/internal/testutil"
)

func setupCatalogService(t *testing.T) (*CatalogService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return NewCatalogService(repository.NewProductRepository(db), repository.NewOrderRepository(db)), db
}

func TestCatalogService_ListProducts(t *testing.T) {
	service, db := setupCatalogService(t)

	shoes := testutil.TestCategory(t, db)
	bands := testutil.TestCategory(t, db)
	p1 := testutil.TestProduct(t, db, shoes.ID)
	testutil.TestProduct(t, db, bands.ID)
	testutil.TestProduct(t, db, shoes.ID, testutil.WithInactive())

	all, err := service.ListProducts("")
	require.NoError(t, err)
	assert.Len(t, all.Categories, 2)
	assert.Len(t, all.Products, 2)
	assert.Nil(t, all.Category)

	filtered, err := service.ListProducts(shoes.Slug)
	require.NoError(t, err)
	require.Len(t, filtered.Products, 1)
	assert.Equal(t, p1.ID, filtered.Products[0].ID)
	assert.Equal(t, "10.00", filtered.Products[0].Price)
	assert.Equal(t, shoes.ID, filtered.Category.ID)

	_, err = service.ListProducts("no-such-category")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCatalogService_GetProduct(t *testing.T) {
	service, db := setupCatalogService(t)

	category := testutil.TestCategory(t, db)
	product := testutil.TestProduct(t, db, category.ID)
	inactive := testutil.TestProduct(t, db, category.ID, testutil.WithInactive())
	buyer := testutil.TestUser(t, db)
	browser := testutil.TestUser(t, db)
	testutil.TestOrder(t, db, buyer.ID, map[*model.Product]int{product: 1})

	detail, err := service.GetProduct(product.ID, product.Slug, &buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, detail.Name)
	assert.True(t, detail.CanReview)
	assert.Empty(t, detail.Reviews)

	detail, err = service.GetProduct(product.ID, product.Slug, &browser.ID)
	require.NoError(t, err)
	assert.False(t, detail.CanReview)

	detail, err = service.GetProduct(product.ID, product.Slug, nil)
	require.NoError(t, err)
	assert.False(t, detail.CanReview)

	_, err = service.GetProduct(product.ID, "wrong-slug", nil)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = service.GetProduct(inactive.ID, inactive.Slug, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogService_CreateReview(t *testing.T) {
	service, db := setupCatalogService(t)

	category := testutil.TestCategory(t, db)
	product := testutil.TestProduct(t, db, category.ID)
	buyer := testutil.TestUser(t, db)
	browser := testutil.TestUser(t, db)
	testutil.TestOrder(t, db, buyer.ID, map[*model.Product]int{product: 1})

	_, err := service.CreateReview(browser.ID, product.ID, &dto.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)

	review, err := service.CreateReview(buyer.ID, product.ID, &dto.CreateReviewRequest{Rating: 4, Review: "Comfy"})
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)

	_, err = service.CreateReview(buyer.ID, product.ID, &dto.CreateReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	detail, err := service.GetProduct(product.ID, product.Slug, &buyer.ID)
	require.NoError(t, err)
	require.Len(t, detail.Reviews, 1)
	assert.False(t, detail.CanReview)
	assert.Equal(t, buyer.Username, detail.Reviews[0].User.Username)

	_, err = service.CreateReview(buyer.ID, 99999, &dto.CreateReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, ErrProductNotFound)
}
