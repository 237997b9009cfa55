package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/testutil"
)

func TestProductRepository_SlugGeneratedFromName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	category := testutil.TestCategory(t, db, func(c *model.ProductCategory) { c.Name = "Protein Powders" })
	product := testutil.TestProduct(t, db, category.ID, func(p *model.Product) { p.Name = "Whey Isolate 2kg" })

	assert.Equal(t, "protein-powders", category.Slug)
	assert.Equal(t, "whey-isolate-2kg", product.Slug)
}

func TestProductRepository_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	category := testutil.TestCategory(t, db)
	testutil.TestProduct(t, db, category.ID, func(p *model.Product) { p.Name = "Kettlebell" })

	err := db.Create(&model.Product{CategoryID: category.ID, Name: "Kettlebell", Price: decimal.NewFromInt(1), IsActive: true}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestProductRepository_ListActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewProductRepository(db)
	c1 := testutil.TestCategory(t, db)
	c2 := testutil.TestCategory(t, db)
	p1 := testutil.TestProduct(t, db, c1.ID)
	testutil.TestProduct(t, db, c1.ID, testutil.WithInactive())
	p3 := testutil.TestProduct(t, db, c2.ID)

	all, err := repo.ListActive(0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inC1, err := repo.ListActive(c1.ID)
	require.NoError(t, err)
	require.Len(t, inC1, 1)
	assert.Equal(t, p1.ID, inC1[0].ID)
	assert.NotNil(t, inC1[0].Category)

	inC2, err := repo.ListActive(c2.ID)
	require.NoError(t, err)
	assert.Equal(t, p3.ID, inC2[0].ID)
}

func TestProductRepository_GetActiveByIDAndSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewProductRepository(db)
	category := testutil.TestCategory(t, db)
	active := testutil.TestProduct(t, db, category.ID)
	inactive := testutil.TestProduct(t, db, category.ID, testutil.WithInactive())

	found, err := repo.GetActiveByIDAndSlug(active.ID, active.Slug)
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)

	_, err = repo.GetActiveByIDAndSlug(active.ID, "wrong-slug")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetActiveByIDAndSlug(inactive.ID, inactive.Slug)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_Reviews(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewProductRepository(db)
	user := testutil.TestUser(t, db)
	category := testutil.TestCategory(t, db)
	product := testutil.TestProduct(t, db, category.ID)

	ok, err := repo.HasReviewed(product.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.CreateReview(&model.ProductReview{ProductID: product.ID, UserID: user.ID, Rating: 5}))

	ok, err = repo.HasReviewed(product.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	err = repo.CreateReview(&model.ProductReview{ProductID: product.ID, UserID: user.ID, Rating: 1})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	reviews, err := repo.ListReviews(product.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, user.Username, reviews[0].User.Username)
}
