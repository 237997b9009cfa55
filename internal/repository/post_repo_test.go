package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/testutil"
)

func TestPostRepository_ListNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPostRepository(db)
	user := testutil.TestUser(t, db)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		testutil.TestPost(t, db, user.ID, testutil.WithCreatedAt(base.Add(time.Duration(i)*time.Minute)))
	}

	posts, total, err := repo.List(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, posts, 2)
	assert.True(t, posts[0].CreatedAt.After(posts[1].CreatedAt))
	assert.Equal(t, user.Username, posts[0].User.Username)

	page3, _, err := repo.List(3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
}

func TestPostRepository_Latest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPostRepository(db)
	user := testutil.TestUser(t, db)
	base := time.Now().Add(-time.Hour)
	var newest *model.AchievementPost
	for i := 0; i < 4; i++ {
		newest = testutil.TestPost(t, db, user.ID, testutil.WithCreatedAt(base.Add(time.Duration(i)*time.Minute)))
	}

	posts, err := repo.Latest(3)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, newest.ID, posts[0].ID)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPostRepository(db)
	author := testutil.TestUser(t, db)
	fan := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author.ID)
	testutil.TestComment(t, db, fan.ID, post.ID)
	testutil.TestLike(t, db, fan.ID, post.ID)

	require.NoError(t, repo.Delete(post.ID))

	_, err := repo.GetByID(post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var comments, likes int64
	db.Model(&model.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	db.Model(&model.Like{}).Where("post_id = ?", post.ID).Count(&likes)
	assert.Zero(t, comments)
	assert.Zero(t, likes)
}

func TestPostRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPostRepository(db)
	user := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, user.ID)

	require.NoError(t, repo.UpdateFields(post.ID, map[string]interface{}{"title": "5k under 20"}))

	found, err := repo.GetByIDWithUser(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "5k under 20", found.Title)
	assert.Equal(t, user.ID, found.User.ID)
}
