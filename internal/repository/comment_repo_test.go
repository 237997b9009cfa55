package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/testutil"
)

func TestCommentRepository_CreateIncrementsCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommentRepository(db)
	postRepo := NewPostRepository(db)
	user := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, user.ID)

	comment := &model.Comment{UserID: user.ID, PostID: post.ID, Content: "Beast mode"}
	require.NoError(t, repo.Create(comment))
	assert.NotZero(t, comment.ID)

	found, err := postRepo.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.CommentCount)

	withUser, err := repo.GetByIDWithUser(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, withUser.User.Username)
}

func TestCommentRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommentRepository(db)
	postRepo := NewPostRepository(db)
	user := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, user.ID)
	comment := testutil.TestComment(t, db, user.ID, post.ID)

	require.NoError(t, repo.Delete(comment))
	// 重复删除不会把计数减成负数
	require.NoError(t, repo.Delete(comment))

	_, err := repo.GetByID(comment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := postRepo.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.CommentCount)
}

func TestCommentRepository_ListByPostID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommentRepository(db)
	user := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, user.ID)
	other := testutil.TestPost(t, db, user.ID)
	testutil.TestComment(t, db, user.ID, post.ID)
	last := testutil.TestComment(t, db, user.ID, post.ID)
	testutil.TestComment(t, db, user.ID, other.ID)

	comments, err := repo.ListByPostID(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, last.ID, comments[0].ID)

	count, err := repo.CountByPostID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
