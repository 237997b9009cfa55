package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/response"
	"github.com/qs3c/fitness_go_server/internal/testutil"
)

func TestCommentHandler_Create(t *testing.T) {
	f := setupCommunity(t)
	owner := testutil.TestUser(t, f.db)
	commenter := testutil.TestUser(t, f.db)
	post := testutil.TestPost(t, f.db, owner.ID)

	w := performRequest(f.router(commenter.ID), "POST", fmt.Sprintf("/posts/%d/comments", post.ID),
		dto.CreateCommentRequest{Content: "Great lift!"})
	require.Equal(t, http.StatusCreated, w.Code)

	var item dto.CommentItem
	parseData(t, w, &item)
	assert.Equal(t, "Great lift!", item.Content)
	assert.Equal(t, commenter.ID, item.User.ID)
	assert.True(t, item.IsOwner)

	var updated model.AchievementPost
	require.NoError(t, f.db.First(&updated, post.ID).Error)
	assert.Equal(t, 1, updated.CommentCount)
}

func TestCommentHandler_Create_Errors(t *testing.T) {
	f := setupCommunity(t)
	user := testutil.TestUser(t, f.db)
	post := testutil.TestPost(t, f.db, user.ID)

	tests := []struct {
		name   string
		userID int64
		path   string
		body   interface{}
		status int
		code   int
	}{
		{"unauthenticated", 0, fmt.Sprintf("/posts/%d/comments", post.ID), dto.CreateCommentRequest{Content: "hi"}, http.StatusUnauthorized, response.CodeAuthFailed},
		{"post not found", user.ID, "/posts/99999/comments", dto.CreateCommentRequest{Content: "hi"}, http.StatusNotFound, response.CodeResourceNotFound},
		{"empty content", user.ID, fmt.Sprintf("/posts/%d/comments", post.ID), map[string]string{}, http.StatusBadRequest, response.CodeParamError},
		{"blank after sanitize", user.ID, fmt.Sprintf("/posts/%d/comments", post.ID), dto.CreateCommentRequest{Content: "   "}, http.StatusBadRequest, response.CodeParamError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(f.router(tt.userID), "POST", tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, parseResponse(t, w).Code)
		})
	}
}

func TestCommentHandler_Delete(t *testing.T) {
	f := setupCommunity(t)
	owner := testutil.TestUser(t, f.db)
	other := testutil.TestUser(t, f.db)
	post := testutil.TestPost(t, f.db, owner.ID)
	comment := testutil.TestComment(t, f.db, owner.ID, post.ID)
	path := fmt.Sprintf("/comments/%d", comment.ID)

	w := performRequest(f.router(other.ID), "DELETE", path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(f.router(owner.ID), "DELETE", path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(f.router(owner.ID), "DELETE", path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var updated model.AchievementPost
	require.NoError(t, f.db.First(&updated, post.ID).Error)
	assert.Equal(t, 0, updated.CommentCount)
}
