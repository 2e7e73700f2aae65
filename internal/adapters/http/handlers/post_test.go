package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fennin3/tweet-image-bot/internal/adapters/http/dto"
	"github.com/fennin3/tweet-image-bot/internal/domain"
	"github.com/fennin3/tweet-image-bot/internal/mocks"
)

func performCreatePost(handler *PostHandler) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/posts", nil)

	handler.CreatePost(c)

	return w
}

func TestNewPostHandler_PanicsWithoutPipeline(t *testing.T) {
	assert.Panics(t, func() {
		NewPostHandler(nil)
	})
}

func TestCreatePost_Published(t *testing.T) {
	pipeline := &mocks.PipelineRunner{}
	pipeline.On("Run", mock.Anything).Return(&domain.PostResult{
		Posted:  true,
		Quote:   "An improved quote.",
		Caption: "Words to live by",
	}, nil)

	w := performCreatePost(NewPostHandler(pipeline))

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.PostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Posted)
	assert.Equal(t, "An improved quote.", resp.Quote)
	assert.Equal(t, "Words to live by", resp.Caption)
}

func TestCreatePost_SkippedStillOK(t *testing.T) {
	pipeline := &mocks.PipelineRunner{}
	pipeline.On("Run", mock.Anything).Return(&domain.PostResult{
		Posted:  false,
		Quote:   "Not quite good enough.",
		Caption: "Meh",
	}, nil)

	w := performCreatePost(NewPostHandler(pipeline))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Posted)
	assert.Equal(t, "Not quite good enough.", resp.Quote)
}

func TestCreatePost_UnavailableDependency(t *testing.T) {
	pipeline := &mocks.PipelineRunner{}
	pipeline.On("Run", mock.Anything).
		Return(nil, domain.NewUnavailableError("favqs", "connection refused"))

	w := performCreatePost(NewPostHandler(pipeline))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeUnavailable, resp.Error.Code)
}

func TestCreatePost_UnknownErrorIsInternal(t *testing.T) {
	pipeline := &mocks.PipelineRunner{}
	pipeline.On("Run", mock.Anything).
		Return(nil, assert.AnError)

	w := performCreatePost(NewPostHandler(pipeline))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
	assert.Equal(t, "an internal error occurred", resp.Error.Message)
}
