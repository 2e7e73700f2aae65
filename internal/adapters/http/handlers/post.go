package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fennin3/tweet-image-bot/internal/adapters/http/dto"
	"github.com/fennin3/tweet-image-bot/internal/domain"
)

// PipelineRunner runs one pass of the quote-to-post pipeline.
// Implemented by app.PipelineService.
type PipelineRunner interface {
	Run(ctx context.Context) (*domain.PostResult, error)
}

// PostHandler handles the post-creation endpoint.
type PostHandler struct {
	pipeline PipelineRunner
}

// NewPostHandler creates a new post handler.
func NewPostHandler(pipeline PipelineRunner) *PostHandler {
	if pipeline == nil {
		panic("PostHandler: pipeline is required")
	}

	return &PostHandler{pipeline: pipeline}
}

// CreatePost handles POST /api/v1/posts.
// It runs the pipeline once and reports the outcome. A day with no quote
// or a rating below the bar is a successful request with posted=false;
// only infrastructure failures produce error statuses.
func (h *PostHandler) CreatePost(c *gin.Context) {
	result, err := h.pipeline.Run(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	status := http.StatusOK
	if result.Posted {
		status = http.StatusCreated
	}

	c.JSON(status, dto.PostResponse{
		Posted:  result.Posted,
		Quote:   result.Quote,
		Caption: result.Caption,
	})
}
