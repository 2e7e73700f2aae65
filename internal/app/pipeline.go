// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fennin3/tweet-image-bot/internal/domain"
	"github.com/fennin3/tweet-image-bot/internal/ports"
)

// PipelineService orchestrates the quote-to-post pipeline.
// It depends on port interfaces, not concrete implementations,
// following the Dependency Inversion Principle.
type PipelineService struct {
	quoteClient ports.QuoteClient
	evaluator   ports.Evaluator
	renderer    ports.Renderer
	publisher   ports.Publisher
	threshold   float64
	logger      *slog.Logger
}

// PipelineServiceConfig contains configuration for the pipeline service.
type PipelineServiceConfig struct {
	QuoteClient ports.QuoteClient
	Evaluator   ports.Evaluator
	Renderer    ports.Renderer
	Publisher   ports.Publisher

	// Threshold is the exclusive rating floor a quote must clear to be
	// published. Zero means use domain.PublishThreshold.
	Threshold float64

	Logger *slog.Logger
}

// NewPipelineService creates a new pipeline service with the provided dependencies.
func NewPipelineService(cfg PipelineServiceConfig) *PipelineService {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = domain.PublishThreshold
	}

	return &PipelineService{
		quoteClient: cfg.QuoteClient,
		evaluator:   cfg.Evaluator,
		renderer:    cfg.Renderer,
		publisher:   cfg.Publisher,
		threshold:   threshold,
		logger:      cfg.Logger,
	}
}

// Run executes one pass of the pipeline: fetch the quote of the day, ask the
// model to rate and improve it, and if the rating clears the threshold,
// render the improved quote and publish it with the model's caption.
//
// A missing quote or a rating at or below the threshold is not an error;
// the returned PostResult reports Posted=false and, when a quote was
// evaluated, carries the improved quote and caption for inspection.
func (s *PipelineService) Run(ctx context.Context) (*domain.PostResult, error) {
	s.logger.InfoContext(ctx, "fetching quote of the day")

	quote, err := s.quoteClient.QuoteOfTheDay(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoQuote) {
			s.logger.WarnContext(ctx, "no quote available today",
				slog.Any("error", err),
			)
			return &domain.PostResult{Posted: false}, nil
		}

		s.logger.ErrorContext(ctx, "failed to fetch quote of the day",
			slog.Any("error", err),
		)
		return nil, err
	}

	attributed := quote.Attributed()

	s.logger.InfoContext(ctx, "evaluating quote",
		slog.String("author", quote.Author),
	)

	eval, err := s.evaluator.Evaluate(ctx, attributed)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to evaluate quote",
			slog.Any("error", err),
		)
		return nil, err
	}

	result := &domain.PostResult{
		Quote:   eval.Improved,
		Caption: eval.Caption,
	}

	if !eval.Publishable(s.threshold) {
		s.logger.InfoContext(ctx, "quote did not clear publish threshold",
			slog.Float64("rating", eval.Rating),
			slog.Float64("threshold", s.threshold),
			slog.Bool("low_confidence", eval.LowConfidence),
		)
		return result, nil
	}

	s.logger.InfoContext(ctx, "rendering quote image",
		slog.Float64("rating", eval.Rating),
	)

	image, err := s.renderer.Render(ctx, eval.Improved)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render quote image",
			slog.Any("error", err),
		)
		return nil, err
	}

	if err := s.publisher.Publish(ctx, image, eval.Caption); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish post",
			slog.String("image_path", image.Path),
			slog.Any("error", err),
		)
		return nil, err
	}

	result.Posted = true

	s.logger.InfoContext(ctx, "published post",
		slog.String("image_path", image.Path),
	)

	return result, nil
}
