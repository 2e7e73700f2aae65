// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNoQuote, ErrUnavailable, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/fennin3/tweet-image-bot/internal/domain"
)

// QuoteClient retrieves the quote of the day from the external quote service.
type QuoteClient interface {
	// QuoteOfTheDay fetches today's quote.
	// Returns domain.ErrNoQuote if the service answered but had no quote,
	// and domain.ErrUnavailable if it could not be reached at all.
	QuoteOfTheDay(ctx context.Context) (*domain.Quote, error)
}

// Evaluator asks a text-generation model to rate, rewrite, and caption
// an attributed quote.
type Evaluator interface {
	// Evaluate submits the attributed quote and parses the model's answer.
	// A response the parser cannot fully trust comes back as a
	// low-confidence Evaluation rather than an error; only an unusable
	// completion yields domain.ErrMalformedEvaluation.
	Evaluate(ctx context.Context, attributed string) (*domain.Evaluation, error)
}

// Renderer composes an attributed quote onto the background image.
type Renderer interface {
	// Render draws the quote and author onto the canvas and persists the
	// result to a per-invocation path under scratch storage.
	Render(ctx context.Context, attributed string) (*domain.RenderedImage, error)
}

// Publisher posts a rendered image with a caption to the social account.
type Publisher interface {
	// Publish uploads the image, then creates a post referencing the
	// returned media id. There is no verification beyond the API calls
	// themselves not failing.
	Publish(ctx context.Context, image *domain.RenderedImage, caption string) error
}
