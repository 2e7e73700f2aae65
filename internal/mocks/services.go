// Package mocks provides testify mocks for the port interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fennin3/tweet-image-bot/internal/domain"
)

// QuoteClient is a mock implementation of ports.QuoteClient.
type QuoteClient struct {
	mock.Mock
}

func (m *QuoteClient) QuoteOfTheDay(ctx context.Context) (*domain.Quote, error) {
	args := m.Called(ctx)

	quote, _ := args.Get(0).(*domain.Quote)

	return quote, args.Error(1)
}

// Evaluator is a mock implementation of ports.Evaluator.
type Evaluator struct {
	mock.Mock
}

func (m *Evaluator) Evaluate(ctx context.Context, attributed string) (*domain.Evaluation, error) {
	args := m.Called(ctx, attributed)

	eval, _ := args.Get(0).(*domain.Evaluation)

	return eval, args.Error(1)
}

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	mock.Mock
}

func (m *Renderer) Render(ctx context.Context, attributed string) (*domain.RenderedImage, error) {
	args := m.Called(ctx, attributed)

	image, _ := args.Get(0).(*domain.RenderedImage)

	return image, args.Error(1)
}

// PipelineRunner is a mock implementation of handlers.PipelineRunner.
type PipelineRunner struct {
	mock.Mock
}

func (m *PipelineRunner) Run(ctx context.Context) (*domain.PostResult, error) {
	args := m.Called(ctx)

	result, _ := args.Get(0).(*domain.PostResult)

	return result, args.Error(1)
}

// Publisher is a mock implementation of ports.Publisher.
type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, image *domain.RenderedImage, caption string) error {
	args := m.Called(ctx, image, caption)

	return args.Error(0)
}
