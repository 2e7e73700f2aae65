package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fennin3/tweet-image-bot/internal/domain"
	"github.com/fennin3/tweet-image-bot/internal/mocks"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServiceForTest(qc *mocks.QuoteClient, ev *mocks.Evaluator, rd *mocks.Renderer, pb *mocks.Publisher) *PipelineService {
	return NewPipelineService(PipelineServiceConfig{
		QuoteClient: qc,
		Evaluator:   ev,
		Renderer:    rd,
		Publisher:   pb,
		Logger:      discardLogger(),
	})
}

func TestNewPipelineService_DefaultsThreshold(t *testing.T) {
	svc := newServiceForTest(&mocks.QuoteClient{}, &mocks.Evaluator{}, &mocks.Renderer{}, &mocks.Publisher{})

	require.NotNil(t, svc)
	assert.InDelta(t, domain.PublishThreshold, svc.threshold, 0.0001)
}

func TestPipelineService_Run_PublishesAboveThreshold(t *testing.T) {
	qc := &mocks.QuoteClient{}
	ev := &mocks.Evaluator{}
	rd := &mocks.Renderer{}
	pb := &mocks.Publisher{}

	quote := &domain.Quote{Body: "Be yourself.", Author: "Oscar Wilde"}
	eval := &domain.Evaluation{
		Rating:   8,
		Improved: "\"Be yourself; everyone else is taken.\" - Oscar Wilde",
		Caption:  "Authenticity wins. #quotes",
	}
	image := &domain.RenderedImage{Path: "/tmp/out/abc.png"}

	qc.On("QuoteOfTheDay", mock.Anything).Return(quote, nil)
	ev.On("Evaluate", mock.Anything, quote.Attributed()).Return(eval, nil)
	rd.On("Render", mock.Anything, eval.Improved).Return(image, nil)
	pb.On("Publish", mock.Anything, image, eval.Caption).Return(nil)

	result, err := newServiceForTest(qc, ev, rd, pb).Run(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Posted)
	assert.Equal(t, eval.Improved, result.Quote)
	assert.Equal(t, eval.Caption, result.Caption)

	qc.AssertExpectations(t)
	ev.AssertExpectations(t)
	rd.AssertExpectations(t)
	pb.AssertExpectations(t)
}

// Nothing deduplicates runs: the same upstream quote on two triggers
// produces two distinct posts.
func TestPipelineService_Run_TwiceWithSameQuotePostsTwice(t *testing.T) {
	qc := &mocks.QuoteClient{}
	ev := &mocks.Evaluator{}
	rd := &mocks.Renderer{}
	pb := &mocks.Publisher{}

	quote := &domain.Quote{Body: "Be yourself.", Author: "Oscar Wilde"}
	eval := &domain.Evaluation{Rating: 8, Improved: "\"Be yourself.\" - Oscar Wilde", Caption: "Authenticity wins."}

	qc.On("QuoteOfTheDay", mock.Anything).Return(quote, nil)
	ev.On("Evaluate", mock.Anything, quote.Attributed()).Return(eval, nil)
	rd.On("Render", mock.Anything, eval.Improved).
		Return(&domain.RenderedImage{Path: "/tmp/out/first.png"}, nil).Once()
	rd.On("Render", mock.Anything, eval.Improved).
		Return(&domain.RenderedImage{Path: "/tmp/out/second.png"}, nil).Once()
	pb.On("Publish", mock.Anything, mock.Anything, eval.Caption).Return(nil)

	svc := newServiceForTest(qc, ev, rd, pb)

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, first.Posted)

	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Posted)

	pb.AssertNumberOfCalls(t, "Publish", 2)
	rd.AssertExpectations(t)
}

func TestPipelineService_Run_SkipsAtOrBelowThreshold(t *testing.T) {
	tests := []struct {
		name string
		eval *domain.Evaluation
	}{
		{
			name: "rating below threshold",
			eval: &domain.Evaluation{Rating: 5, Improved: "improved", Caption: "caption"},
		},
		{
			name: "rating exactly at threshold",
			eval: &domain.Evaluation{Rating: 6.5, Improved: "improved", Caption: "caption"},
		},
		{
			name: "low confidence overrides high rating",
			eval: &domain.Evaluation{Rating: 9, Improved: "improved", Caption: "caption", LowConfidence: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qc := &mocks.QuoteClient{}
			ev := &mocks.Evaluator{}
			rd := &mocks.Renderer{}
			pb := &mocks.Publisher{}

			qc.On("QuoteOfTheDay", mock.Anything).
				Return(&domain.Quote{Body: "b", Author: "a"}, nil)
			ev.On("Evaluate", mock.Anything, mock.Anything).Return(tt.eval, nil)

			result, err := newServiceForTest(qc, ev, rd, pb).Run(context.Background())

			require.NoError(t, err)
			assert.False(t, result.Posted)
			assert.Equal(t, tt.eval.Improved, result.Quote)
			assert.Equal(t, tt.eval.Caption, result.Caption)

			rd.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
			pb.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPipelineService_Run_NoQuoteIsSoftFailure(t *testing.T) {
	qc := &mocks.QuoteClient{}
	ev := &mocks.Evaluator{}
	rd := &mocks.Renderer{}
	pb := &mocks.Publisher{}

	qc.On("QuoteOfTheDay", mock.Anything).
		Return(nil, domain.NewNoQuoteError("favqs", 404))

	result, err := newServiceForTest(qc, ev, rd, pb).Run(context.Background())

	require.NoError(t, err)
	assert.False(t, result.Posted)
	assert.Empty(t, result.Quote)
	assert.Empty(t, result.Caption)

	ev.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
}

func TestPipelineService_Run_PropagatesErrors(t *testing.T) {
	sentinel := errors.New("boom")

	tests := []struct {
		name      string
		setupMock func(*mocks.QuoteClient, *mocks.Evaluator, *mocks.Renderer, *mocks.Publisher)
	}{
		{
			name: "quote client unavailable",
			setupMock: func(qc *mocks.QuoteClient, _ *mocks.Evaluator, _ *mocks.Renderer, _ *mocks.Publisher) {
				qc.On("QuoteOfTheDay", mock.Anything).
					Return(nil, domain.NewUnavailableError("favqs", sentinel.Error()))
			},
		},
		{
			name: "evaluator fails",
			setupMock: func(qc *mocks.QuoteClient, ev *mocks.Evaluator, _ *mocks.Renderer, _ *mocks.Publisher) {
				qc.On("QuoteOfTheDay", mock.Anything).
					Return(&domain.Quote{Body: "b", Author: "a"}, nil)
				ev.On("Evaluate", mock.Anything, mock.Anything).Return(nil, sentinel)
			},
		},
		{
			name: "renderer fails",
			setupMock: func(qc *mocks.QuoteClient, ev *mocks.Evaluator, rd *mocks.Renderer, _ *mocks.Publisher) {
				qc.On("QuoteOfTheDay", mock.Anything).
					Return(&domain.Quote{Body: "b", Author: "a"}, nil)
				ev.On("Evaluate", mock.Anything, mock.Anything).
					Return(&domain.Evaluation{Rating: 9, Improved: "i", Caption: "c"}, nil)
				rd.On("Render", mock.Anything, "i").Return(nil, sentinel)
			},
		},
		{
			name: "publisher fails",
			setupMock: func(qc *mocks.QuoteClient, ev *mocks.Evaluator, rd *mocks.Renderer, pb *mocks.Publisher) {
				qc.On("QuoteOfTheDay", mock.Anything).
					Return(&domain.Quote{Body: "b", Author: "a"}, nil)
				ev.On("Evaluate", mock.Anything, mock.Anything).
					Return(&domain.Evaluation{Rating: 9, Improved: "i", Caption: "c"}, nil)
				rd.On("Render", mock.Anything, "i").
					Return(&domain.RenderedImage{Path: "/tmp/x.png"}, nil)
				pb.On("Publish", mock.Anything, mock.Anything, "c").Return(sentinel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qc := &mocks.QuoteClient{}
			ev := &mocks.Evaluator{}
			rd := &mocks.Renderer{}
			pb := &mocks.Publisher{}
			tt.setupMock(qc, ev, rd, pb)

			result, err := newServiceForTest(qc, ev, rd, pb).Run(context.Background())

			require.Error(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestPipelineService_Run_CustomThreshold(t *testing.T) {
	qc := &mocks.QuoteClient{}
	ev := &mocks.Evaluator{}
	rd := &mocks.Renderer{}
	pb := &mocks.Publisher{}

	qc.On("QuoteOfTheDay", mock.Anything).
		Return(&domain.Quote{Body: "b", Author: "a"}, nil)
	ev.On("Evaluate", mock.Anything, mock.Anything).
		Return(&domain.Evaluation{Rating: 7, Improved: "i", Caption: "c"}, nil)

	svc := NewPipelineService(PipelineServiceConfig{
		QuoteClient: qc,
		Evaluator:   ev,
		Renderer:    rd,
		Publisher:   pb,
		Threshold:   8,
		Logger:      discardLogger(),
	})

	result, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, result.Posted)
	rd.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}
