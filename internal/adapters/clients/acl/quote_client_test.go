package acl

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fennin3/tweet-image-bot/internal/adapters/clients"
	"github.com/fennin3/tweet-image-bot/internal/domain"
	"github.com/fennin3/tweet-image-bot/internal/platform/config"
)

// setupQuoteClient creates a QuoteClient with a test HTTP server.
func setupQuoteClient(t *testing.T, handler http.HandlerFunc) *QuoteClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(&clients.Config{
		ServiceName: "test-favqs",
		BaseURL:     server.URL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   10,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 3,
		},
	})
	require.NoError(t, err)

	return NewQuoteClient(QuoteClientConfig{
		Client: client,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestNewQuoteClient_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteClient(QuoteClientConfig{
			Client: nil,
			Logger: slog.Default(),
		})
	})
}

func TestQuoteClient_Name(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	client := setupQuoteClient(t, handler)

	assert.Equal(t, "favqs", client.Name())
}

func TestQuoteOfTheDay_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/qotd", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"qotd_date": "2026-08-29T00:00:00.000+00:00",
			"quote": {
				"id": 42,
				"body": "Be yourself; everyone else is already taken.",
				"author": "Oscar Wilde"
			}
		}`))
	})

	client := setupQuoteClient(t, handler)

	quote, err := client.QuoteOfTheDay(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Be yourself; everyone else is already taken.", quote.Body)
	assert.Equal(t, "Oscar Wilde", quote.Author)
}

func TestQuoteOfTheDay_NonOKStatusMeansNoQuote(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "not found", status: http.StatusNotFound},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "rate limited", status: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			client := setupQuoteClient(t, handler)

			quote, err := client.QuoteOfTheDay(context.Background())

			require.Error(t, err)
			assert.Nil(t, quote)
			assert.True(t, domain.IsNoQuote(err))

			var noQuote *domain.NoQuoteError
			require.ErrorAs(t, err, &noQuote)
			assert.Equal(t, tt.status, noQuote.Status)
		})
	}
}

func TestQuoteOfTheDay_EmptyQuoteBodyMeansNoQuote(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"qotd_date": "2026-08-29", "quote": {"id": 0, "body": "", "author": ""}}`))
	})

	client := setupQuoteClient(t, handler)

	quote, err := client.QuoteOfTheDay(context.Background())

	require.Error(t, err)
	assert.Nil(t, quote)
	assert.True(t, domain.IsNoQuote(err))
}

func TestQuoteOfTheDay_MalformedJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	client := setupQuoteClient(t, handler)

	quote, err := client.QuoteOfTheDay(context.Background())

	require.Error(t, err)
	assert.Nil(t, quote)
	assert.False(t, domain.IsNoQuote(err))
}

func TestQuoteOfTheDay_TransportErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close() // connection refused from here on

	client, err := clients.New(&clients.Config{
		ServiceName: "test-favqs",
		BaseURL:     baseURL,
		Timeout:     1 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   10,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 3,
		},
	})
	require.NoError(t, err)

	quoteClient := NewQuoteClient(QuoteClientConfig{
		Client: client,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	quote, err := quoteClient.QuoteOfTheDay(context.Background())

	require.Error(t, err)
	assert.Nil(t, quote)
	assert.True(t, domain.IsUnavailable(err))
}

func TestQuoteClient_Check(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"quote": {"body": "x", "author": "y"}}`))
		})

		client := setupQuoteClient(t, handler)

		assert.NoError(t, client.Check(context.Background()))
	})

	t.Run("unhealthy", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		client := setupQuoteClient(t, handler)

		assert.Error(t, client.Check(context.Background()))
	})
}
