//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/fennin3/tweet-image-bot/internal/adapters/assets"
	"github.com/fennin3/tweet-image-bot/internal/adapters/clients"
	"github.com/fennin3/tweet-image-bot/internal/adapters/clients/acl"
	"github.com/fennin3/tweet-image-bot/internal/adapters/evaluator"
	"github.com/fennin3/tweet-image-bot/internal/adapters/render"
	"github.com/fennin3/tweet-image-bot/internal/adapters/twitter"
	"github.com/fennin3/tweet-image-bot/internal/app"
	"github.com/fennin3/tweet-image-bot/internal/platform/config"
)

// stubCompleter returns a canned model completion.
type stubCompleter struct {
	completion string
}

func (s *stubCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return s.completion, nil
}

// newPipelineClient builds an instrumented client for in-process servers.
func newPipelineClient(t *testing.T, baseURL string, transport http.RoundTripper) *clients.Client {
	t.Helper()

	client, err := clients.New(&clients.Config{
		ServiceName: "pipeline-integration",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Transport:   transport,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return client
}

// writeRenderAssets populates a temp directory with a generated background
// and real font bytes, and returns the directory.
func writeRenderAssets(t *testing.T) string {
	t.Helper()

	assetDir := t.TempDir()

	bg := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			bg.Set(x, y, color.RGBA{R: 230, G: 230, B: 210, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, bg, nil))
	require.NoError(t, os.WriteFile(filepath.Join(assetDir, "bg.jpg"), buf.Bytes(), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(assetDir, "quote.ttf"), goregular.TTF, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(assetDir, "author.ttf"), goregular.TTF, 0o600))

	return assetDir
}

// TestPipeline_EndToEnd_Publishes runs the full pipeline against in-process
// downstreams: a fake quote API, a canned model completion, the real
// renderer, and a fake Twitter API.
func TestPipeline_EndToEnd_Publishes(t *testing.T) {
	quoteServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/qotd", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"qotd_date": "2026-08-29T00:00:00.000+00:00",
			"quote": {
				"id": 42,
				"body": "Be yourself; everyone else is already taken.",
				"author": "Oscar Wilde"
			}
		}`))
	}))
	defer quoteServer.Close()

	var uploadedMedia bool
	var tweetBody map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/media/upload.json", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(16<<20))
		file, _, err := r.FormFile("media")
		require.NoError(t, err)
		defer file.Close()

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
		uploadedMedia = true

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"media_id": 7100, "media_id_string": "7100"}`))
	})
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&tweetBody))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data": {"id": "1", "text": "ok"}}`))
	})

	twitterServer := httptest.NewServer(mux)
	defer twitterServer.Close()

	signing := twitter.SigningTransport(twitter.Credentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		AccessToken:    "at",
		AccessSecret:   "as",
	})

	quoteClient := acl.NewQuoteClient(acl.QuoteClientConfig{
		Client: newPipelineClient(t, quoteServer.URL, nil),
	})
	eval := evaluator.New(evaluator.Config{
		Completer: &stubCompleter{
			completion: "Rating: 9\n" +
				"Improved Quote: Be boldly yourself; every other self is taken.\n" +
				"Caption: Own your story",
		},
	})

	outputDir := t.TempDir()
	renderer := render.New(render.Config{
		Store:      assets.NewLocalStore(writeRenderAssets(t)),
		OutputDir:  outputDir,
		Background: "bg.jpg",
		QuoteFont:  "quote.ttf",
		AuthorFont: "author.ttf",
		CanvasSize: 400,
	})

	publisher := twitter.New(twitter.Config{
		Upload: newPipelineClient(t, twitterServer.URL, signing),
		API:    newPipelineClient(t, twitterServer.URL, signing),
	})

	pipeline := app.NewPipelineService(app.PipelineServiceConfig{
		QuoteClient: quoteClient,
		Evaluator:   eval,
		Renderer:    renderer,
		Publisher:   publisher,
	})

	result, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Posted)
	assert.Equal(t, "Be boldly yourself; every other self is taken.", result.Quote)
	assert.Equal(t, "Own your story", result.Caption)

	assert.True(t, uploadedMedia, "media should be uploaded before tweeting")
	assert.Equal(t, "Own your story", tweetBody["text"])

	// The rendered PNG stays on disk for inspection
	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".png", filepath.Ext(entries[0].Name()))
}

// TestPipeline_EndToEnd_SkipsLowRating verifies that a low rating stops the
// pipeline before any Twitter call is made.
func TestPipeline_EndToEnd_SkipsLowRating(t *testing.T) {
	quoteServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"qotd_date": "2026-08-29T00:00:00.000+00:00",
			"quote": {"id": 43, "body": "Meh.", "author": "Nobody"}
		}`))
	}))
	defer quoteServer.Close()

	var twitterCalls int
	twitterServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		twitterCalls++
		w.WriteHeader(http.StatusOK)
	}))
	defer twitterServer.Close()

	pipeline := app.NewPipelineService(app.PipelineServiceConfig{
		QuoteClient: acl.NewQuoteClient(acl.QuoteClientConfig{
			Client: newPipelineClient(t, quoteServer.URL, nil),
		}),
		Evaluator: evaluator.New(evaluator.Config{
			Completer: &stubCompleter{
				completion: "Rating: 3\nImproved Quote: Still meh.\nCaption: Not today",
			},
		}),
		Renderer: render.New(render.Config{
			Store:      assets.NewLocalStore(writeRenderAssets(t)),
			OutputDir:  t.TempDir(),
			Background: "bg.jpg",
			QuoteFont:  "quote.ttf",
			AuthorFont: "author.ttf",
			CanvasSize: 400,
		}),
		Publisher: twitter.New(twitter.Config{
			Upload: newPipelineClient(t, twitterServer.URL, nil),
			API:    newPipelineClient(t, twitterServer.URL, nil),
		}),
	})

	result, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, result.Posted)
	assert.Equal(t, "Still meh.", result.Quote)
	assert.Equal(t, 0, twitterCalls, "no Twitter call for a skipped quote")
}
