package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fennin3/tweet-image-bot/internal/adapters/http/handlers"
	"github.com/fennin3/tweet-image-bot/internal/domain"
	"github.com/fennin3/tweet-image-bot/internal/platform/config"
	"github.com/fennin3/tweet-image-bot/internal/ports"
)

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Port:            0,
		Host:            "127.0.0.1",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxRequestSize:  1 << 20,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHealthHandler() *handlers.HealthHandler {
	registry := ports.NewHealthRegistry()
	buildInfo := handlers.NewBuildInfo("test", "abc123", "2024-01-01T00:00:00Z")

	return handlers.NewHealthHandler(registry, buildInfo)
}

// stubPipeline is a PipelineRunner that returns a fixed result.
type stubPipeline struct {
	result *domain.PostResult
	err    error
}

func (s *stubPipeline) Run(_ context.Context) (*domain.PostResult, error) {
	return s.result, s.err
}

func TestNew(t *testing.T) {
	cfg := testServerConfig()
	server := New(cfg, testLogger())

	require.NotNil(t, server)
	assert.NotNil(t, server.Engine())
	assert.Equal(t, cfg, server.Config())
	assert.Equal(t, "127.0.0.1:0", server.Addr())
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := New(testServerConfig(), testLogger())

	errCh := server.Start()

	// Give the listener a moment to come up
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, server.Shutdown(ctx))

	// The error channel closes without an error on clean shutdown
	select {
	case err, ok := <-errCh:
		if ok {
			t.Fatalf("unexpected server error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error channel did not close after shutdown")
	}
}

func TestServer_ShutdownWithCancelledContext(t *testing.T) {
	server := New(testServerConfig(), testLogger())

	_ = server.Start()
	time.Sleep(100 * time.Millisecond)

	// An already-expired context still stops the listener
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(10 * time.Millisecond)

	// Shutdown may report the context error but must not hang
	_ = server.Shutdown(ctx)
}

func TestServer_MaxBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testServerConfig()
	cfg.MaxRequestSize = 64

	server := New(cfg, testLogger())
	server.Engine().POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"size": len(body)})
	})

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("ok"))
		server.Engine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 1024)))
		server.Engine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	appCfg := &config.AppConfig{Name: "tweet-image-bot", Version: "test", Environment: "test"}

	t.Run("registers health and post routes", func(t *testing.T) {
		engine := gin.New()
		pipeline := &stubPipeline{result: &domain.PostResult{Posted: true, Quote: "q", Caption: "c"}}

		SetupRouter(engine, RouterConfig{
			Logger:        testLogger(),
			AppConfig:     appCfg,
			HealthHandler: newTestHealthHandler(),
			PostHandler:   handlers.NewPostHandler(pipeline),
			Timeout:       time.Second,
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/posts", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"posted":true`)
	})

	t.Run("nil handlers do not panic", func(t *testing.T) {
		engine := gin.New()

		require.NotPanics(t, func() {
			SetupRouter(engine, RouterConfig{
				Logger:    testLogger(),
				AppConfig: appCfg,
			})
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/posts", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("works without timeout", func(t *testing.T) {
		engine := gin.New()
		pipeline := &stubPipeline{result: &domain.PostResult{}}

		SetupRouter(engine, RouterConfig{
			Logger:      testLogger(),
			AppConfig:   appCfg,
			PostHandler: handlers.NewPostHandler(pipeline),
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/posts", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSetupMinimalRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	SetupMinimalRouter(engine, testLogger(), newTestHealthHandler())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// No API routes on the minimal router
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/posts", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewDefaultRouterConfig(t *testing.T) {
	logger := testLogger()
	appCfg := &config.AppConfig{Name: "tweet-image-bot"}
	healthHandler := newTestHealthHandler()
	postHandler := handlers.NewPostHandler(&stubPipeline{result: &domain.PostResult{}})

	cfg := NewDefaultRouterConfig(logger, appCfg, healthHandler, postHandler)

	assert.Equal(t, logger, cfg.Logger)
	assert.Equal(t, appCfg, cfg.AppConfig)
	assert.Equal(t, healthHandler, cfg.HealthHandler)
	assert.Equal(t, postHandler, cfg.PostHandler)
	assert.Equal(t, DefaultRequestTimeout, cfg.Timeout)
}
