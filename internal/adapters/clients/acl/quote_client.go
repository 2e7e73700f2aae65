// Package acl implements the Anti-Corruption Layer pattern for external services.
// ACL adapters translate between external API models and domain models,
// protecting the domain from external system changes.
package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fennin3/tweet-image-bot/internal/adapters/clients"
	"github.com/fennin3/tweet-image-bot/internal/domain"
	"github.com/fennin3/tweet-image-bot/internal/platform/logging"
)

// serviceName identifies the quote service in errors and health checks.
const serviceName = "favqs"

// QuoteClientConfig contains configuration for the quote client.
type QuoteClientConfig struct {
	// Client is the HTTP client to use for requests.
	// The client's BaseURL should be set to the FavQs API endpoint.
	Client *clients.Client

	// Logger is the structured logger.
	Logger *slog.Logger
}

// QuoteClient implements ports.QuoteClient using the FavQs API.
// It translates the external quote-of-the-day payload to domain types.
type QuoteClient struct {
	client *clients.Client
	logger *slog.Logger
}

// NewQuoteClient creates a new quote client adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewQuoteClient(cfg QuoteClientConfig) *QuoteClient {
	if cfg.Client == nil {
		panic("QuoteClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteClient{
		client: cfg.Client,
		logger: logger,
	}
}

// qotdResponse is the external DTO from the FavQs qotd endpoint.
// This is an internal type, never exposed outside the ACL.
type qotdResponse struct {
	QotdDate string `json:"qotd_date"`
	Quote    struct {
		ID     int    `json:"id"`
		Body   string `json:"body"`
		Author string `json:"author"`
	} `json:"quote"`
}

// QuoteOfTheDay fetches today's quote from the external API.
// Implements ports.QuoteClient.
//
// A response with a non-200 status or an empty quote body is reported as
// domain.ErrNoQuote so the pipeline can skip the day instead of failing.
func (c *QuoteClient) QuoteOfTheDay(ctx context.Context) (*domain.Quote, error) {
	const path = "/qotd"
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))
	c.logger.DebugContext(ctx, "fetching quote of the day")

	resp, err := c.client.Get(ctx, path)
	if err != nil {
		return nil, MapHTTPError(nil, err, serviceName, "fetch quote of the day")
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "quote API returned non-OK status",
			slog.Int("status_code", resp.StatusCode),
		)
		return nil, domain.NewNoQuoteError(serviceName, resp.StatusCode)
	}

	var external qotdResponse
	if err := json.NewDecoder(resp.Body).Decode(&external); err != nil {
		return nil, fmt.Errorf("decoding qotd response: %w", err)
	}

	if external.Quote.Body == "" {
		return nil, domain.NewNoQuoteError(serviceName, resp.StatusCode)
	}

	quote := &domain.Quote{
		Body:   external.Quote.Body,
		Author: external.Quote.Author,
	}

	c.logger.Log(ctx, logging.LevelTrace, "translated external DTO to domain",
		slog.String("author", quote.Author))

	return quote, nil
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *QuoteClient) Name() string {
	return serviceName
}

// Check performs a health check by calling the qotd endpoint.
// Implements ports.HealthChecker.
func (c *QuoteClient) Check(ctx context.Context) error {
	resp, err := c.client.Get(ctx, "/qotd")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}

	return nil
}
