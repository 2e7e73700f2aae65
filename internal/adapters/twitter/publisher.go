// Package twitter implements ports.Publisher against the Twitter API.
// Publishing is two calls: a v1.1 multipart media upload, then a v2 tweet
// create referencing the returned media id. Requests are signed with
// OAuth1 via a signing transport.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dghubble/oauth1"

	"github.com/fennin3/tweet-image-bot/internal/adapters/clients"
	"github.com/fennin3/tweet-image-bot/internal/adapters/clients/acl"
	"github.com/fennin3/tweet-image-bot/internal/domain"
)

const (
	serviceName = "twitter"

	mediaUploadPath = "/1.1/media/upload.json"
	createTweetPath = "/2/tweets"
	verifyPath      = "/1.1/account/verify_credentials.json"
)

// Credentials holds the OAuth1 user-context credentials.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// SigningTransport returns a RoundTripper that OAuth1-signs every request.
// Pass it as the base transport of the HTTP clients used by the publisher.
func SigningTransport(creds Credentials) http.RoundTripper {
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	return config.Client(oauth1.NoContext, token).Transport
}

// Config contains configuration for the publisher.
type Config struct {
	// Upload is the client for the media upload host.
	Upload *clients.Client

	// API is the client for the main API host.
	API *clients.Client

	Logger *slog.Logger
}

// Publisher implements ports.Publisher.
type Publisher struct {
	upload *clients.Client
	api    *clients.Client
	logger *slog.Logger
}

// New creates a publisher. Panics if either client is nil.
func New(cfg Config) *Publisher {
	if cfg.Upload == nil || cfg.API == nil {
		panic("Publisher: Upload and API clients are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Publisher{
		upload: cfg.Upload,
		api:    cfg.API,
		logger: logger,
	}
}

// mediaUploadResponse is the external DTO from the media upload endpoint.
type mediaUploadResponse struct {
	MediaID       int64  `json:"media_id"`
	MediaIDString string `json:"media_id_string"`
}

// Publish uploads the image then creates a tweet referencing it.
// Implements ports.Publisher.
func (p *Publisher) Publish(ctx context.Context, image *domain.RenderedImage, caption string) error {
	mediaID, err := p.uploadMedia(ctx, image.Path)
	if err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "uploaded media",
		slog.String("media_id", mediaID),
	)

	return p.createTweet(ctx, caption, mediaID)
}

// uploadMedia posts the image file as multipart form data and returns the
// assigned media id.
func (p *Publisher) uploadMedia(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalizing upload form: %w", err)
	}

	resp, err := p.upload.PostForm(ctx, mediaUploadPath, writer.FormDataContentType(), &body)
	if err != nil {
		return "", acl.MapHTTPError(nil, err, serviceName, "upload media")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", acl.MapHTTPError(resp, nil, serviceName, "upload media")
	}

	var uploaded mediaUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}

	mediaID := uploaded.MediaIDString
	if mediaID == "" && uploaded.MediaID != 0 {
		mediaID = fmt.Sprintf("%d", uploaded.MediaID)
	}

	if mediaID == "" {
		return "", domain.NewUnavailableError(serviceName, "upload response missing media id")
	}

	return mediaID, nil
}

// createTweetRequest is the external DTO for the tweet create endpoint.
type createTweetRequest struct {
	Text  string `json:"text"`
	Media struct {
		MediaIDs []string `json:"media_ids"`
	} `json:"media"`
}

// createTweet posts the caption with the uploaded media attached.
func (p *Publisher) createTweet(ctx context.Context, caption, mediaID string) error {
	var tweet createTweetRequest
	tweet.Text = caption
	tweet.Media.MediaIDs = []string{mediaID}

	payload, err := json.Marshal(tweet)
	if err != nil {
		return fmt.Errorf("encoding tweet: %w", err)
	}

	resp, err := p.api.Post(ctx, createTweetPath, bytes.NewReader(payload))
	if err != nil {
		return acl.MapHTTPError(nil, err, serviceName, "create tweet")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return acl.MapHTTPError(resp, nil, serviceName, "create tweet")
	}

	p.logger.InfoContext(ctx, "created tweet",
		slog.String("media_id", mediaID),
	)

	return nil
}

// Name returns the health check name for this publisher.
// Implements ports.HealthChecker.
func (p *Publisher) Name() string {
	return serviceName
}

// Check verifies the account credentials are accepted.
// Implements ports.HealthChecker.
func (p *Publisher) Check(ctx context.Context) error {
	resp, err := p.api.Get(ctx, verifyPath)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("credential check returned status %d", resp.StatusCode)
	}

	return nil
}
