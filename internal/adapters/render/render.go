// Package render implements ports.Renderer. It rasterizes the quote onto
// the background image and writes a PNG to a per-invocation path.
package render

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // background decoder
	_ "image/png"  // background decoder
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"github.com/fennin3/tweet-image-bot/internal/adapters/assets"
	"github.com/fennin3/tweet-image-bot/internal/domain"
)

// Layout constants for the rendered card.
const (
	defaultCanvasSize = 2000

	margin         = 50.0
	wrapWidth      = 40
	startFontSize  = 80
	minFontSize    = 10
	fontStep       = 2
	lineSpacing    = 10.0
	verticalOffset = -50.0
	authorFontSize = 30.0
)

// Config contains configuration for the renderer.
type Config struct {
	// Store provides the background image and font files.
	Store assets.Store

	// OutputDir is where rendered PNGs are written.
	OutputDir string

	// Background, QuoteFont, and AuthorFont are asset names within Store.
	Background string
	QuoteFont  string
	AuthorFont string

	// CanvasSize is the square output size in pixels. Defaults to 2000.
	CanvasSize int

	Logger *slog.Logger
}

// Renderer implements ports.Renderer.
type Renderer struct {
	store      assets.Store
	outputDir  string
	background string
	quoteFont  string
	authorFont string
	canvasSize int
	logger     *slog.Logger
}

// New creates a renderer. Panics if Store is nil.
func New(cfg Config) *Renderer {
	if cfg.Store == nil {
		panic("Renderer: Store is required")
	}

	canvasSize := cfg.CanvasSize
	if canvasSize == 0 {
		canvasSize = defaultCanvasSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Renderer{
		store:      cfg.Store,
		outputDir:  cfg.OutputDir,
		background: cfg.Background,
		quoteFont:  cfg.QuoteFont,
		authorFont: cfg.AuthorFont,
		canvasSize: canvasSize,
		logger:     logger,
	}
}

// Render draws the attributed quote onto the background and saves it.
// Implements ports.Renderer.
func (r *Renderer) Render(ctx context.Context, attributed string) (*domain.RenderedImage, error) {
	text, author := splitAttribution(attributed)

	background, err := r.loadBackground(ctx)
	if err != nil {
		return nil, err
	}

	quoteFont, err := r.loadFont(ctx, r.quoteFont)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContextForImage(background)
	dc.SetRGB(0, 0, 0)

	width := float64(dc.Width())
	height := float64(dc.Height())

	lines := wrapText(text, wrapWidth)

	size, lineHeight := fitFontSize(dc, quoteFont, lines, height-2*margin)

	r.logger.DebugContext(ctx, "laid out quote text",
		slog.Int("lines", len(lines)),
		slog.Int("font_size", size),
	)

	blockHeight := float64(len(lines))*lineHeight + float64(len(lines)-1)*lineSpacing
	y := (height-blockHeight)/2 + verticalOffset

	for _, line := range lines {
		dc.DrawStringAnchored(line, width/2, y, 0.5, 1)
		y += lineHeight + lineSpacing
	}

	if author != "" {
		authorFont, err := r.loadFont(ctx, r.authorFont)
		if err != nil {
			return nil, err
		}

		dc.SetFontFace(truetype.NewFace(authorFont, &truetype.Options{Size: authorFontSize}))
		dc.DrawStringAnchored(author, width/2, y+lineSpacing, 0.5, 1)
	}

	path, err := r.save(dc)
	if err != nil {
		return nil, err
	}

	return &domain.RenderedImage{Path: path}, nil
}

// loadBackground decodes the background asset and scales it to the canvas.
func (r *Renderer) loadBackground(ctx context.Context) (image.Image, error) {
	rc, err := r.store.Open(ctx, r.background)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	src, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decoding background %s: %w", r.background, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.canvasSize, r.canvasSize))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	return dst, nil
}

// loadFont parses a TrueType font asset.
func (r *Renderer) loadFont(ctx context.Context, name string) (*truetype.Font, error) {
	data, err := assets.ReadAll(ctx, r.store, name)
	if err != nil {
		return nil, err
	}

	font, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", name, err)
	}

	return font, nil
}

// save writes the canvas to a fresh file under the output directory.
// Each invocation gets its own path so concurrent runs never clobber
// each other's output.
func (r *Renderer) save(dc *gg.Context) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(r.outputDir, fmt.Sprintf("quote-%s.png", uuid.NewString()))

	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}

	return path, nil
}

// fitFontSize shrinks the font until the wrapped block fits the available
// height, bottoming out at minFontSize. Returns the chosen size and the
// per-line height at that size.
func fitFontSize(dc *gg.Context, font *truetype.Font, lines []string, available float64) (int, float64) {
	size := startFontSize

	for {
		dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: float64(size)}))

		_, lineHeight := dc.MeasureString("Ag")
		total := float64(len(lines))*lineHeight + float64(len(lines)-1)*lineSpacing

		if total <= available || size <= minFontSize {
			return size, lineHeight
		}

		size -= fontStep
	}
}

// splitAttribution separates the quote text from its author. The author
// part follows the first " - " and is prefixed with "@ " for display;
// quote marks are stripped from the text. Input without an attribution
// renders as text only.
func splitAttribution(attributed string) (text, author string) {
	parts := strings.SplitN(attributed, " - ", 2)

	text = strings.ReplaceAll(parts[0], `"`, "")
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		author = "@ " + parts[1]
	}

	return text, author
}

// wrapText greedily wraps text at the given rune width, breaking on
// spaces. Words longer than the width get their own line.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len([]rune(current))+1+len([]rune(word)) <= width {
			current += " " + word
			continue
		}

		lines = append(lines, current)
		current = word
	}

	return append(lines, current)
}
