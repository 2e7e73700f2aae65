// Package evaluator implements ports.Evaluator on top of a chat-completion
// model. The model is asked for a rating, an improved quote, and a short
// caption; the reply is parsed line by line.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fennin3/tweet-image-bot/internal/domain"
)

const (
	systemMessage = "You are an assistant that rates and improves quotes."

	promptTemplate = "Rate the following quote from 1 to 10, where 10 is the best, " +
		"return an improved version of the text without any additional text and " +
		"add a 2 to 5 word caption for twitter post based on the quote:\n\n" +
		"Quote: %s\n\n" +
		"Rating: \n" +
		"Improved Quote: \n" +
		"Caption: "
)

// Completer produces a chat completion for a system/user message pair.
// The OpenAI implementation lives in openai.go; tests substitute a stub.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config contains configuration for the evaluator.
type Config struct {
	Completer Completer
	Logger    *slog.Logger
}

// Evaluator implements ports.Evaluator.
type Evaluator struct {
	completer Completer
	logger    *slog.Logger
}

// New creates a new evaluator. Panics if Completer is nil.
func New(cfg Config) *Evaluator {
	if cfg.Completer == nil {
		panic("Evaluator: Completer is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Evaluator{
		completer: cfg.Completer,
		logger:    logger,
	}
}

// Evaluate submits the attributed quote to the model and parses its answer.
// Implements ports.Evaluator.
func (e *Evaluator) Evaluate(ctx context.Context, attributed string) (*domain.Evaluation, error) {
	prompt := fmt.Sprintf(promptTemplate, attributed)

	completion, err := e.completer.Complete(ctx, systemMessage, prompt)
	if err != nil {
		return nil, domain.NewUnavailableError("openai", err.Error())
	}

	eval, err := parseCompletion(completion, attributed)
	if err != nil {
		return nil, err
	}

	if eval.LowConfidence {
		e.logger.WarnContext(ctx, "model reply did not follow the expected format",
			slog.String("completion", completion),
		)
	}

	return eval, nil
}

// parseCompletion extracts rating, improved quote, and caption from the
// model's reply. The reply is expected as three lines, each optionally
// prefixed with its label. Deviations degrade to a low-confidence result
// rather than an error; only an empty reply is unusable.
func parseCompletion(completion, fallbackQuote string) (*domain.Evaluation, error) {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(completion), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	if len(lines) == 0 {
		return nil, domain.NewMalformedEvaluationError("empty completion")
	}

	eval := &domain.Evaluation{Improved: fallbackQuote}

	rating, ok := parseRating(stripLabel(lines[0], "Rating:"))
	if ok {
		eval.Rating = rating
	} else {
		eval.LowConfidence = true
	}

	if len(lines) > 1 {
		eval.Improved = stripLabel(lines[1], "Improved Quote:")
	}

	if len(lines) > 2 {
		eval.Caption = stripLabel(lines[2], "Caption:")
	}

	// A post without a caption cannot be published as intended.
	if eval.Caption == "" {
		eval.LowConfidence = true
	}

	return eval, nil
}

// stripLabel removes a leading label like "Rating:" and trims whitespace.
func stripLabel(line, label string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, label))
}

// parseRating reads a numeric rating, tolerating forms like "8", "8.5",
// and "8/10".
func parseRating(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}

	s = strings.TrimSuffix(s, "/10")

	rating, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return rating, true
}
