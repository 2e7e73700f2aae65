// Package domain contains core business entities and rules.
package domain

import "fmt"

// PublishThreshold is the minimum rating a quote must exceed before it is
// rendered and published. The comparison is strict: a rating of exactly
// 6.5 does not publish.
const PublishThreshold = 6.5

// Quote is a single quote-of-the-day record.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// Body is the text of the quote.
	Body string

	// Author is who said or wrote the quote.
	Author string
}

// Attributed returns the quote in its canonical attributed form,
// `"<body>" - <author>`. Both the evaluator prompt and the renderer
// consume this shape.
func (q *Quote) Attributed() string {
	return fmt.Sprintf("\"%s\" - %s", q.Body, q.Author)
}

// Evaluation is the model's judgement of a quote: a 1-10 rating, a
// rewritten version of the text, and a short caption for the post.
type Evaluation struct {
	// Rating is the numeric quality score. Zero when LowConfidence is set.
	Rating float64

	// Improved is the rewritten quote in attributed form. Falls back to
	// the original input when the model returned too little to parse.
	Improved string

	// Caption is a 2-5 word caption for the social post.
	Caption string

	// LowConfidence marks an evaluation whose rating could not be parsed
	// from the model output. Low-confidence evaluations never publish.
	LowConfidence bool
}

// Publishable reports whether this evaluation clears the threshold.
// The cut is strictly greater-than.
func (e *Evaluation) Publishable(threshold float64) bool {
	return !e.LowConfidence && e.Rating > threshold
}

// RenderedImage is a composed quote image persisted to scratch storage.
// It is consumed exactly once by the publisher and not retained after.
type RenderedImage struct {
	// Path is the filesystem location of the PNG.
	Path string
}

// PostResult is the pipeline's outcome, serialized into the HTTP response.
type PostResult struct {
	// Posted is true when the quote was rendered and published.
	Posted bool

	// Quote is the improved quote text, empty when no quote was available.
	Quote string

	// Caption is the post caption, empty when no quote was available.
	Caption string
}
