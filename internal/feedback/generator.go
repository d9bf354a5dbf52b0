// Package feedback produces coaching feedback for a practice response.
//
// The only implementation shipped is Canned, which stands in for a remote
// inference call: it waits a fixed delay and then returns the catalog's
// feedback text for the variant. Anything satisfying Generator can replace
// it without touching the workflow.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alkime/practicum/internal/catalog"
)

// MinResponseLength is the minimum number of characters a response needs
// to be eligible for feedback.
const MinResponseLength = 20

// ErrResponseTooShort is returned for responses under MinResponseLength.
var ErrResponseTooShort = errors.New("response too short for feedback")

// ErrEmptyFeedback is returned when a generator resolves with no text.
var ErrEmptyFeedback = errors.New("generator returned empty feedback")

// Generator maps a variant and response text to feedback text.
type Generator interface {
	Generate(ctx context.Context, variant catalog.Variant, response string) (string, error)
}

// Eligible reports whether response is long enough to request feedback.
func Eligible(response string) bool {
	return utf8.RuneCountInString(response) >= MinResponseLength
}

// Canned resolves with the catalog's per-variant feedback after a fixed
// delay.
type Canned struct {
	catalog *catalog.Catalog
	delay   time.Duration
	logger  *slog.Logger
}

// NewCanned creates a canned generator. A nil logger uses slog.Default.
func NewCanned(c *catalog.Catalog, delay time.Duration, logger *slog.Logger) (*Canned, error) {
	if c == nil {
		return nil, errors.New("catalog cannot be nil")
	}

	if delay < 0 {
		return nil, fmt.Errorf("feedback delay must not be negative, got %s", delay)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Canned{
		catalog: c,
		delay:   delay,
		logger:  logger.With("component", "feedback"),
	}, nil
}

// Generate waits the configured delay, then returns the feedback for
// variant. The delay is only cut short by ctx.
func (g *Canned) Generate(ctx context.Context, variant catalog.Variant, response string) (string, error) {
	if !Eligible(response) {
		return "", fmt.Errorf("%w: %d of %d characters",
			ErrResponseTooShort, utf8.RuneCountInString(response), MinResponseLength)
	}

	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("feedback abandoned: %w", ctx.Err())
	case <-timer.C:
	}

	text := strings.TrimSpace(g.catalog.Feedback(variant))
	if text == "" {
		return "", fmt.Errorf("variant %s: %w", variant, ErrEmptyFeedback)
	}

	g.logger.Debug("feedback generated", "variant", variant, "responseChars", utf8.RuneCountInString(response))

	return text, nil
}
