package feedback_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alkime/practicum/internal/catalog"
	"github.com/alkime/practicum/internal/feedback"
	"github.com/alkime/practicum/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCanned(t *testing.T, delay time.Duration) *feedback.Canned {
	t.Helper()

	c, err := catalog.Load()
	require.NoError(t, err)

	g, err := feedback.NewCanned(c, delay, logger.Discard())
	require.NoError(t, err)

	return g
}

func TestEligible(t *testing.T) {
	t.Parallel()

	assert.False(t, feedback.Eligible(strings.Repeat("x", 19)))
	assert.True(t, feedback.Eligible(strings.Repeat("x", 20)))
	assert.True(t, feedback.Eligible(strings.Repeat("é", 20)), "counts characters, not bytes")
	assert.False(t, feedback.Eligible(""))
}

func TestNewCanned_Invalid(t *testing.T) {
	t.Parallel()

	_, err := feedback.NewCanned(nil, time.Second, nil)
	require.Error(t, err)

	c, err := catalog.Load()
	require.NoError(t, err)
	_, err = feedback.NewCanned(c, -time.Second, nil)
	require.Error(t, err)
}

func TestCanned_DistinctPerVariant(t *testing.T) {
	t.Parallel()

	g := newCanned(t, 0)
	response := "I would ask open questions" // 26 characters

	seen := map[string]catalog.Variant{}
	for _, v := range catalog.Variants() {
		text, err := g.Generate(context.Background(), v, response)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(text), feedback.MinResponseLength)

		prev, dup := seen[text]
		assert.False(t, dup, "variant %s repeats feedback of %s", v, prev)
		seen[text] = v
	}
}

func TestCanned_RejectsShortResponse(t *testing.T) {
	t.Parallel()

	g := newCanned(t, time.Hour)

	_, err := g.Generate(context.Background(), catalog.Discourse, "too short")
	require.ErrorIs(t, err, feedback.ErrResponseTooShort)
}

func TestCanned_WaitsForDelay(t *testing.T) {
	t.Parallel()

	g := newCanned(t, 30*time.Millisecond)

	start := time.Now()
	text, err := g.Generate(context.Background(), catalog.Discourse, strings.Repeat("a", 25))
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestCanned_ContextCancelled(t *testing.T) {
	t.Parallel()

	g := newCanned(t, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, catalog.Content, strings.Repeat("a", 25))
	require.ErrorIs(t, err, context.Canceled)
}

func TestMock(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	m := feedback.NewMock(
		feedback.MockResponse{Text: "first"},
		feedback.MockResponse{Err: boom},
	)

	text, err := m.Generate(context.Background(), catalog.Discourse, "one")
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	_, err = m.Generate(context.Background(), catalog.Discourse, "two")
	require.ErrorIs(t, err, boom)

	text, err = m.Generate(context.Background(), catalog.Cognitive, "three")
	require.NoError(t, err)
	assert.Equal(t, "feedback for cognitive", text)

	calls := m.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, catalog.Cognitive, calls[2].Variant)
	assert.Equal(t, "three", calls[2].Response)
}
