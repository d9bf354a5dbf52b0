package feedback

import (
	"context"
	"sync"

	"github.com/alkime/practicum/internal/catalog"
)

// MockResponse is a scripted result for Mock.
type MockResponse struct {
	Text string
	Err  error
}

// MockCall records a single Generate invocation.
type MockCall struct {
	Variant  catalog.Variant
	Response string
}

// Mock is a deterministic Generator for tests. Responses are returned in
// FIFO order; once exhausted it echoes "feedback for <variant>". When Gate
// is set, Generate blocks until Gate is closed or ctx is done.
type Mock struct {
	Gate chan struct{}

	mu        sync.Mutex
	responses []MockResponse
	calls     []MockCall
}

// NewMock creates a Mock with the given scripted responses.
func NewMock(responses ...MockResponse) *Mock {
	return &Mock{responses: responses}
}

// Generate implements Generator.
func (m *Mock) Generate(ctx context.Context, variant catalog.Variant, response string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Variant: variant, Response: response})
	gate := m.Gate

	var next *MockResponse
	if len(m.responses) > 0 {
		next = &m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if next == nil {
		return "feedback for " + string(variant), nil
	}

	return next.Text, next.Err
}

// Calls returns a copy of the recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]MockCall(nil), m.calls...)
}
