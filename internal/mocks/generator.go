package mocks

import (
	"context"
	"sync"
)

// MockClient implements generation.Client for testing
type MockClient struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, prompt string) (string, error)

	// Default response values
	Text string
	Err  error

	// mu protects the call tracking state for concurrent test cases
	mu      sync.Mutex
	calls   int
	prompts []string
}

// Generate implements the generation.Client interface
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	return m.Text, m.Err
}

// Calls returns how many times Generate was called.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns the prompts passed to Generate, in call order.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// NewMockClientWithText creates a MockClient that always answers text.
func NewMockClientWithText(text string) *MockClient {
	return &MockClient{Text: text}
}

// NewMockClientWithError creates a MockClient that always fails with err.
func NewMockClientWithError(err error) *MockClient {
	return &MockClient{Err: err}
}
