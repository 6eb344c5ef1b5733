package mock

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockGenerator is a test double for ai.Generator. By default it echoes a
// short deterministic description of the prompt; failures and latency are
// injected through GenerateFunc.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	callCount atomic.Int64
}

// NewMockGenerator creates a mock generator with default behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a deterministic pseudo-description of the prompt.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.callCount.Add(1)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return fmt.Sprintf("description of %d bytes of content", len(prompt)), nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount.Store(0)
	m.GenerateFunc = nil
}
