package mock

import (
	"strings"
	"sync/atomic"

	"github.com/poiesic/indexit/ai"
)

// MockExtractor is a test double for ai.FeatureExtractor. The default
// behavior derives a small deterministic feature set from the content.
type MockExtractor struct {
	// ExtractFunc is called by Extract if set.
	ExtractFunc func(content, language string) (*ai.FeatureSet, error)

	// Lang is the language tag reported by Language. Empty means generic.
	Lang string

	callCount atomic.Int64
}

// NewMockExtractor creates a mock extractor with default behavior.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// Extract returns a deterministic feature set for the content.
func (m *MockExtractor) Extract(content, language string) (*ai.FeatureSet, error) {
	m.callCount.Add(1)

	if m.ExtractFunc != nil {
		return m.ExtractFunc(content, language)
	}

	lines := strings.Count(content, "\n") + 1
	tokens := len(strings.Fields(content))
	return &ai.FeatureSet{
		Bytes:  len(content),
		Lines:  lines,
		Tokens: tokens,
	}, nil
}

// Language returns the configured language tag.
func (m *MockExtractor) Language() string {
	return m.Lang
}

// CallCount returns the number of times Extract was called.
func (m *MockExtractor) CallCount() int {
	return int(m.callCount.Load())
}
