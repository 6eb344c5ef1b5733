package embedding

import (
	"strings"
	"sync"

	"github.com/poiesic/indexit/ai"
)

// Registry selects a feature extractor by language tag. The embedding core
// never depends on a concrete language; per-language extractors are
// registered by their owners and the generic text extractor serves as the
// fallback for unregistered tags.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]ai.FeatureExtractor
	fallback   ai.FeatureExtractor
}

// NewRegistry creates a registry with the generic text extractor as fallback.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]ai.FeatureExtractor),
		fallback:   NewTextExtractor(),
	}
}

// Register adds an extractor for its language tag. An extractor with an
// empty language tag replaces the fallback.
func (r *Registry) Register(extractor ai.FeatureExtractor) {
	if extractor == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	lang := normalizeTag(extractor.Language())
	if lang == "" {
		r.fallback = extractor
		return
	}
	r.extractors[lang] = extractor
}

// Lookup returns the extractor for a language tag, falling back to the
// generic extractor when no specific one is registered.
func (r *Registry) Lookup(language string) ai.FeatureExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if extractor, ok := r.extractors[normalizeTag(language)]; ok {
		return extractor
	}
	return r.fallback
}

// Languages returns the registered language tags, excluding the fallback.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	langs := make([]string, 0, len(r.extractors))
	for lang := range r.extractors {
		langs = append(langs, lang)
	}
	return langs
}

func normalizeTag(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
