package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/indexit/ai/mock"
)

func TestRegistry(t *testing.T) {
	t.Run("falls back for unknown language", func(t *testing.T) {
		registry := NewRegistry()

		extractor := registry.Lookup("cobol")
		require.NotNil(t, extractor)
		assert.IsType(t, &TextExtractor{}, extractor)
	})

	t.Run("registered extractor wins", func(t *testing.T) {
		registry := NewRegistry()
		goExtractor := &mock.MockExtractor{Lang: "go"}
		registry.Register(goExtractor)

		assert.Same(t, goExtractor, registry.Lookup("go"))
		assert.IsType(t, &TextExtractor{}, registry.Lookup("rust"))
	})

	t.Run("lookup normalizes tags", func(t *testing.T) {
		registry := NewRegistry()
		goExtractor := &mock.MockExtractor{Lang: "go"}
		registry.Register(goExtractor)

		assert.Same(t, goExtractor, registry.Lookup(" Go "))
		assert.Same(t, goExtractor, registry.Lookup("GO"))
	})

	t.Run("empty tag replaces fallback", func(t *testing.T) {
		registry := NewRegistry()
		generic := &mock.MockExtractor{}
		registry.Register(generic)

		assert.Same(t, generic, registry.Lookup("anything"))
	})

	t.Run("languages excludes fallback", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(&mock.MockExtractor{Lang: "go"})
		registry.Register(&mock.MockExtractor{Lang: "python"})

		assert.ElementsMatch(t, []string{"go", "python"}, registry.Languages())
	})

	t.Run("nil register is a no-op", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(nil)
		assert.Empty(t, registry.Languages())
	})
}
