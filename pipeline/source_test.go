package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestFSSourceList(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/server.go":      "package pkg\n",
		"pkg/server_test.go": "package pkg\n",
		"scripts/run.py":     "print('hi')\n",
		"README.md":          "# hi\n",
		".git/config":        "[core]\n",
		".envrc":             "export FOO=1\n",
		"assets/logo.png":    "\x89PNG",
	})

	source := NewFSSource(root)
	inputs, err := source.List(context.Background())
	require.NoError(t, err)

	paths := make([]string, len(inputs))
	for i, input := range inputs {
		paths[i] = input.Path
	}
	assert.Equal(t, []string{
		"README.md",
		"pkg/server.go",
		"pkg/server_test.go",
		"scripts/run.py",
	}, paths, "hidden entries and unknown extensions are skipped, paths sorted")

	byPath := map[string]Input{}
	for _, input := range inputs {
		byPath[input.Path] = input
	}
	assert.Equal(t, "go", byPath["pkg/server.go"].Language)
	assert.Equal(t, "code", byPath["pkg/server.go"].ContentType)
	assert.Equal(t, "python", byPath["scripts/run.py"].Language)
	assert.Equal(t, "markdown", byPath["README.md"].Language)
	assert.Equal(t, "doc", byPath["README.md"].ContentType)
}

func TestFSSourceRead(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": "package a\n"})
	source := NewFSSource(root)

	content, err := source.Read(context.Background(), "a.go")
	require.NoError(t, err)
	assert.Equal(t, "package a\n", content)

	_, err = source.Read(context.Background(), "missing.go")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = source.Read(ctx, "a.go")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "go", DetectLanguage("x/y/z.go"))
	assert.Equal(t, "rust", DetectLanguage("main.RS"))
	assert.Equal(t, "text", DetectLanguage("notes.txt"))
	assert.Equal(t, "text", DetectLanguage("Makefile.weird"))
}

func TestContentTypeOf(t *testing.T) {
	assert.Equal(t, "code", ContentTypeOf("a.go"))
	assert.Equal(t, "doc", ContentTypeOf("README.md"))
	assert.Equal(t, "doc", ContentTypeOf("notes.txt"))
}
