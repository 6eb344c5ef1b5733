package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Input identifies one unit of content to index.
type Input struct {
	Path        string
	Language    string
	ContentType string
}

// ContentSource supplies the inputs of a run and their content.
type ContentSource interface {
	// List enumerates every input, in a stable order.
	List(ctx context.Context) ([]Input, error)

	// Read returns the content of one input.
	Read(ctx context.Context, path string) (string, error)
}

// languageByExtension maps common source file extensions to language tags.
var languageByExtension = map[string]string{
	".go":   "go",
	".py":   "python",
	".rs":   "rust",
	".js":   "javascript",
	".ts":   "typescript",
	".java": "java",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".rb":   "ruby",
	".sh":   "shell",
	".sql":  "sql",
	".md":   "markdown",
	".txt":  "text",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
}

// DetectLanguage returns the language tag for a path based on its
// extension, or "text" when the extension is unknown.
func DetectLanguage(path string) string {
	if language, ok := languageByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return language
	}
	return "text"
}

// ContentTypeOf classifies a path as code or prose for index metadata.
func ContentTypeOf(path string) string {
	switch DetectLanguage(path) {
	case "markdown", "text":
		return "doc"
	default:
		return "code"
	}
}

// FSSource is a ContentSource over a directory tree. Hidden directories and
// files without a known extension are skipped.
type FSSource struct {
	root string
}

var _ ContentSource = (*FSSource)(nil)

// NewFSSource creates a filesystem content source rooted at dir.
func NewFSSource(root string) *FSSource {
	return &FSSource{root: root}
}

// List walks the tree and returns one input per recognized file, ordered by
// path so runs over the same tree batch identically.
func (s *FSSource) List(ctx context.Context) ([]Input, error) {
	var inputs []Input
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if d.IsDir() {
			if name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if _, ok := languageByExtension[strings.ToLower(filepath.Ext(name))]; !ok {
			return nil
		}

		relative, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		relative = filepath.ToSlash(relative)
		inputs = append(inputs, Input{
			Path:        relative,
			Language:    DetectLanguage(relative),
			ContentType: ContentTypeOf(relative),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(inputs, func(a, b int) bool { return inputs[a].Path < inputs[b].Path })
	return inputs, nil
}

// Read returns the content of one file, addressed by its listed path.
func (s *FSSource) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
