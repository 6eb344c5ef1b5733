package embedding

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/core"
)

// histogramBuckets is the size of the token first-character distribution.
const histogramBuckets = 64

// keywords that indicate branching, looping and returning across the
// languages this indexer commonly sees. A language-specific extractor
// registered for the language tag takes precedence over these heuristics.
var (
	branchKeywords = map[string]bool{
		"if": true, "else": true, "switch": true, "case": true,
		"match": true, "elif": true, "when": true,
	}
	loopKeywords = map[string]bool{
		"for": true, "while": true, "loop": true, "range": true,
	}
	returnKeywords = map[string]bool{
		"return": true, "yield": true,
	}
)

// TextExtractor is the generic fallback feature extractor. It derives
// token distribution, nesting depth, control-flow shape and size features
// from raw text without parsing, so it works for any language tag.
type TextExtractor struct{}

var _ ai.FeatureExtractor = (*TextExtractor)(nil)

// NewTextExtractor creates the generic extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Language returns "" : the generic extractor serves any language.
func (e *TextExtractor) Language() string {
	return ""
}

// Extract computes the feature set for the content. It fails only on
// malformed input: empty content or invalid UTF-8.
func (e *TextExtractor) Extract(content, language string) (*ai.FeatureSet, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", core.ErrFeatureExtraction)
	}
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", core.ErrFeatureExtraction)
	}

	features := &ai.FeatureSet{
		Bytes:     len(content),
		Lines:     strings.Count(content, "\n") + 1,
		Histogram: make([]float32, histogramBuckets),
	}

	depth, maxDepth := 0, 0
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "*") {
			features.CommentLines++
		}

		for _, token := range tokenize(trimmed) {
			features.Tokens++
			features.Histogram[bucketOf(token)]++

			switch classify(token) {
			case tokenKeywordBranch:
				features.Keywords++
				features.Branches++
			case tokenKeywordLoop:
				features.Keywords++
				features.Loops++
			case tokenKeywordReturn:
				features.Keywords++
				features.Returns++
			case tokenIdentifier:
				features.Identifiers++
			case tokenLiteral:
				features.Literals++
			case tokenOperator:
				features.Operators++
			}
		}

		for _, r := range line {
			switch r {
			case '{', '(', '[':
				depth++
				if depth > maxDepth {
					maxDepth = depth
				}
			case '}', ')', ']':
				if depth > 0 {
					depth--
				}
			}
		}
	}
	features.MaxNesting = maxDepth

	// Convert the histogram to a distribution.
	if features.Tokens > 0 {
		for i := range features.Histogram {
			features.Histogram[i] /= float32(features.Tokens)
		}
	}

	return features, nil
}

type tokenClass int

const (
	tokenIdentifier tokenClass = iota
	tokenLiteral
	tokenOperator
	tokenKeywordBranch
	tokenKeywordLoop
	tokenKeywordReturn
)

func classify(token string) tokenClass {
	switch {
	case branchKeywords[token]:
		return tokenKeywordBranch
	case loopKeywords[token]:
		return tokenKeywordLoop
	case returnKeywords[token]:
		return tokenKeywordReturn
	}

	r, _ := utf8.DecodeRuneInString(token)
	switch {
	case unicode.IsDigit(r), r == '"', r == '\'', r == '`':
		return tokenLiteral
	case unicode.IsLetter(r), r == '_':
		return tokenIdentifier
	default:
		return tokenOperator
	}
}

func bucketOf(token string) int {
	r, _ := utf8.DecodeRuneInString(token)
	return int(r) % histogramBuckets
}

// tokenize splits a line into coarse tokens: identifier/number runs and
// single punctuation characters.
func tokenize(line string) []string {
	var tokens []string
	start := -1
	for i, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, line[start:i])
			start = -1
		}
		if !unicode.IsSpace(r) {
			tokens = append(tokens, string(r))
		}
	}
	if start >= 0 {
		tokens = append(tokens, line[start:])
	}
	return tokens
}

// structuralVector expands a feature set into a fixed-dimension unit vector.
// Scalar features occupy the head slots, normalized to roughly [0,1]; the
// token histogram follows; the remainder is zero padding. Extraction is
// deterministic, so identical content always yields the identical vector.
func structuralVector(features *ai.FeatureSet, dim int) []float32 {
	v := make([]float32, dim)

	loc := float32(features.Lines)
	tokens := float32(features.Tokens)
	scalars := []float32{
		clamp01(float32(features.Bytes) / 100000.0),
		clamp01(loc / 1000.0),
		clamp01(tokens / 10000.0),
		ratio(float32(features.Identifiers), tokens),
		ratio(float32(features.Literals), tokens),
		ratio(float32(features.Operators), tokens),
		ratio(float32(features.Keywords), tokens),
		clamp01(float32(features.MaxNesting) / 16.0),
		ratio(float32(features.Branches), loc),
		ratio(float32(features.Loops), loc),
		ratio(float32(features.Returns), loc),
		ratio(float32(features.CommentLines), loc),
		avgLineLength(features),
	}

	n := copy(v, scalars)
	if n < dim {
		copy(v[n:], features.Histogram)
	}
	return Normalize(v)
}

func clamp01(f float32) float32 {
	if f > 1 {
		return 1
	}
	return f
}

func ratio(part, whole float32) float32 {
	if whole == 0 {
		return 0
	}
	return clamp01(part / whole)
}

func avgLineLength(features *ai.FeatureSet) float32 {
	if features.Lines == 0 {
		return 0
	}
	return clamp01(float32(features.Bytes) / float32(features.Lines) / 200.0)
}
