package ai

// FeatureSet holds the local syntactic features of one content unit. All
// values are raw counts or ratios; scaling into a fixed-dimension vector is
// the embedding layer's concern.
type FeatureSet struct {
	// Bytes and Lines describe the size of the unit.
	Bytes int
	Lines int

	// Tokens is the total token count; the remaining counters partition it.
	Tokens      int
	Identifiers int
	Literals    int
	Operators   int
	Keywords    int

	// MaxNesting is the deepest brace/bracket nesting observed.
	MaxNesting int

	// Branches, Loops and Returns sketch the control-flow shape.
	Branches int
	Loops    int
	Returns  int

	// CommentLines counts lines that are predominantly comment text.
	CommentLines int

	// Histogram is a coarse distribution of token first-characters, used to
	// give the structural vector lexical texture. May be empty.
	Histogram []float32
}
