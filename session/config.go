package session

// Mode controls whether a Session accepts mutating calls.
type Mode int

const (
	// ReadWrite is the default: remember/commit/etc. are permitted.
	ReadWrite Mode = iota
	// ReadOnly rejects every mutating call with ErrReadOnly.
	ReadOnly
)

// Config is the set of session knobs: enable_text_search,
// enable_vector_search, enable_structured_memory, vector_dimensions.
// DefaultConfig sets them to true/true/true/auto-detect, and
// ConfigFromEnviron keeps those values for unset variables. The zero
// Config disables every lane.
type Config struct {
	EnableTextSearch       bool
	EnableVectorSearch     bool
	EnableStructuredMemory bool
	// VectorDimensions pins the embedding width up front. Nil means the
	// session infers it from the first RememberWithEmbedding call.
	VectorDimensions *int
}

// DefaultConfig returns a Config with every lane enabled and vector
// dimensions auto-detected.
func DefaultConfig() Config {
	return Config{
		EnableTextSearch:       true,
		EnableVectorSearch:     true,
		EnableStructuredMemory: true,
	}
}
