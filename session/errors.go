// Package session implements the session orchestration layer: ingest
// through WAL, lifecycle store and indices, plus stage/commit. It is the
// top of the stack, owning the durable store root, the vector backend,
// and the single-writer discipline.
package session

import "fmt"

// Error is the session error taxonomy. Variants are distinguished by Kind:
// callers recover the *Error with a type assertion or errors.As and switch
// on Kind. Each failure returns a fresh *Error, so errors.Is against
// another *Error value does not match.
type Error struct {
	Kind     ErrorKind
	Expected int // VectorDimensionMismatch only
	Got      int // VectorDimensionMismatch only
	Message  string
}

// ErrorKind discriminates session error variants.
type ErrorKind int

const (
	ErrReadOnly ErrorKind = iota
	ErrTextSearchDisabled
	ErrVectorSearchDisabled
	ErrStructuredMemoryDisabled
	ErrEmptyEmbedding
	ErrVectorDimensionMismatch
	ErrDurableStoreIo
	ErrEmbeddingProvider
	ErrWriterBusy
	ErrWriterTimeout
)

func (e *Error) Error() string {
	switch e.Kind {
	case ErrReadOnly:
		return "session: read-only session rejects mutating calls"
	case ErrTextSearchDisabled:
		return "session: text search is disabled for this session"
	case ErrVectorSearchDisabled:
		return "session: vector search is disabled for this session"
	case ErrStructuredMemoryDisabled:
		return "session: structured memory is disabled for this session"
	case ErrEmptyEmbedding:
		return "session: embedding vector is empty"
	case ErrVectorDimensionMismatch:
		return fmt.Sprintf("session: vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
	case ErrDurableStoreIo:
		return fmt.Sprintf("session: durable store io: %s", e.Message)
	case ErrEmbeddingProvider:
		return fmt.Sprintf("session: embedding provider: %s", e.Message)
	case ErrWriterBusy:
		return "session: writer lease is busy"
	case ErrWriterTimeout:
		return "session: writer lease acquisition timed out"
	default:
		return "session: unknown error"
	}
}

func errReadOnly() error { return &Error{Kind: ErrReadOnly} }
func errTextSearchDisabled() error { return &Error{Kind: ErrTextSearchDisabled} }
func errVectorSearchDisabled() error { return &Error{Kind: ErrVectorSearchDisabled} }
func errStructuredMemoryDisabled() error { return &Error{Kind: ErrStructuredMemoryDisabled} }
func errEmptyEmbedding() error { return &Error{Kind: ErrEmptyEmbedding} }
func errDurableStoreIo(msg string) error { return &Error{Kind: ErrDurableStoreIo, Message: msg} }
func errEmbeddingProvider(msg string) error {
	return &Error{Kind: ErrEmbeddingProvider, Message: msg}
}

func errVectorDimensionMismatch(expected, got int) error {
	return &Error{Kind: ErrVectorDimensionMismatch, Expected: expected, Got: got}
}
