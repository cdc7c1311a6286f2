package format

import "errors"

// Decode/validation errors for header, TOC, footer pages and validate_open.
var (
	ErrInvalidLength       = errors.New("format: invalid length")
	ErrInvalidMagic        = errors.New("format: invalid magic")
	ErrChecksumMismatch    = errors.New("format: checksum mismatch")
	ErrNoValidHeader       = errors.New("format: no valid header")
	ErrGenerationMismatch  = errors.New("format: generation mismatch")
	ErrTocOffsetMismatch   = errors.New("format: toc offset mismatch")
	ErrTocOffsetOutOfRange = errors.New("format: toc offset out of range")
)
