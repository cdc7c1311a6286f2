// Package format implements the MV2S container's binary layout: two header
// pages for crash-safe generation tracking, a table of contents, and a
// footer page that is the authoritative tie-breaker between headers.
package format

// VersionMajor and VersionMinor are the (major, minor) schema version of
// the container format, surfaced by Version().
const (
	VersionMajor uint16 = 1
	VersionMinor uint16 = 0
)

// Version returns the container format's (major, minor) version.
func Version() (uint16, uint16) {
	return VersionMajor, VersionMinor
}

const (
	// HeaderPageSize is the fixed size in bytes of one header page.
	HeaderPageSize = 32
	// TocPageSize is the fixed size in bytes of the table of contents page.
	TocPageSize = 16
	// FooterPageSize is the fixed size in bytes of the footer page.
	FooterPageSize = 24
	// MinTocOffset is the smallest toc_offset value validate_open accepts.
	// It leaves room for one header page; readers that require both pages
	// before the body enforce their own, stricter lower bound.
	MinTocOffset = 32
)

var (
	headerMagic = [4]byte{'M', 'V', '2', 'H'}
	tocMagic    = [4]byte{'M', 'V', '2', 'T'}
	footerMagic = [4]byte{'M', 'V', '2', 'F'}
)

// Checksum computes the additive-wrapping u32 checksum used by every page
// in the container: the sum of every preceding byte, wrapping on overflow.
// This detects accidental corruption; it is not a cryptographic integrity
// check.
func Checksum(b []byte) uint32 {
	var sum uint32
	for _, c := range b {
		sum += uint32(c)
	}
	return sum
}
