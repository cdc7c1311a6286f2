// Package objectstore provides the opaque blob storage abstraction the
// backup exporter uses for off-box persistence: a
// minimal put/get/get_range contract with URL-scheme-based backend
// selection.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrUnsupportedScheme is returned by Open for a recognized-but-unwired
// URL scheme (gs://, az://): no corresponding SDK appears anywhere in
// this module's dependency set, so rather than fabricate a client, the
// scheme is parsed and rejected explicitly.
var ErrUnsupportedScheme = errors.New("objectstore: unsupported scheme")

// ErrNotFound is returned by Get/GetRange when the key does not exist.
var ErrNotFound = errors.New("objectstore: object not found")

// Store is the opaque blob storage contract: Put writes (or replaces) an
// object in full, Get reads it whole, GetRange reads a byte range.
type Store interface {
	Put(ctx context.Context, key string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	GetRange(ctx context.Context, key string, start, end int) ([]byte, error)
}

// Open dispatches rawURL's scheme to the matching backend:
//   - file://  -> a local-filesystem Store rooted at the URL's path
//   - s3://    -> an S3Store (bucket is the URL host, prefix is the path)
//   - gs://, az:// -> ErrUnsupportedScheme
func Open(ctx context.Context, rawURL string) (Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("objectstore: parse url: %w", err)
	}

	switch u.Scheme {
	case "file":
		return NewFileStore(u.Path), nil
	case "s3":
		return NewS3Store(ctx, u.Host, trimLeadingSlash(u.Path))
	case "gs", "az":
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

func trimLeadingSlash(p string) string {
	if len(p) > 0 && p[0] == '/' {
		return p[1:]
	}
	return p
}
