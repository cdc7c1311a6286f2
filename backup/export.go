package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/raxdb/rax/backup/schema"
	"github.com/raxdb/rax/objectstore"
)

// Exporter writes and reads manifests as JSON through an object store
// under a fixed key prefix.
type Exporter struct {
	store  objectstore.Store
	prefix string
}

// NewExporter returns an Exporter writing under prefix in store.
func NewExporter(store objectstore.Store, prefix string) *Exporter {
	return &Exporter{store: store, prefix: prefix}
}

func (e *Exporter) objectKey(key string) string {
	if e.prefix == "" {
		return key
	}
	return e.prefix + "/" + key
}

// ExportManifest validates manifest against the manifest schema, then
// serializes and writes it to key.
func (e *Exporter) ExportManifest(ctx context.Context, key string, manifest Manifest) error {
	body, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("backup: marshal manifest: %w", err)
	}
	if err := schema.ValidateManifest(bytes.NewReader(body)); err != nil {
		return fmt.Errorf("backup: invalid manifest: %w", err)
	}
	if err := e.store.Put(ctx, e.objectKey(key), body); err != nil {
		return fmt.Errorf("backup: export manifest: %w", err)
	}
	return nil
}

// ReadManifest reads and deserializes the manifest stored at key.
func (e *Exporter) ReadManifest(ctx context.Context, key string) (Manifest, error) {
	body, err := e.store.Get(ctx, e.objectKey(key))
	if err != nil {
		return Manifest{}, fmt.Errorf("backup: read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return Manifest{}, fmt.Errorf("backup: unmarshal manifest: %w", err)
	}
	return m, nil
}
