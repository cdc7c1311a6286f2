// Package schema embeds and validates the backup manifest's JSON Schema.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed manifest.schema.json
var schemaFiles embed.FS

func load(s string) (io.ReadCloser, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	return schemaFiles.Open(strings.TrimPrefix(u.Path, "/"))
}

func init() {
	jsonschema.Loaders["embedfs"] = load
}

// ValidateManifest validates the JSON document read from r against the
// backup manifest schema.
func ValidateManifest(r io.Reader) error {
	s, err := jsonschema.Compile("embedFS:///manifest.schema.json")
	if err != nil {
		return fmt.Errorf("schema: compile: %w", err)
	}

	var v interface{}
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return fmt.Errorf("schema: decode: %w", err)
	}

	if err := s.Validate(v); err != nil {
		return fmt.Errorf("schema: validate: %w", err)
	}
	return nil
}
