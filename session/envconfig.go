package session

import (
	"os"
	"strconv"
)

// Environment variable names for the session knobs. Unset variables
// leave the corresponding Config field at DefaultConfig's value.
const (
	envEnableTextSearch       = "RAX_ENABLE_TEXT_SEARCH"
	envEnableVectorSearch     = "RAX_ENABLE_VECTOR_SEARCH"
	envEnableStructuredMemory = "RAX_ENABLE_STRUCTURED_MEMORY"
	envVectorDimensions       = "RAX_VECTOR_DIMENSIONS"
)

// ConfigFromEnviron builds a Config from DefaultConfig, overriding each
// field whose environment variable is set. Boolean variables are parsed
// with strconv.ParseBool (so "1"/"true"/"0"/"false" and their variants all
// work); an unparsable value is ignored and the default is kept rather
// than failing session startup over a malformed knob.
func ConfigFromEnviron() Config {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv(envEnableTextSearch); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableTextSearch = b
		}
	}
	if v, ok := os.LookupEnv(envEnableVectorSearch); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableVectorSearch = b
		}
	}
	if v, ok := os.LookupEnv(envEnableStructuredMemory); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableStructuredMemory = b
		}
	}
	if v, ok := os.LookupEnv(envVectorDimensions); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.VectorDimensions = &n
		}
	}

	return cfg
}
