package config

import (
	"context"
)

// Loader is the interface for a format-specific document loader.
type Loader interface {
	// Load reads every given file, translates it into the format-agnostic
	// model, and merges the results into one Document.
	Load(ctx context.Context, paths ...string) (*Document, error)

	// Extensions lists the file extensions the loader understands,
	// including the leading dot.
	Extensions() []string
}
