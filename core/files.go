package core

import "io"

// FileStore is any service that can persist uploaded artifacts
// and hand back a link to them.
type FileStore interface {
	// Save persists src under a store-controlled path derived from name
	// and returns the link to record.
	Save(name string, src io.Reader) (string, error)
}
