package store

import "time"

// Document kinds.
const (
	KindScript   = "script"
	KindFunction = "function"
)

// Document is a persisted code tree. Body is the JSON encoding of its root
// node and Hash is the ContentHash of Body.
type Document struct {
	ID        string
	Name      string
	Kind      string
	Hash      string
	Body      string
	UpdatedAt time.Time
}

// Source is a Go file whose exported functions were imported.
type Source struct {
	ID         int64
	Path       string
	Hash       string
	ImportedAt time.Time
}

// Function is a persisted catalog function. Body is its JSON declaration.
type Function struct {
	ID            string
	Name          string
	Kind          string
	SourceID      *int64
	DocumentID    *string
	SignatureHash string
	Body          string
}

// TypeSpec is a persisted struct or enum declaration.
type TypeSpec struct {
	ID   string
	Name string
	Kind string
	Body string
}
