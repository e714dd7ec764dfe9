// Package vectordb provides the semantic cache: named collections of
// embedded records with nearest-neighbor retrieval.
package vectordb

import (
	"context"
	"errors"
)

// Collection names provisioned at startup. One data category maps to
// exactly one collection.
const (
	CollectionTimetables  = "timetables"
	CollectionLessons     = "lessons"
	CollectionProps       = "props"
	CollectionDocuments   = "documents"
	CollectionUserContext = "user_context"
)

var (
	// ErrUnavailable means the vector store or its embedding provider
	// could not be reached or initialized. Callers degrade to
	// non-semantic behavior instead of failing.
	ErrUnavailable = errors.New("vector store unavailable")

	// ErrUnknownCollection means the named collection was never
	// provisioned (or was dropped and not recreated).
	ErrUnknownCollection = errors.New("unknown collection")
)

// Store is the collection-store contract: upsert-by-id and
// nearest-neighbor query over independently named collections.
type Store interface {
	// Ensure creates the named collection if it does not exist.
	Ensure(name, description string) error

	// Upsert adds or replaces documents by id. Re-upserting an id
	// replaces its text, metadata and embedding.
	Upsert(ctx context.Context, collection string, docs []Document) error

	// Query returns up to k nearest neighbors for the query text,
	// restricted to items whose metadata exactly matches every key in
	// where (AND semantics). An empty collection yields an empty
	// result, not an error.
	Query(ctx context.Context, collection, query string, k int, where map[string]string) ([]Hit, error)

	// Count returns the number of items in the collection.
	Count(collection string) (int, error)

	// Drop deletes the collection and its contents.
	Drop(collection string) error

	// Reset drops and recreates the collection empty. Readers querying
	// during a reset may briefly observe an empty or partial
	// collection; see the cache refresher for the documented window.
	Reset(collection string) error

	// Collections lists the currently provisioned collection names.
	Collections() []string
}
