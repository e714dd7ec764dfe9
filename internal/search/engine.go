// Package search implements federated retrieval: one query fanned out
// across the category collections, merged into a single globally ranked
// result list.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sportzvillage/svassist/internal/logging"
	"github.com/sportzvillage/svassist/internal/vectordb"
)

// DefaultResults is the per-call result budget when the caller passes
// k <= 0.
const DefaultResults = 5

// ContextType scopes RAG context retrieval to one category.
type ContextType string

const (
	ContextAll        ContextType = "all"
	ContextTimetables ContextType = "timetables"
	ContextLessons    ContextType = "lessons"
	ContextProps      ContextType = "props"
	ContextDocuments  ContextType = "documents"
)

// fanout lists the collections a generic search touches, in query
// order. The order doubles as the tie-break: equal distances keep
// fan-out order, then per-collection rank (the merge sort is stable).
var fanout = []string{
	vectordb.CollectionTimetables,
	vectordb.CollectionLessons,
	vectordb.CollectionProps,
}

// Engine fans queries out across collections and re-ranks the merged
// results by ascending distance.
type Engine struct {
	store vectordb.Store
	log   *logging.Logger
}

func New(store vectordb.Store, log *logging.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Search queries the timetables, lessons and props collections, merges
// all hits, and returns the global top k by ascending distance. This is
// a global top-k: a collection whose best match is poor can be absent
// from the result entirely.
//
// schoolID, when non-empty, is applied as an exact-match metadata
// filter to every fanned-out collection. Plain lesson records carry no
// school_id, so under a school filter the lessons collection only
// contributes lesson-plan entries.
//
// A single collection failing is logged and tolerated; the result
// reflects the collections that succeeded. If everything fails the
// result is empty, never an error.
func (e *Engine) Search(ctx context.Context, query string, k int, schoolID string) []vectordb.Hit {
	if k <= 0 {
		k = DefaultResults
	}

	var where map[string]string
	if schoolID != "" {
		where = map[string]string{"school_id": schoolID}
	}

	var merged []vectordb.Hit
	for _, collection := range fanout {
		hits, err := e.store.Query(ctx, collection, query, k, where)
		if err != nil {
			e.log.Warn("collection query failed, continuing with partial results",
				"collection", collection, "err", err)
			continue
		}
		merged = append(merged, hits...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Distance < merged[j].Distance
	})
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// SearchTimetables queries only the timetables collection, optionally
// filtered by school and class.
func (e *Engine) SearchTimetables(ctx context.Context, query, schoolID, class string, k int) ([]vectordb.Hit, error) {
	where := map[string]string{}
	if schoolID != "" {
		where["school_id"] = schoolID
	}
	if class != "" {
		where["class"] = class
	}
	return e.store.Query(ctx, vectordb.CollectionTimetables, query, normK(k), where)
}

// SearchLessons queries only the lessons collection.
func (e *Engine) SearchLessons(ctx context.Context, query, schoolID string, k int) ([]vectordb.Hit, error) {
	where := map[string]string{}
	if schoolID != "" {
		where["school_id"] = schoolID
	}
	return e.store.Query(ctx, vectordb.CollectionLessons, query, normK(k), where)
}

// SearchProps queries only the props collection.
func (e *Engine) SearchProps(ctx context.Context, query, schoolID string, k int) ([]vectordb.Hit, error) {
	where := map[string]string{}
	if schoolID != "" {
		where["school_id"] = schoolID
	}
	return e.store.Query(ctx, vectordb.CollectionProps, query, normK(k), where)
}

// SearchDocuments queries the chunked free-text documents, optionally
// restricted by category and doc_type metadata.
func (e *Engine) SearchDocuments(ctx context.Context, query, category, docType string, k int) ([]vectordb.Hit, error) {
	where := map[string]string{}
	if category != "" {
		where["category"] = category
	}
	if docType != "" {
		where["doc_type"] = docType
	}
	return e.store.Query(ctx, vectordb.CollectionDocuments, query, normK(k), where)
}

// CachedContext returns the metadata of a user's cached context
// snapshot, or nil when none exists.
func (e *Engine) CachedContext(ctx context.Context, userID string) (map[string]string, error) {
	hits, err := e.store.Query(ctx, vectordb.CollectionUserContext, "User: "+userID, 1,
		map[string]string{"user_id": userID})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	return hits[0].Metadata, nil
}

// RetrieveContext assembles a text blob of relevant matches for LLM
// prompt injection, each line prefixed with its source category.
// Collection failures degrade to whatever the remaining categories
// return; the empty string means nothing relevant was found.
func (e *Engine) RetrieveContext(ctx context.Context, query string, contextType ContextType, k int) string {
	k = normK(k)
	var parts []string

	appendHits := func(prefix string, hits []vectordb.Hit, err error, collection string) {
		if err != nil {
			e.log.Warn("context retrieval query failed", "collection", collection, "err", err)
			return
		}
		for _, h := range hits {
			parts = append(parts, prefix+": "+h.Content)
		}
	}

	if contextType == ContextAll || contextType == ContextTimetables {
		hits, err := e.store.Query(ctx, vectordb.CollectionTimetables, query, k, nil)
		appendHits("Timetable", hits, err, vectordb.CollectionTimetables)
	}
	if contextType == ContextAll || contextType == ContextLessons {
		hits, err := e.store.Query(ctx, vectordb.CollectionLessons, query, k, nil)
		appendHits("Lesson", hits, err, vectordb.CollectionLessons)
	}
	if contextType == ContextAll || contextType == ContextProps {
		hits, err := e.store.Query(ctx, vectordb.CollectionProps, query, k, nil)
		appendHits("Props", hits, err, vectordb.CollectionProps)
	}
	if contextType == ContextAll || contextType == ContextDocuments {
		hits, err := e.store.Query(ctx, vectordb.CollectionDocuments, query, k, nil)
		appendHits("Document", hits, err, vectordb.CollectionDocuments)
	}

	return strings.Join(parts, "\n\n")
}

// FormatHits renders search results as human-readable text for CLI and
// tool output.
func FormatHits(hits []vectordb.Hit) string {
	if len(hits) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n\n", len(hits))
	for i, h := range hits {
		fmt.Fprintf(&sb, "--- Result %d (score: %.4f, %s) ---\n", i+1, h.Score, h.Collection)
		if t := h.Metadata["type"]; t != "" {
			fmt.Fprintf(&sb, "Type: %s\n", t)
		}
		if school := h.Metadata["school_id"]; school != "" {
			fmt.Fprintf(&sb, "School: %s\n", school)
		}
		sb.WriteString(h.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func normK(k int) int {
	if k <= 0 {
		return DefaultResults
	}
	return k
}
