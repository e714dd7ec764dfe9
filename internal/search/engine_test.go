package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sportzvillage/svassist/internal/logging"
	"github.com/sportzvillage/svassist/internal/vectordb"
)

// scriptedStore serves canned hits per collection and records the
// filters it was queried with.
type scriptedStore struct {
	hits    map[string][]vectordb.Hit
	fail    map[string]bool
	queried []string
	filters map[string]map[string]string
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{
		hits:    map[string][]vectordb.Hit{},
		fail:    map[string]bool{},
		filters: map[string]map[string]string{},
	}
}

func (s *scriptedStore) Ensure(string, string) error { return nil }

func (s *scriptedStore) Upsert(context.Context, string, []vectordb.Document) error { return nil }

func (s *scriptedStore) Query(_ context.Context, collection, _ string, k int, where map[string]string) ([]vectordb.Hit, error) {
	s.queried = append(s.queried, collection)
	s.filters[collection] = where
	if s.fail[collection] {
		return nil, errors.New("collection down")
	}
	var hits []vectordb.Hit
	for _, h := range s.hits[collection] {
		if matchesWhere(h, where) {
			hits = append(hits, h)
		}
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func matchesWhere(h vectordb.Hit, where map[string]string) bool {
	for k, v := range where {
		if h.Metadata[k] != v {
			return false
		}
	}
	return true
}

func (s *scriptedStore) Count(string) (int, error) { return 0, nil }
func (s *scriptedStore) Drop(string) error { return nil }
func (s *scriptedStore) Reset(string) error { return nil }
func (s *scriptedStore) Collections() []string { return nil }

func hit(collection, content string, distance float32) vectordb.Hit {
	return vectordb.Hit{
		Collection: collection,
		Content:    content,
		Score:      1 - distance,
		Distance:   distance,
	}
}

func TestSearch_GlobalTopK(t *testing.T) {
	store := newScriptedStore()
	store.hits[vectordb.CollectionTimetables] = []vectordb.Hit{
		hit(vectordb.CollectionTimetables, "tt-good", 0.1),
		hit(vectordb.CollectionTimetables, "tt-ok", 0.5),
	}
	store.hits[vectordb.CollectionLessons] = []vectordb.Hit{
		hit(vectordb.CollectionLessons, "lesson-best", 0.05),
		hit(vectordb.CollectionLessons, "lesson-poor", 0.9),
	}
	store.hits[vectordb.CollectionProps] = []vectordb.Hit{
		hit(vectordb.CollectionProps, "prop-mid", 0.3),
	}

	e := New(store, logging.Nop())
	hits := e.Search(context.Background(), "anything", 3, "")

	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	want := []string{"lesson-best", "tt-good", "prop-mid"}
	for i, w := range want {
		if hits[i].Content != w {
			t.Errorf("hit %d = %q, want %q", i, hits[i].Content, w)
		}
	}
}

func TestSearch_TopKPrefixMonotone(t *testing.T) {
	store := newScriptedStore()
	store.hits[vectordb.CollectionTimetables] = []vectordb.Hit{
		hit(vectordb.CollectionTimetables, "a", 0.1),
		hit(vectordb.CollectionTimetables, "b", 0.2),
	}
	store.hits[vectordb.CollectionLessons] = []vectordb.Hit{
		hit(vectordb.CollectionLessons, "c", 0.15),
	}
	store.hits[vectordb.CollectionProps] = []vectordb.Hit{
		hit(vectordb.CollectionProps, "d", 0.4),
	}

	e := New(store, logging.Nop())
	all := e.Search(context.Background(), "q", 4, "")
	top2 := e.Search(context.Background(), "q", 2, "")

	if len(top2) != 2 {
		t.Fatalf("got %d hits, want 2", len(top2))
	}
	for i := range top2 {
		if top2[i].Content != all[i].Content {
			t.Errorf("top-2 is not a prefix of top-4 at %d: %q vs %q", i, top2[i].Content, all[i].Content)
		}
	}
}

func TestSearch_TieBreakKeepsFanoutOrder(t *testing.T) {
	store := newScriptedStore()
	store.hits[vectordb.CollectionProps] = []vectordb.Hit{
		hit(vectordb.CollectionProps, "prop-tied", 0.2),
	}
	store.hits[vectordb.CollectionTimetables] = []vectordb.Hit{
		hit(vectordb.CollectionTimetables, "tt-tied", 0.2),
	}
	store.hits[vectordb.CollectionLessons] = []vectordb.Hit{
		hit(vectordb.CollectionLessons, "lesson-tied", 0.2),
	}

	e := New(store, logging.Nop())
	hits := e.Search(context.Background(), "q", 3, "")

	want := []string{"tt-tied", "lesson-tied", "prop-tied"}
	for i, w := range want {
		if hits[i].Content != w {
			t.Errorf("tie-break order broken at %d: got %q, want %q", i, hits[i].Content, w)
		}
	}
}

func TestSearch_PartialFailureTolerated(t *testing.T) {
	store := newScriptedStore()
	store.fail[vectordb.CollectionLessons] = true
	store.hits[vectordb.CollectionTimetables] = []vectordb.Hit{
		hit(vectordb.CollectionTimetables, "tt", 0.1),
	}
	store.hits[vectordb.CollectionProps] = []vectordb.Hit{
		hit(vectordb.CollectionProps, "prop", 0.2),
	}

	e := New(store, logging.Nop())
	hits := e.Search(context.Background(), "q", 5, "")

	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2 despite the lessons failure", len(hits))
	}
}

func TestSearch_AllEmpty(t *testing.T) {
	e := New(newScriptedStore(), logging.Nop())
	if hits := e.Search(context.Background(), "q", 5, ""); len(hits) != 0 {
		t.Errorf("got %d hits from empty collections, want 0", len(hits))
	}
}

func TestSearch_SchoolFilterAppliedToAllCollections(t *testing.T) {
	store := newScriptedStore()
	e := New(store, logging.Nop())

	e.Search(context.Background(), "q", 5, "SCH009")

	for _, c := range []string{vectordb.CollectionTimetables, vectordb.CollectionLessons, vectordb.CollectionProps} {
		where := store.filters[c]
		if where == nil || where["school_id"] != "SCH009" {
			t.Errorf("collection %s queried without the school filter: %v", c, where)
		}
	}
}

func TestSearch_NoFilterWithoutSchool(t *testing.T) {
	store := newScriptedStore()
	e := New(store, logging.Nop())

	e.Search(context.Background(), "q", 5, "")

	for c, where := range store.filters {
		if len(where) != 0 {
			t.Errorf("collection %s got unexpected filter %v", c, where)
		}
	}
}

func TestRetrieveContext_Prefixes(t *testing.T) {
	store := newScriptedStore()
	store.hits[vectordb.CollectionTimetables] = []vectordb.Hit{
		hit(vectordb.CollectionTimetables, "Period 1 Cricket", 0.1),
	}
	store.hits[vectordb.CollectionLessons] = []vectordb.Hit{
		hit(vectordb.CollectionLessons, "Relay Races", 0.1),
	}
	store.hits[vectordb.CollectionProps] = []vectordb.Hit{
		hit(vectordb.CollectionProps, "20 cones", 0.1),
	}
	store.hits[vectordb.CollectionDocuments] = []vectordb.Hit{
		hit(vectordb.CollectionDocuments, "Safety policy", 0.1),
	}

	e := New(store, logging.Nop())
	text := e.RetrieveContext(context.Background(), "q", ContextAll, 5)

	for _, want := range []string{
		"Timetable: Period 1 Cricket",
		"Lesson: Relay Races",
		"Props: 20 cones",
		"Document: Safety policy",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("context missing %q:\n%s", want, text)
		}
	}
}

func TestRetrieveContext_ScopedType(t *testing.T) {
	store := newScriptedStore()
	store.hits[vectordb.CollectionLessons] = []vectordb.Hit{
		hit(vectordb.CollectionLessons, "Relay Races", 0.1),
	}

	e := New(store, logging.Nop())
	e.RetrieveContext(context.Background(), "q", ContextLessons, 5)

	for _, c := range store.queried {
		if c != vectordb.CollectionLessons {
			t.Errorf("scoped retrieval queried %s", c)
		}
	}
}

func TestCachedContext(t *testing.T) {
	store := newScriptedStore()
	store.hits[vectordb.CollectionUserContext] = []vectordb.Hit{
		{
			Collection: vectordb.CollectionUserContext,
			Content:    "User: U1",
			Metadata:   map[string]string{"user_id": "U1", "role": "R"},
		},
	}

	e := New(store, logging.Nop())
	md, err := e.CachedContext(context.Background(), "U1")
	if err != nil {
		t.Fatalf("CachedContext: %v", err)
	}
	if md["role"] != "R" {
		t.Errorf("metadata = %v", md)
	}

	none, err := e.CachedContext(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("CachedContext(miss): %v", err)
	}
	if none != nil {
		t.Errorf("expected nil metadata for unknown user, got %v", none)
	}
}

func TestFormatHits_Empty(t *testing.T) {
	if got := FormatHits(nil); got != "No results found." {
		t.Errorf("FormatHits(nil) = %q", got)
	}
}
