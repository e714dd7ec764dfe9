package vectordb

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/sportzvillage/svassist/internal/embeddings"
	"github.com/sportzvillage/svassist/internal/logging"
)

// defaultCollections are provisioned on startup, one per data category.
var defaultCollections = []struct {
	name        string
	description string
}{
	{CollectionTimetables, "School timetable data"},
	{CollectionLessons, "Lesson plans and lesson details"},
	{CollectionProps, "Sports equipment and props data"},
	{CollectionDocuments, "Reports, guidelines, and documentation"},
	{CollectionUserContext, "User preferences and context data"},
}

// ChromemStore implements Store on top of chromem-go. Collections are
// persisted under the store's directory when one is configured.
//
// chromem collections serialize their own reads and writes; the mutex
// here only guards the name→collection map so Drop/Ensure during a
// refresh cannot race concurrent queries.
type ChromemStore struct {
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc

	mu          sync.RWMutex
	collections map[string]*chromem.Collection

	log *logging.Logger
}

// NewChromemStore opens (or creates) a persistent store in dir and
// provisions the five category collections. Wraps ErrUnavailable when
// the backing database cannot be opened.
func NewChromemStore(dir string, embedder embeddings.Embedder, log *logging.Logger) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, true)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrUnavailable, dir, err)
	}
	return newStore(db, embedder, log)
}

// NewMemoryStore creates an in-memory store with the same collection
// layout. Used in tests and throwaway environments.
func NewMemoryStore(embedder embeddings.Embedder, log *logging.Logger) (*ChromemStore, error) {
	return newStore(chromem.NewDB(), embedder, log)
}

func newStore(db *chromem.DB, embedder embeddings.Embedder, log *logging.Logger) (*ChromemStore, error) {
	s := &ChromemStore{
		db:          db,
		embedFunc:   embeddings.ToChromemFunc(embedder),
		collections: make(map[string]*chromem.Collection),
		log:         log,
	}
	for _, c := range defaultCollections {
		if err := s.Ensure(c.name, c.description); err != nil {
			return nil, err
		}
	}
	log.Info("vector store collections initialized", "count", len(defaultCollections))
	return s, nil
}

func (s *ChromemStore) Ensure(name, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; ok {
		return nil
	}
	col, err := s.db.GetOrCreateCollection(name, map[string]string{"description": description}, s.embedFunc)
	if err != nil {
		return fmt.Errorf("%w: creating collection %s: %v", ErrUnavailable, name, err)
	}
	s.collections[name] = col
	return nil
}

func (s *ChromemStore) Upsert(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	col, err := s.collection(collection)
	if err != nil {
		return err
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		}
	}

	// chromem replaces documents that share an id, which gives us
	// idempotent upsert semantics.
	if err := col.AddDocuments(ctx, chromemDocs, 1); err != nil {
		return fmt.Errorf("upserting %d docs into %s: %w", len(docs), collection, err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, collection, query string, k int, where map[string]string) ([]Hit, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("query %s: k must be positive, got %d", collection, k)
	}

	// chromem rejects nResults larger than the collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	if len(where) == 0 {
		where = nil
	}

	results, err := col.Query(ctx, query, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			Collection: collection,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Score:      r.Similarity,
			Distance:   1 - r.Similarity,
		}
	}
	return hits, nil
}

func (s *ChromemStore) Count(collection string) (int, error) {
	col, err := s.collection(collection)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

func (s *ChromemStore) Drop(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	if err := s.db.DeleteCollection(collection); err != nil {
		return fmt.Errorf("dropping collection %s: %w", collection, err)
	}
	delete(s.collections, collection)
	return nil
}

func (s *ChromemStore) Reset(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	description := ""
	for _, c := range defaultCollections {
		if c.name == collection {
			description = c.description
			break
		}
	}

	if _, ok := s.collections[collection]; ok {
		if err := s.db.DeleteCollection(collection); err != nil {
			return fmt.Errorf("resetting collection %s: %w", collection, err)
		}
		delete(s.collections, collection)
	}

	col, err := s.db.GetOrCreateCollection(collection, map[string]string{"description": description}, s.embedFunc)
	if err != nil {
		return fmt.Errorf("%w: recreating collection %s: %v", ErrUnavailable, collection, err)
	}
	s.collections[collection] = col
	return nil
}

func (s *ChromemStore) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	return names
}

func (s *ChromemStore) collection(name string) (*chromem.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return col, nil
}
