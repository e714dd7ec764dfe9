// Package indexer feeds the vector cache: it encodes typed records into
// searchable documents, batches them into the right collections, and
// rebuilds the cache from the tabular source of truth.
package indexer

import (
	"context"
	"fmt"

	"github.com/sportzvillage/svassist/internal/chunker"
	"github.com/sportzvillage/svassist/internal/logging"
	"github.com/sportzvillage/svassist/internal/records"
	"github.com/sportzvillage/svassist/internal/vectordb"
)

// Indexer writes category records into their collections. Each Index*
// method builds the full batch first and issues exactly one upsert per
// collection; a record failing validation is skipped and logged, never
// aborting the batch.
type Indexer struct {
	store        vectordb.Store
	chunkSize    int
	chunkOverlap int
	log          *logging.Logger
}

// New creates an Indexer. chunkSize/chunkOverlap control document
// windowing; zero values fall back to the chunker defaults.
func New(store vectordb.Store, chunkSize, chunkOverlap int, log *logging.Logger) *Indexer {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = chunker.DefaultOverlap
	}
	return &Indexer{
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		log:          log,
	}
}

// IndexTimetables upserts all valid timetable entries in one batch.
func (ix *Indexer) IndexTimetables(ctx context.Context, entries []records.TimetableEntry) error {
	docs := make([]vectordb.Document, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			ix.log.Warn("skipping timetable entry", "err", err)
			continue
		}
		docs = append(docs, EncodeTimetable(e))
	}
	if err := ix.store.Upsert(ctx, vectordb.CollectionTimetables, docs); err != nil {
		return err
	}
	ix.log.Info("indexed timetable entries", "count", len(docs))
	return nil
}

// IndexLessons upserts lessons and lesson plans into the shared lessons
// collection in one batch.
func (ix *Indexer) IndexLessons(ctx context.Context, lessons []records.Lesson, plans []records.LessonPlan) error {
	docs := make([]vectordb.Document, 0, len(lessons)+len(plans))
	for _, l := range lessons {
		if err := l.Validate(); err != nil {
			ix.log.Warn("skipping lesson", "err", err)
			continue
		}
		docs = append(docs, EncodeLesson(l))
	}
	for _, p := range plans {
		if err := p.Validate(); err != nil {
			ix.log.Warn("skipping lesson plan", "err", err)
			continue
		}
		docs = append(docs, EncodeLessonPlan(p))
	}
	if err := ix.store.Upsert(ctx, vectordb.CollectionLessons, docs); err != nil {
		return err
	}
	ix.log.Info("indexed lesson entries", "count", len(docs))
	return nil
}

// IndexProps upserts all valid prop rows in one batch.
func (ix *Indexer) IndexProps(ctx context.Context, props []records.Prop) error {
	docs := make([]vectordb.Document, 0, len(props))
	for _, p := range props {
		if err := p.Validate(); err != nil {
			ix.log.Warn("skipping prop", "err", err)
			continue
		}
		docs = append(docs, EncodeProp(p))
	}
	if err := ix.store.Upsert(ctx, vectordb.CollectionProps, docs); err != nil {
		return err
	}
	ix.log.Info("indexed props entries", "count", len(docs))
	return nil
}

// CacheUserContext overwrites the single context record for a user.
func (ix *Indexer) CacheUserContext(ctx context.Context, uc records.UserContext) error {
	if err := uc.Validate(); err != nil {
		return err
	}
	return ix.store.Upsert(ctx, vectordb.CollectionUserContext, []vectordb.Document{EncodeUserContext(uc)})
}

// StoreDocument chunks free-text content and upserts all chunks in one
// batch. Chunk ids are {docID}_chunk_{n}, independently addressable so
// re-storing the document overwrites its chunks in place. Each chunk
// carries the parent's metadata plus chunk_id, total_chunks and the
// document discriminator.
func (ix *Indexer) StoreDocument(ctx context.Context, docID, content string, metadata map[string]string) error {
	if docID == "" {
		return fmt.Errorf("store document: empty doc id")
	}

	chunks := chunker.Split(content, ix.chunkSize, ix.chunkOverlap)
	docs := make([]vectordb.Document, len(chunks))
	for i, chunk := range chunks {
		md := make(map[string]string, len(metadata)+3)
		for k, v := range metadata {
			md[k] = v
		}
		md["chunk_id"] = fmt.Sprintf("%d", i)
		md["total_chunks"] = fmt.Sprintf("%d", len(chunks))
		md["type"] = vectordb.TypeDocument

		docs[i] = vectordb.Document{
			ID:       fmt.Sprintf("%s_chunk_%d", docID, i),
			Content:  chunk,
			Metadata: md,
		}
	}

	if err := ix.store.Upsert(ctx, vectordb.CollectionDocuments, docs); err != nil {
		return err
	}
	ix.log.Info("stored document", "doc_id", docID, "chunks", len(chunks))
	return nil
}
