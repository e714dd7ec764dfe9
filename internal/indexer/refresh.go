package indexer

import (
	"context"

	"github.com/sportzvillage/svassist/internal/logging"
	"github.com/sportzvillage/svassist/internal/records"
	"github.com/sportzvillage/svassist/internal/vectordb"
)

// Source is the tabular source of truth a refresh reads from.
type Source interface {
	Timetables() ([]records.TimetableEntry, error)
	Lessons() ([]records.Lesson, error)
	LessonPlans() ([]records.LessonPlan, error)
	Props() ([]records.Prop, error)
}

// Refresher rebuilds the tabular-backed collections from scratch.
type Refresher struct {
	store vectordb.Store
	ix    *Indexer
	src   Source
	log   *logging.Logger
}

func NewRefresher(store vectordb.Store, ix *Indexer, src Source, log *logging.Logger) *Refresher {
	return &Refresher{store: store, ix: ix, src: src, log: log}
}

// Refresh drops and recreates the timetables, lessons and props
// collections, then re-indexes everything the source currently holds.
// The documents and user_context collections are left alone; they have
// their own write paths.
//
// Refresh is safe to call repeatedly. Because the backing store only
// supports drop-then-recreate-then-upsert, concurrent readers can
// briefly observe empty or partially repopulated collections while a
// refresh runs; searches still complete (with degraded results) during
// that window.
//
// Returns false, without raising, when the retrieval subsystem is
// unavailable, so callers can fall back to non-semantic search.
func (r *Refresher) Refresh(ctx context.Context) bool {
	r.log.Info("refreshing vector cache")

	for _, name := range []string{
		vectordb.CollectionTimetables,
		vectordb.CollectionLessons,
		vectordb.CollectionProps,
	} {
		if err := r.store.Reset(name); err != nil {
			r.log.Error("cache refresh failed", "collection", name, "err", err)
			return false
		}
	}

	ok := true

	if timetables, err := r.src.Timetables(); err != nil {
		r.log.Error("reading timetables", "err", err)
		ok = false
	} else if err := r.ix.IndexTimetables(ctx, timetables); err != nil {
		r.log.Error("indexing timetables during refresh", "err", err)
		ok = false
	}

	lessons, lessonsErr := r.src.Lessons()
	if lessonsErr != nil {
		r.log.Error("reading lessons", "err", lessonsErr)
		ok = false
		lessons = nil
	}
	plans, plansErr := r.src.LessonPlans()
	if plansErr != nil {
		r.log.Error("reading lesson plans", "err", plansErr)
		ok = false
		plans = nil
	}
	if lessonsErr == nil || plansErr == nil {
		if err := r.ix.IndexLessons(ctx, lessons, plans); err != nil {
			r.log.Error("indexing lessons during refresh", "err", err)
			ok = false
		}
	}

	if props, err := r.src.Props(); err != nil {
		r.log.Error("reading props", "err", err)
		ok = false
	} else if err := r.ix.IndexProps(ctx, props); err != nil {
		r.log.Error("indexing props during refresh", "err", err)
		ok = false
	}

	if ok {
		r.log.Info("vector cache refresh completed")
	}
	return ok
}
