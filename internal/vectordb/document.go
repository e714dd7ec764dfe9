package vectordb

// Record type discriminators stored under the metadata key "type".
const (
	TypeTimetable   = "timetable"
	TypeLesson      = "lesson"
	TypeLessonPlan  = "lesson_plan"
	TypeProp        = "prop"
	TypeDocument    = "document"
	TypeUserContext = "user_context"
)

// Document is one indexable item: a stable id, the text that gets
// embedded, and flat metadata used for exact-match filtering.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Hit is a single search result. Score is the cosine similarity
// reported by the backing store (1.0 = identical); Distance is its
// inverse (1 − Score), so lower is better. The store is cosine-only by
// construction, which keeps this mapping meaningful.
type Hit struct {
	Collection string            `json:"collection"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Score      float32           `json:"score"`
	Distance   float32           `json:"distance"`
}
