package indexer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sportzvillage/svassist/internal/records"
	"github.com/sportzvillage/svassist/internal/vectordb"
)

// The encoders below are pure: each turns one typed record into the
// (id, searchable text, metadata) triple that gets embedded and stored.
// The text is a field-per-line rendering with a fixed field order, so
// embeddings for the same logical record are reproducible.

// TimetableID builds the deterministic id for a timetable entry.
// Re-indexing the same school/class/section/period overwrites in place.
func TimetableID(e records.TimetableEntry) string {
	return fmt.Sprintf("tt_%s_%s_%s_%d", e.SchoolID, e.Class, e.Section, e.PeriodNumber)
}

// EncodeTimetable renders a timetable entry for indexing.
func EncodeTimetable(e records.TimetableEntry) vectordb.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "School: %s\n", e.SchoolID)
	fmt.Fprintf(&b, "Class: %s Section: %s\n", e.Class, e.Section)
	fmt.Fprintf(&b, "Period: %d (%s)\n", e.PeriodNumber, e.TimeSlot)
	fmt.Fprintf(&b, "Subject: %s\n", e.Subject)
	fmt.Fprintf(&b, "PE Period: %t", e.IsPEPeriod)

	return vectordb.Document{
		ID:      TimetableID(e),
		Content: b.String(),
		Metadata: map[string]string{
			"school_id":     e.SchoolID,
			"class":         e.Class,
			"section":       e.Section,
			"period_number": strconv.Itoa(e.PeriodNumber),
			"subject":       e.Subject,
			"type":          vectordb.TypeTimetable,
		},
	}
}

// EncodeLesson renders an individual lesson for indexing.
func EncodeLesson(l records.Lesson) vectordb.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Lesson: %s\n", l.Name)
	fmt.Fprintf(&b, "Description: %s\n", l.Description)
	fmt.Fprintf(&b, "Duration: %d minutes\n", l.Duration)
	fmt.Fprintf(&b, "Required Props: %s", strings.Join(l.RequiredProps, ", "))

	return vectordb.Document{
		ID:      "lesson_" + l.LessonID,
		Content: b.String(),
		Metadata: map[string]string{
			"lesson_id": l.LessonID,
			"name":      l.Name,
			"duration":  strconv.Itoa(l.Duration),
			"type":      vectordb.TypeLesson,
		},
	}
}

// EncodeLessonPlan renders a lesson plan for indexing. Plans share the
// lessons collection with individual lessons, disambiguated by the
// "type" metadata field.
func EncodeLessonPlan(p records.LessonPlan) vectordb.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Lesson Plan: %s\n", p.LessonPlanID)
	fmt.Fprintf(&b, "School: %s\n", p.SchoolID)
	fmt.Fprintf(&b, "Session: %s\n", p.Session)
	fmt.Fprintf(&b, "Lessons: %s", strings.Join(p.Lessons, ", "))

	return vectordb.Document{
		ID:      "lp_" + p.LessonPlanID,
		Content: b.String(),
		Metadata: map[string]string{
			"lesson_plan_id": p.LessonPlanID,
			"school_id":      p.SchoolID,
			"session":        p.Session,
			"type":           vectordb.TypeLessonPlan,
		},
	}
}

// EncodeProp renders a prop inventory row for indexing. The equipment
// kind lives under "prop_type" so it cannot clobber the category
// discriminator.
func EncodeProp(p records.Prop) vectordb.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Prop: %s\n", p.Type)
	fmt.Fprintf(&b, "School: %s\n", p.SchoolID)
	fmt.Fprintf(&b, "Total Quantity: %d\n", p.Quantity)
	fmt.Fprintf(&b, "Available: %d\n", p.Available)
	fmt.Fprintf(&b, "Status: %s\n", p.Status)
	fmt.Fprintf(&b, "Utilization: %.1f%%", p.Utilization())

	return vectordb.Document{
		ID:      "prop_" + p.PropID,
		Content: b.String(),
		Metadata: map[string]string{
			"prop_id":   p.PropID,
			"prop_type": p.Type,
			"school_id": p.SchoolID,
			"quantity":  strconv.Itoa(p.Quantity),
			"available": strconv.Itoa(p.Available),
			"status":    p.Status,
			"type":      vectordb.TypeProp,
		},
	}
}

// EncodeUserContext renders a user-context snapshot. One record per
// user, keyed context_{user_id}, overwritten on every cache event.
func EncodeUserContext(c records.UserContext) vectordb.Document {
	activity, _ := json.Marshal(c.RecentActivity)
	prefs, _ := json.Marshal(c.Preferences)

	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\n", c.UserID)
	fmt.Fprintf(&b, "Role: %s\n", c.Role)
	fmt.Fprintf(&b, "School: %s\n", c.SchoolID)
	fmt.Fprintf(&b, "Recent Activity: %s\n", activity)
	fmt.Fprintf(&b, "Preferences: %s", prefs)

	return vectordb.Document{
		ID:      "context_" + c.UserID,
		Content: b.String(),
		Metadata: map[string]string{
			"user_id":   c.UserID,
			"role":      string(c.Role),
			"school_id": c.SchoolID,
			"type":      vectordb.TypeUserContext,
		},
	}
}
