package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LessonCompletion is one delivered-lesson report.
type LessonCompletion struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	LessonID   string    `json:"lesson_id"`
	SchoolID   string    `json:"school_id"`
	Class      string    `json:"class"`
	Section    string    `json:"section"`
	ResidentID string    `json:"resident_id"`
	Notes      string    `json:"notes"`
}

// PropUpdate is one prop status change report.
type PropUpdate struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	PropID     string    `json:"prop_id"`
	Status     string    `json:"status"`
	ResidentID string    `json:"resident_id"`
}

// LogLessonCompletion inserts a completion record. A missing ID gets a
// generated UUID.
func (d *DB) LogLessonCompletion(ctx context.Context, c LessonCompletion) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := d.ExecContext(ctx, `
		INSERT INTO lesson_completions (id, lesson_id, school_id, class, section, resident_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.LessonID, c.SchoolID, c.Class, c.Section, c.ResidentID, c.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting lesson completion: %w", err)
	}
	return nil
}

// RecentCompletions returns the newest completion records for a school
// (all schools when schoolID is empty).
func (d *DB) RecentCompletions(ctx context.Context, schoolID string, limit int) ([]LessonCompletion, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, timestamp, lesson_id, school_id, class, section, resident_id, notes
		FROM lesson_completions`
	args := []any{}
	if schoolID != "" {
		query += " WHERE school_id = ?"
		args = append(args, schoolID)
	}
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT %d", limit)

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying lesson completions: %w", err)
	}
	defer rows.Close()

	var out []LessonCompletion
	for rows.Next() {
		var c LessonCompletion
		var ts string
		if err := rows.Scan(&c.ID, &ts, &c.LessonID, &c.SchoolID, &c.Class, &c.Section, &c.ResidentID, &c.Notes); err != nil {
			return nil, err
		}
		c.Timestamp = parseSQLiteTime(ts)
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdatePropStatus records a prop status change.
func (d *DB) UpdatePropStatus(ctx context.Context, u PropUpdate) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	_, err := d.ExecContext(ctx, `
		INSERT INTO prop_updates (id, prop_id, status, resident_id)
		VALUES (?, ?, ?, ?)`,
		u.ID, u.PropID, u.Status, u.ResidentID,
	)
	if err != nil {
		return fmt.Errorf("inserting prop update: %w", err)
	}
	return nil
}

// PropHistory returns a prop's status changes, newest first.
func (d *DB) PropHistory(ctx context.Context, propID string, limit int) ([]PropUpdate, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, timestamp, prop_id, status, resident_id
		FROM prop_updates WHERE prop_id = ?
		ORDER BY timestamp DESC LIMIT %d`, limit), propID)
	if err != nil {
		return nil, fmt.Errorf("querying prop updates: %w", err)
	}
	defer rows.Close()

	var out []PropUpdate
	for rows.Next() {
		var u PropUpdate
		var ts string
		if err := rows.Scan(&u.ID, &ts, &u.PropID, &u.Status, &u.ResidentID); err != nil {
			return nil, err
		}
		u.Timestamp = parseSQLiteTime(ts)
		out = append(out, u)
	}
	return out, rows.Err()
}

func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{time.DateTime, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
