// Package textdb reads the operator's pipe-delimited text tables and
// hands out typed records. It is the source of truth the vector cache
// is rebuilt from. Rows are validated here, at the boundary, so the
// indexers never see malformed data.
package textdb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sportzvillage/svassist/internal/logging"
	"github.com/sportzvillage/svassist/internal/records"
)

// DB reads tables from a directory of {table}.txt files. Each file has
// a pipe-delimited header line followed by one row per line.
type DB struct {
	dir string
	log *logging.Logger
}

func Open(dir string, log *logging.Logger) *DB {
	return &DB{dir: dir, log: log}
}

// readTable parses a table file into raw column maps. Rows whose column
// count does not match the header are skipped with a warning. A missing
// table file is an empty table, not an error.
func (d *DB) readTable(name string) ([]map[string]string, error) {
	path := filepath.Join(d.dir, name+".txt")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			d.log.Warn("table file not found", "table", name, "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("opening table %s: %w", name, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, scanner.Err()
	}
	headers := strings.Split(strings.TrimSpace(scanner.Text()), "|")

	var rows []map[string]string
	line := 1
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		values := strings.Split(text, "|")
		if len(values) != len(headers) {
			d.log.Warn("skipping malformed table row",
				"table", name, "line", line, "columns", len(values), "want", len(headers))
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			row[h] = values[i]
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading table %s: %w", name, err)
	}
	return rows, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func list(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Timetables returns every timetable row in the store.
func (d *DB) Timetables() ([]records.TimetableEntry, error) {
	rows, err := d.readTable("timetables")
	if err != nil {
		return nil, err
	}
	entries := make([]records.TimetableEntry, 0, len(rows))
	for _, row := range rows {
		e := records.TimetableEntry{
			SchoolID:     row["school_id"],
			Class:        row["class"],
			Section:      row["section"],
			PeriodNumber: atoi(row["period_number"]),
			TimeSlot:     row["time_slot"],
			Subject:      row["subject"],
			IsPEPeriod:   strings.EqualFold(row["is_pe_period"], "true"),
		}
		if err := e.Validate(); err != nil {
			d.log.Warn("skipping invalid timetable row", "err", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetTimetable filters timetable rows by school and optional class and
// section.
func (d *DB) GetTimetable(schoolID, class, section string) ([]records.TimetableEntry, error) {
	entries, err := d.Timetables()
	if err != nil {
		return nil, err
	}
	var out []records.TimetableEntry
	for _, e := range entries {
		if e.SchoolID != schoolID {
			continue
		}
		if class != "" && e.Class != class {
			continue
		}
		if section != "" && e.Section != section {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Lessons returns every lesson in the store.
func (d *DB) Lessons() ([]records.Lesson, error) {
	rows, err := d.readTable("lessons")
	if err != nil {
		return nil, err
	}
	lessons := make([]records.Lesson, 0, len(rows))
	for _, row := range rows {
		l := records.Lesson{
			LessonID:      row["lesson_id"],
			Name:          row["name"],
			Description:   row["description"],
			Duration:      atoi(row["duration"]),
			RequiredProps: list(row["required_props"]),
		}
		if err := l.Validate(); err != nil {
			d.log.Warn("skipping invalid lesson row", "err", err)
			continue
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}

// LessonsForPlan returns the lessons referenced by the given plan, in
// no particular order. An unknown plan id yields an empty slice.
func (d *DB) LessonsForPlan(planID string) ([]records.Lesson, error) {
	plans, err := d.LessonPlans()
	if err != nil {
		return nil, err
	}
	var want []string
	for _, p := range plans {
		if p.LessonPlanID == planID {
			want = p.Lessons
			break
		}
	}
	if len(want) == 0 {
		return nil, nil
	}

	lessons, err := d.Lessons()
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(want))
	for _, id := range want {
		wanted[id] = true
	}
	var out []records.Lesson
	for _, l := range lessons {
		if wanted[l.LessonID] {
			out = append(out, l)
		}
	}
	return out, nil
}

// LessonPlans returns every lesson plan in the store.
func (d *DB) LessonPlans() ([]records.LessonPlan, error) {
	rows, err := d.readTable("lesson_plans")
	if err != nil {
		return nil, err
	}
	plans := make([]records.LessonPlan, 0, len(rows))
	for _, row := range rows {
		p := records.LessonPlan{
			LessonPlanID: row["lesson_plan_id"],
			SchoolID:     row["school_id"],
			Session:      row["session"],
			Lessons:      list(row["lessons"]),
		}
		if err := p.Validate(); err != nil {
			d.log.Warn("skipping invalid lesson plan row", "err", err)
			continue
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// LessonPlansForSchool filters lesson plans by school.
func (d *DB) LessonPlansForSchool(schoolID string) ([]records.LessonPlan, error) {
	plans, err := d.LessonPlans()
	if err != nil {
		return nil, err
	}
	var out []records.LessonPlan
	for _, p := range plans {
		if p.SchoolID == schoolID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Props returns every prop row in the store.
func (d *DB) Props() ([]records.Prop, error) {
	rows, err := d.readTable("props")
	if err != nil {
		return nil, err
	}
	props := make([]records.Prop, 0, len(rows))
	for _, row := range rows {
		p := records.Prop{
			PropID:    row["prop_id"],
			Type:      row["type"],
			SchoolID:  row["school_id"],
			Quantity:  atoi(row["quantity"]),
			Available: atoi(row["available"]),
			Status:    row["status"],
		}
		if err := p.Validate(); err != nil {
			d.log.Warn("skipping invalid prop row", "err", err)
			continue
		}
		props = append(props, p)
	}
	return props, nil
}

// PropsForSchool filters props by school; an empty school id returns
// everything.
func (d *DB) PropsForSchool(schoolID string) ([]records.Prop, error) {
	props, err := d.Props()
	if err != nil {
		return nil, err
	}
	if schoolID == "" {
		return props, nil
	}
	var out []records.Prop
	for _, p := range props {
		if p.SchoolID == schoolID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Users returns every user row in the store.
func (d *DB) Users() ([]records.User, error) {
	rows, err := d.readTable("users")
	if err != nil {
		return nil, err
	}
	users := make([]records.User, 0, len(rows))
	for _, row := range rows {
		u := records.User{
			UserID:    row["user_id"],
			Name:      row["name"],
			Role:      records.Role(row["role"]),
			SchoolID:  row["school_id"],
			ReportsTo: row["reports_to"],
		}
		if err := u.Validate(); err != nil {
			d.log.Warn("skipping invalid user row", "err", err)
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// GetUser returns the user with the given id, or nil.
func (d *DB) GetUser(userID string) (*records.User, error) {
	users, err := d.Users()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].UserID == userID {
			return &users[i], nil
		}
	}
	return nil, nil
}

// ResidentsUnder returns the users reporting to the given manager.
func (d *DB) ResidentsUnder(managerID string) ([]records.User, error) {
	users, err := d.Users()
	if err != nil {
		return nil, err
	}
	var out []records.User
	for _, u := range users {
		if u.ReportsTo == managerID {
			out = append(out, u)
		}
	}
	return out, nil
}
