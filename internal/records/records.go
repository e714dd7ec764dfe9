// Package records defines the typed rows that flow between the tabular
// store, the indexers and the vector cache. Rows are validated at the
// tabular-store boundary so everything downstream consumes well-formed
// values.
package records

import "fmt"

// Role identifies one of the operator's user roles.
type Role string

const (
	RoleHeadOffice      Role = "HO"
	RoleRegionalManager Role = "RM"
	RoleDeliveryManager Role = "DM"
	RoleDeliveryLead    Role = "DL"
	RoleResident        Role = "R"
	RolePrincipal       Role = "PRINCIPAL"
)

// TimetableEntry is one period of one class section's school timetable.
type TimetableEntry struct {
	SchoolID     string
	Class        string
	Section      string
	PeriodNumber int
	TimeSlot     string
	Subject      string
	IsPEPeriod   bool
}

// Validate checks the natural key fields used to build the entry's
// deterministic vector-store id.
func (e TimetableEntry) Validate() error {
	if e.SchoolID == "" || e.Class == "" || e.Section == "" {
		return fmt.Errorf("timetable entry missing natural key (school=%q class=%q section=%q)", e.SchoolID, e.Class, e.Section)
	}
	if e.PeriodNumber <= 0 {
		return fmt.Errorf("timetable entry %s/%s/%s: invalid period number %d", e.SchoolID, e.Class, e.Section, e.PeriodNumber)
	}
	return nil
}

// Lesson is a single deliverable PE lesson.
type Lesson struct {
	LessonID      string
	Name          string
	Description   string
	Duration      int // minutes
	RequiredProps []string
}

func (l Lesson) Validate() error {
	if l.LessonID == "" {
		return fmt.Errorf("lesson %q missing lesson_id", l.Name)
	}
	return nil
}

// LessonPlan groups lessons into a school's session plan.
type LessonPlan struct {
	LessonPlanID string
	SchoolID     string
	Session      string
	Lessons      []string // lesson ids
}

func (p LessonPlan) Validate() error {
	if p.LessonPlanID == "" {
		return fmt.Errorf("lesson plan for school %q missing lesson_plan_id", p.SchoolID)
	}
	return nil
}

// Prop is a sports equipment inventory row for one school.
type Prop struct {
	PropID    string
	Type      string
	SchoolID  string
	Quantity  int
	Available int
	Status    string
}

func (p Prop) Validate() error {
	if p.PropID == "" {
		return fmt.Errorf("prop of type %q missing prop_id", p.Type)
	}
	if p.Available > p.Quantity {
		return fmt.Errorf("prop %s: available %d exceeds quantity %d", p.PropID, p.Available, p.Quantity)
	}
	return nil
}

// Utilization returns the in-use share of the prop's stock in percent.
func (p Prop) Utilization() float64 {
	if p.Quantity <= 0 {
		return 0
	}
	return float64(p.Quantity-p.Available) / float64(p.Quantity) * 100
}

// User is an operator-side account (resident, manager, head office...).
type User struct {
	UserID    string
	Name      string
	Role      Role
	SchoolID  string
	ReportsTo string
}

func (u User) Validate() error {
	if u.UserID == "" {
		return fmt.Errorf("user %q missing user_id", u.Name)
	}
	return nil
}

// UserContext is the cached per-user context snapshot, overwritten in
// the vector store on every cache event.
type UserContext struct {
	UserID         string
	Role           Role
	SchoolID       string
	RecentActivity map[string]any
	Preferences    map[string]any
}

func (c UserContext) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("user context missing user_id")
	}
	return nil
}
