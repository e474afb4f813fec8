// Package content manages the family-facing dashboard entries: the
// announcements, lesson plans, meal plans, resources, forms, and events
// administrators publish for each school year. Families read them through
// the dashboard endpoint; creating and editing them is admin-only.
package content

import "time"

// Type classifies a dashboard entry. The set is fixed: the API rejects
// anything else on create.
type Type string

const (
	TypeAnnouncement Type = "announcement"
	TypeLessonPlan   Type = "lesson_plan"
	TypeMealPlan     Type = "meal_plan"
	TypeResource     Type = "resource"
	TypeForm         Type = "form"
	TypeEvent        Type = "event"
)

// validTypes guards the create/update paths.
var validTypes = map[Type]bool{
	TypeAnnouncement: true,
	TypeLessonPlan:   true,
	TypeMealPlan:     true,
	TypeResource:     true,
	TypeForm:         true,
	TypeEvent:        true,
}

// IsValidType reports whether t is one of the known entry types.
func IsValidType(t Type) bool {
	return validTypes[t]
}

// Entry is a single dashboard content item.
type Entry struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Title      string    `json:"title"`
	Body       string    `json:"content"`
	PDFURL     string    `json:"pdf_url,omitempty"`
	SchoolYear string    `json:"school_year"` // e.g. "2026-2027"
	TermGroup  string    `json:"group"`       // month, quarter, or category label
	SchoolName string    `json:"school"`
	Priority   int       `json:"priority"`
	EventDate  string    `json:"event_date,omitempty"` // YYYY-MM-DD, events only
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Dashboard groups entries by category for a single school year. Every
// category key is always present, even when empty, so clients can rely on
// the shape.
type Dashboard struct {
	Year          string  `json:"year"`
	Announcements []Entry `json:"announcements"`
	LessonPlans   []Entry `json:"lesson_plans"`
	MealPlans     []Entry `json:"meal_plans"`
	Resources     []Entry `json:"resources"`
	Forms         []Entry `json:"forms"`
	Events        []Entry `json:"events"`
}

// YearOption is one selectable school year for the dashboard's year picker.
type YearOption struct {
	Value string `json:"value"` // starting year, e.g. "2026"
	Label string `json:"label"` // full label, e.g. "2026-2027"
}

// --- Request DTOs ---

// CreateRequest is the admin payload for creating an entry.
type CreateRequest struct {
	Type       Type   `json:"type"`
	Title      string `json:"title"`
	Body       string `json:"content"`
	PDFURL     string `json:"pdf_url"`
	SchoolYear string `json:"school_year"`
	TermGroup  string `json:"group"`
	SchoolName string `json:"school"`
	Priority   int    `json:"priority"`
	EventDate  string `json:"event_date"`
}

// UpdateRequest is the admin payload for updating an entry. Zero-valued
// fields are left unchanged, matching how the portal admin UI submits
// only the edited columns.
type UpdateRequest struct {
	Title      string `json:"title"`
	Body       string `json:"content"`
	PDFURL     string `json:"pdf_url"`
	SchoolYear string `json:"school_year"`
	TermGroup  string `json:"group"`
	SchoolName string `json:"school"`
	Priority   *int   `json:"priority"`
	EventDate  string `json:"event_date"`
}
