// Package school manages school records and their display content fields.
// Each school owns a fixed set of content fields (newsletter, announcements,
// menu, slideshow, ...) edited by its director through the portal and
// rendered by the TV display. The field set is a hard allowlist: the API
// never reads or writes keys outside it.
package school

import (
	"encoding/json"
	"time"
)

// School represents a single childcare center. Director login resolves a
// school by director email; the TV display resolves one by slug.
type School struct {
	ID            int64     `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	DirectorEmail string    `json:"-"` // Never expose in JSON responses.
	Timezone      string    `json:"timezone"`
	Latitude      *float64  `json:"-"`
	Longitude     *float64  `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// lastUpdatedKey is the reserved field stamped on every successful patch.
// It is not part of the allowlist and cannot be written directly.
const lastUpdatedKey = "last_updated"

// contentFields is the full allowlist of per-school content fields, in the
// order they are returned. This is a security boundary, not an incidental
// filter: patch requests may only touch these keys.
var contentFields = []string{
	"newsletter",
	"eom",
	"announcements",
	"today",
	"qr",
	"menu",
	"slideshow",
	"youtube",
	"slideshow_title",
	"welcome_override",
	"care_projects",
	"celebrations",
	"music_url",
}

// complexFields are the structured fields stored as whole JSON documents.
// A patch replaces them wholesale -- no deep merge. Everything else on the
// allowlist is a scalar HTML string, sanitized before storage.
var complexFields = map[string]bool{
	"newsletter":    true,
	"eom":           true,
	"announcements": true,
	"today":         true,
	"qr":            true,
	"slideshow":     true,
	"celebrations":  true,
}

// ContentFields returns the field allowlist. Shared with the display
// feature so the TV endpoint enumerates the exact same keys.
func ContentFields() []string {
	return contentFields
}

// IsComplexField reports whether a field holds a structured JSON document.
func IsComplexField(key string) bool {
	return complexFields[key]
}

// Content is the assembled content response for a director or TV display.
// Complex fields decode to their stored JSON; scalar fields are strings.
// Missing fields default to empty ("" for scalars, null for documents).
type Content struct {
	ID      int64          `json:"id"`
	Title   string         `json:"title"`
	Slug    string         `json:"slug"`
	Content map[string]any `json:"content"`
}

// PatchRequest is the partial field map submitted by the director portal.
// Keys outside the allowlist are ignored.
type PatchRequest map[string]json.RawMessage
