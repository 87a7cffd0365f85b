package domain

import "strings"

// DefaultCategory is the sentinel category assigned to rows without one.
const DefaultCategory = "General"

// Row represents one catalogued link item.
type Row struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier within the collection.
	// Remote rows carry their own; local additions get "local_<unixms>",
	// imported rows get "imp_<uuid>".
	ID string `json:"id" yaml:"id"`

	// Title is the display name. Required.
	Title string `json:"title" yaml:"title"`

	// Link is the target URL. Required, treated as opaque.
	Link string `json:"link" yaml:"link"`

	// ─────────────────────────────
	// Classification
	// ─────────────────────────────

	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Owner    string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// UpdatedAt is an ISO-8601 date string. Optional; unparseable values
	// sort as epoch zero.
	UpdatedAt string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// CategoryOrDefault returns the row category, falling back to the sentinel.
func (r Row) CategoryOrDefault() string {
	if strings.TrimSpace(r.Category) == "" {
		return DefaultCategory
	}
	return r.Category
}

// Validate checks required fields.
func (r Row) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return missingField("title")
	}
	if strings.TrimSpace(r.Link) == "" {
		return missingField("link")
	}
	return nil
}

// Normalize lowercases and trims a string for case-insensitive comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
