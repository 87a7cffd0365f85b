package domain

import (
	"fmt"
	"strings"

	"github.com/adisetya/sheethub/internal/apperrors"
)

// FilterState holds the current query criteria. An empty field means
// unconstrained; non-empty fields are exact matches (case-insensitive).
type FilterState struct {
	Q        string `json:"q,omitempty"`
	Category string `json:"category,omitempty"`
	Owner    string `json:"owner,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// IsZero reports whether no criterion is set.
func (f FilterState) IsZero() bool {
	return f.Q == "" && f.Category == "" && f.Owner == "" && f.Tag == ""
}

// Merge overlays the non-empty fields of other onto f and returns the result.
// An explicit clear is expressed by applying a full FilterState instead.
func (f FilterState) Merge(other FilterState) FilterState {
	if other.Q != "" {
		f.Q = other.Q
	}
	if other.Category != "" {
		f.Category = other.Category
	}
	if other.Owner != "" {
		f.Owner = other.Owner
	}
	if other.Tag != "" {
		f.Tag = other.Tag
	}
	return f
}

// Matches reports whether the row passes all four filter clauses:
// free-text substring over the concatenated searchable fields, then exact
// (case-insensitive) category, owner and tag matches.
func (f FilterState) Matches(r Row) bool {
	if q := Normalize(f.Q); q != "" {
		blob := Normalize(strings.Join([]string{
			r.Title,
			r.Description,
			r.Category,
			r.Owner,
			strings.Join(r.Tags, " "),
			r.Link,
		}, " "))
		if !strings.Contains(blob, q) {
			return false
		}
	}

	if c := Normalize(f.Category); c != "" && Normalize(r.Category) != c {
		return false
	}

	if o := Normalize(f.Owner); o != "" && Normalize(r.Owner) != o {
		return false
	}

	if t := Normalize(f.Tag); t != "" {
		found := false
		for _, tag := range r.Tags {
			if Normalize(tag) == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// FilterRows returns the rows passing the filter, preserving input order.
func FilterRows(rows []Row, f FilterState) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing required field %q", apperrors.ErrValidation, name)
}
