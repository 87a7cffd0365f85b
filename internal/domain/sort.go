package domain

import (
	"sort"
	"strings"
	"time"
)

// SortKey identifies the active ordering of the filtered row list.
type SortKey string

const (
	SortTitleAsc    SortKey = "title_asc"
	SortTitleDesc   SortKey = "title_desc"
	SortUpdatedDesc SortKey = "updated_desc" // default
)

// ParseSortKey maps a raw query value to a SortKey, falling back to the default.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortTitleAsc, SortTitleDesc, SortUpdatedDesc:
		return SortKey(s)
	default:
		return SortUpdatedDesc
	}
}

// SortRows orders rows in place by the given key. The sort is stable so
// ties keep their relative input order.
func SortRows(rows []Row, key SortKey) {
	switch key {
	case SortTitleAsc:
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].Title) < strings.ToLower(rows[j].Title)
		})
	case SortTitleDesc:
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].Title) > strings.ToLower(rows[j].Title)
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			return ParseRowTime(rows[i].UpdatedAt).After(ParseRowTime(rows[j].UpdatedAt))
		})
	}
}

// ParseRowTime parses an updated_at value. Missing or unparseable dates
// return the zero time so they sort last under updated_desc.
func ParseRowTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
