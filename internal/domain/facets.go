package domain

import "sort"

// CategoryCount is one selectable category chip with its row count.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Facets summarizes the distinct filterable values across the FULL row set.
// They are derived, never stored, and recomputed whenever the base set
// changes, independent of active filters, so a filtered user still sees
// what other categories and tags exist.
type Facets struct {
	Owners     []string        `json:"owners"`
	Categories []CategoryCount `json:"categories"`
	Tags       []string        `json:"tags"`
	Total      int             `json:"total"`
}

// ComputeFacets derives the facet summary from the base row set.
func ComputeFacets(rows []Row) Facets {
	ownerSet := make(map[string]struct{})
	tagSet := make(map[string]struct{})
	catCounts := make(map[string]int)

	for _, r := range rows {
		if r.Owner != "" {
			ownerSet[r.Owner] = struct{}{}
		}
		for _, t := range r.Tags {
			if t != "" {
				tagSet[t] = struct{}{}
			}
		}
		catCounts[r.CategoryOrDefault()]++
	}

	f := Facets{
		Owners: make([]string, 0, len(ownerSet)),
		Tags:   make([]string, 0, len(tagSet)),
		Total:  len(rows),
	}
	for o := range ownerSet {
		f.Owners = append(f.Owners, o)
	}
	for t := range tagSet {
		f.Tags = append(f.Tags, t)
	}
	sort.Strings(f.Owners)
	sort.Strings(f.Tags)

	f.Categories = make([]CategoryCount, 0, len(catCounts))
	for name, n := range catCounts {
		f.Categories = append(f.Categories, CategoryCount{Name: name, Count: n})
	}
	sort.Slice(f.Categories, func(i, j int) bool {
		return f.Categories[i].Name < f.Categories[j].Name
	})

	return f
}
