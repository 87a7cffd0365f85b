package view

import (
	"net/url"
	"strconv"

	"github.com/adisetya/sheethub/internal/domain"
)

// Query parameter names shared by EncodeQuery and ApplyQuery.
const (
	paramQ        = "q"
	paramCategory = "category"
	paramOwner    = "owner"
	paramTag      = "tag"
	paramSort     = "sort"
	paramPage     = "page"
	paramEmbed    = "embed"
	paramCompact  = "compact"
)

// EncodeQuery serializes the current state into a shareable query string.
// Defaults are omitted consistently so the encoding is a pure function of
// state: empty filters, the default sort, page 1, embed on and compact off
// all produce no parameter.
func (e *Engine) EncodeQuery() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encodeQueryLocked()
}

func (e *Engine) encodeQueryLocked() string {
	p := url.Values{}
	if e.filters.Q != "" {
		p.Set(paramQ, e.filters.Q)
	}
	if e.filters.Category != "" {
		p.Set(paramCategory, e.filters.Category)
	}
	if e.filters.Owner != "" {
		p.Set(paramOwner, e.filters.Owner)
	}
	if e.filters.Tag != "" {
		p.Set(paramTag, e.filters.Tag)
	}
	if e.sortKey != domain.SortUpdatedDesc {
		p.Set(paramSort, string(e.sortKey))
	}
	if e.page > 1 {
		p.Set(paramPage, strconv.Itoa(e.page))
	}
	if !e.embed {
		p.Set(paramEmbed, "0")
	}
	if e.compact {
		p.Set(paramCompact, "1")
	}
	return p.Encode()
}

// ApplyQuery seeds state from parsed query parameters, the inverse of
// EncodeQuery. Absent parameters mean defaults. The projection is
// recomputed once at the end.
func (e *Engine) ApplyQuery(p url.Values) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyQueryLocked(p)
}

// QueryModel applies the query parameters and returns the resulting model
// together with its canonical encoding under one lock acquisition, so
// concurrent requests never observe each other's state.
func (e *Engine) QueryModel(p url.Values) (Model, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyQueryLocked(p)
	return e.snapshotLocked(), e.encodeQueryLocked()
}

func (e *Engine) applyQueryLocked(p url.Values) {
	e.filters = domain.FilterState{
		Q:        p.Get(paramQ),
		Category: p.Get(paramCategory),
		Owner:    p.Get(paramOwner),
		Tag:      p.Get(paramTag),
	}
	e.sortKey = domain.ParseSortKey(p.Get(paramSort))

	page := 1
	if raw := p.Get(paramPage); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
		}
	}
	e.page = page

	e.embed = p.Get(paramEmbed) != "0"
	e.compact = p.Get(paramCompact) == "1"

	filtered := domain.FilterRows(e.rows, e.filters)
	domain.SortRows(filtered, e.sortKey)
	e.filtered = filtered
	e.page = clampPage(e.page, len(filtered))
	e.selected = make(map[string]struct{})
}
