package view

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adisetya/sheethub/internal/domain"
)

// PageSize is the fixed number of rows per page.
const PageSize = 18

// Store is the narrow key/value persistence contract the engine writes
// user-added rows and saved views through.
type Store interface {
	LocalRows(ctx context.Context) ([]domain.Row, error)
	SaveLocalRows(ctx context.Context, rows []domain.Row) error
	SavedViews(ctx context.Context) ([]domain.SavedView, error)
	SaveSavedViews(ctx context.Context, views []domain.SavedView) error
}

// Pager describes the current page window over the filtered set.
type Pager struct {
	Page      int `json:"page"`
	PageCount int `json:"page_count"`
	PageSize  int `json:"page_size"`
	Total     int `json:"total"`
}

// Model is the recomputed projection a rendering layer consumes.
type Model struct {
	Visible  []domain.Row       `json:"visible"`
	Facets   domain.Facets      `json:"facets"`
	Pager    Pager              `json:"pager"`
	Filters  domain.FilterState `json:"filters"`
	Sort     domain.SortKey     `json:"sort"`
	Embed    bool               `json:"embed"`
	Compact  bool               `json:"compact"`
	Selected int                `json:"selected"`
}

// Engine owns the canonical row set, the current filter/sort/page state and
// the saved-view list. All mutation goes through its methods; it never
// touches a rendering surface.
type Engine struct {
	mu    sync.Mutex
	store Store // nil disables persistence

	rows     []domain.Row // remote ∪ local, id-filled
	local    []domain.Row // user-added rows, mirrored to the store
	filtered []domain.Row
	facets   domain.Facets

	views []domain.SavedView

	filters  domain.FilterState
	sortKey  domain.SortKey
	page     int
	embed    bool
	compact  bool
	selected map[string]struct{}

	now func() time.Time
}

// NewEngine creates an engine with default state. store may be nil.
func NewEngine(store Store) *Engine {
	return &Engine{
		store:    store,
		sortKey:  domain.SortUpdatedDesc,
		page:     1,
		embed:    true,
		selected: make(map[string]struct{}),
		now:      time.Now,
	}
}

// Restore loads persisted local rows and saved views from the store.
// Called once at startup, before the first LoadRows.
func (e *Engine) Restore(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	local, err := e.store.LocalRows(ctx)
	if err != nil {
		return fmt.Errorf("restore local rows: %w", err)
	}
	views, err := e.store.SavedViews(ctx)
	if err != nil {
		return fmt.Errorf("restore saved views: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.local = local
	e.views = views
	return nil
}

// LoadRows replaces the base row set with the union of the remote list and
// the persisted local additions. Rows lacking an id get a positional one.
// On id collision the remote row wins and the local duplicate is dropped.
func (e *Engine) LoadRows(remote []domain.Row) {
	e.mu.Lock()
	defer e.mu.Unlock()

	merged := make([]domain.Row, 0, len(remote)+len(e.local))
	seen := make(map[string]struct{}, len(remote)+len(e.local))

	for i, r := range remote {
		if r.ID == "" {
			r.ID = fmt.Sprintf("row%d", i)
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range e.local {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}

	e.rows = merged
	e.facets = domain.ComputeFacets(e.rows)
	e.recomputeLocked()
}

// AddRow validates and appends a user-entered row to the local persisted
// list and the in-memory set. A missing id gets "local_<unixms>". The
// store is written first; memory only changes once the store accepted the
// new list, so a persist failure leaves the engine untouched.
func (e *Engine) AddRow(ctx context.Context, row domain.Row) (domain.Row, error) {
	if err := row.Validate(); err != nil {
		return domain.Row{}, err
	}

	e.mu.Lock()
	if row.ID == "" {
		row.ID = fmt.Sprintf("local_%d", e.now().UnixMilli())
	}
	if row.UpdatedAt == "" {
		row.UpdatedAt = e.now().UTC().Format(time.RFC3339)
	}
	local := append(append([]domain.Row(nil), e.local...), row)
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.SaveLocalRows(ctx, local); err != nil {
			return domain.Row{}, fmt.Errorf("persist local rows: %w", err)
		}
	}

	e.mu.Lock()
	e.local = append(e.local, row)
	e.rows = append(e.rows, row)
	e.facets = domain.ComputeFacets(e.rows)
	e.recomputeLocked()
	e.mu.Unlock()
	return row, nil
}

// SetFilter merges the non-empty fields of partial into the current
// filters, resets the page and recomputes the projection.
func (e *Engine) SetFilter(partial domain.FilterState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = e.filters.Merge(partial)
	e.page = 1
	e.recomputeLocked()
}

// SetFilters replaces the filter state wholesale (used for clears and
// saved-view application).
func (e *Engine) SetFilters(f domain.FilterState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = f
	e.page = 1
	e.recomputeLocked()
}

// ClearFilters drops every criterion and resets the page.
func (e *Engine) ClearFilters() {
	e.SetFilters(domain.FilterState{})
}

// ToggleTag sets the tag filter, or clears it when the same tag is already
// active (toggle-off, not set-again).
func (e *Engine) ToggleTag(tag string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if domain.Normalize(e.filters.Tag) == domain.Normalize(tag) {
		e.filters.Tag = ""
	} else {
		e.filters.Tag = tag
	}
	e.page = 1
	e.recomputeLocked()
}

// SetSort switches the active ordering, resets the page and recomputes.
func (e *Engine) SetSort(key domain.SortKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sortKey = key
	e.page = 1
	e.recomputeLocked()
}

// SetPage moves to page n, clamped to [1, pageCount]. The filtered set is
// not recomputed and the selection survives.
func (e *Engine) SetPage(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.page = clampPage(n, len(e.filtered))
}

// SetEmbed toggles the embed-preview display flag.
func (e *Engine) SetEmbed(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.embed = v
}

// SetCompact toggles the compact-card display flag.
func (e *Engine) SetCompact(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compact = v
}

// Select adds a row id to the multi-select set. Unknown ids are ignored at
// consume time, not here.
func (e *Engine) Select(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected[id] = struct{}{}
}

// Deselect removes a row id from the multi-select set.
func (e *Engine) Deselect(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.selected, id)
}

// SelectedLinks returns the links of the selected rows in filtered order.
// Feeds both "open all" (one navigation target per link) and "copy all".
func (e *Engine) SelectedLinks() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	links := make([]string, 0, len(e.selected))
	for _, r := range e.filtered {
		if _, ok := e.selected[r.ID]; ok {
			links = append(links, r.Link)
		}
	}
	return links
}

// CopySelectedLinks returns the selected links joined by newlines, the
// clipboard payload for "copy all".
func (e *Engine) CopySelectedLinks() string {
	return strings.Join(e.SelectedLinks(), "\n")
}

// Rows returns a copy of the full base set.
func (e *Engine) Rows() []domain.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Row(nil), e.rows...)
}

// Filtered returns a copy of the current filtered, sorted set.
func (e *Engine) Filtered() []domain.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Row(nil), e.filtered...)
}

// Snapshot computes the view model for the current state.
func (e *Engine) Snapshot() Model {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Model {
	total := len(e.filtered)
	pageCount := pageCount(total)
	page := clampPage(e.page, total)

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Model{
		Visible:  append([]domain.Row(nil), e.filtered[start:end]...),
		Facets:   e.facets,
		Pager:    Pager{Page: page, PageCount: pageCount, PageSize: PageSize, Total: total},
		Filters:  e.filters,
		Sort:     e.sortKey,
		Embed:    e.embed,
		Compact:  e.compact,
		Selected: len(e.selected),
	}
}

// recomputeLocked rebuilds the filtered projection and drops the selection.
// Pure over current state; callers hold the lock.
func (e *Engine) recomputeLocked() {
	filtered := domain.FilterRows(e.rows, e.filters)
	domain.SortRows(filtered, e.sortKey)
	e.filtered = filtered
	e.page = clampPage(e.page, len(filtered))
	e.selected = make(map[string]struct{})
}

func pageCount(total int) int {
	n := (total + PageSize - 1) / PageSize
	if n < 1 {
		n = 1
	}
	return n
}

func clampPage(n, total int) int {
	if n < 1 {
		return 1
	}
	if max := pageCount(total); n > max {
		return max
	}
	return n
}
