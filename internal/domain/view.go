package domain

// SavedView is a named snapshot of filter, sort and compact-display state.
// Views are keyed by name; saving under an existing name replaces the view
// and moves it to the end of the list.
type SavedView struct {
	Name    string      `json:"name"`
	Filters FilterState `json:"filters"`
	Sort    SortKey     `json:"sort"`
	Compact bool        `json:"compact"`
}
