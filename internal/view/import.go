package view

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adisetya/sheethub/internal/apperrors"
	"github.com/adisetya/sheethub/internal/domain"
)

// Document is the structured import/export envelope, matching the remote
// catalog document shape.
type Document struct {
	Items []domain.Row `json:"items"`
}

// ParseJSON decodes a structured import payload. Both the enveloped form
// {"items":[...]} and a bare array are accepted. Rows missing an id get a
// generated one; rows missing required fields fail the whole import.
func ParseJSON(data []byte) ([]domain.Row, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		var bare []domain.Row
		if err2 := json.Unmarshal(data, &bare); err2 != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrImportParse, err)
		}
		doc.Items = bare
	}

	for i := range doc.Items {
		if doc.Items[i].ID == "" {
			doc.Items[i].ID = importID()
		}
		if err := doc.Items[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", apperrors.ErrImportParse, i, err)
		}
	}
	return doc.Items, nil
}

// Import appends parsed rows to the local persisted list and the in-memory
// set, then recomputes facets and the projection. All-or-nothing: the
// caller parses first, so a malformed file never partially applies, and
// the store is written before memory so a persist failure applies nothing.
func (e *Engine) Import(ctx context.Context, rows []domain.Row) error {
	e.mu.Lock()
	local := append(append([]domain.Row(nil), e.local...), rows...)
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.SaveLocalRows(ctx, local); err != nil {
			return fmt.Errorf("persist imported rows: %w", err)
		}
	}

	e.mu.Lock()
	e.local = append(e.local, rows...)
	e.rows = append(e.rows, rows...)
	e.facets = domain.ComputeFacets(e.rows)
	e.recomputeLocked()
	e.mu.Unlock()
	return nil
}

// ExportJSON serializes the currently filtered set, not the full base set.
func (e *Engine) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(Document{Items: e.Filtered()}, "", "  ")
}

// ExportCSV serializes the currently filtered set as delimited text.
func (e *Engine) ExportCSV() string {
	return EncodeCSV(e.Filtered())
}
