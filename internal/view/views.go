package view

import (
	"context"
	"fmt"

	"github.com/adisetya/sheethub/internal/apperrors"
	"github.com/adisetya/sheethub/internal/domain"
)

// SaveView snapshots the active filter/sort/compact state under name.
// An existing view with the same name is replaced and moves to the end.
// The store is written before the in-memory list changes.
func (e *Engine) SaveView(ctx context.Context, name string) (domain.SavedView, error) {
	if name == "" {
		return domain.SavedView{}, fmt.Errorf("%w: missing required field %q", apperrors.ErrValidation, "name")
	}

	e.mu.Lock()
	v := domain.SavedView{
		Name:    name,
		Filters: e.filters,
		Sort:    e.sortKey,
		Compact: e.compact,
	}
	views := make([]domain.SavedView, 0, len(e.views)+1)
	for _, existing := range e.views {
		if existing.Name != name {
			views = append(views, existing)
		}
	}
	views = append(views, v)
	e.mu.Unlock()

	if err := e.persistViews(ctx, views); err != nil {
		return domain.SavedView{}, err
	}

	e.mu.Lock()
	e.views = views
	e.mu.Unlock()
	return v, nil
}

// ApplyView restores a saved view, resets the page and recomputes.
func (e *Engine) ApplyView(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applyViewLocked(name)
}

// ApplyViewModel restores a saved view and returns the resulting model and
// canonical query under one lock acquisition.
func (e *Engine) ApplyViewModel(name string) (Model, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.applyViewLocked(name); err != nil {
		return Model{}, "", err
	}
	return e.snapshotLocked(), e.encodeQueryLocked(), nil
}

func (e *Engine) applyViewLocked(name string) error {
	for _, v := range e.views {
		if v.Name == name {
			e.filters = v.Filters
			e.sortKey = v.Sort
			e.compact = v.Compact
			e.page = 1
			e.recomputeLocked()
			return nil
		}
	}
	return fmt.Errorf("%w: view %q", apperrors.ErrNotFound, name)
}

// DeleteView removes a saved view by name. The store is written before
// the in-memory list changes.
func (e *Engine) DeleteView(ctx context.Context, name string) error {
	e.mu.Lock()
	kept := make([]domain.SavedView, 0, len(e.views))
	found := false
	for _, v := range e.views {
		if v.Name == name {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	e.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: view %q", apperrors.ErrNotFound, name)
	}
	if err := e.persistViews(ctx, kept); err != nil {
		return err
	}

	e.mu.Lock()
	e.views = kept
	e.mu.Unlock()
	return nil
}

// ListViews returns all saved views. Order is insertion order, except that
// a replaced view moves to the end.
func (e *Engine) ListViews() []domain.SavedView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.SavedView(nil), e.views...)
}

func (e *Engine) persistViews(ctx context.Context, views []domain.SavedView) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.SaveSavedViews(ctx, views); err != nil {
		return fmt.Errorf("persist saved views: %w", err)
	}
	return nil
}
