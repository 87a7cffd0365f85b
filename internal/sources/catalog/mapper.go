package catalog

import (
	"fmt"

	"github.com/adisetya/sheethub/internal/domain"
)

// Mapper converts the catalog file config to domain rows.
type Mapper struct{}

// NewMapper creates a new mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapRows flattens category blocks into rows. Entries without a title or
// link are skipped; ids are left for the engine to fill positionally.
func (m *Mapper) MapRows(config FileConfig) ([]domain.Row, error) {
	rows := make([]domain.Row, 0)

	for _, block := range config {
		for _, entry := range block.Items {
			if entry.Title == "" || entry.Link == "" {
				continue
			}
			rows = append(rows, domain.Row{
				ID:          entry.ID,
				Title:       entry.Title,
				Link:        entry.Link,
				Category:    block.Category,
				Owner:       entry.Owner,
				Tags:        entry.Tags,
				Description: entry.Description,
				UpdatedAt:   entry.UpdatedAt,
			})
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no valid rows found in catalog")
	}
	return rows, nil
}
