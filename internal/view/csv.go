package view

import (
	"fmt"
	"strings"

	"github.com/adisetya/sheethub/internal/apperrors"
	"github.com/adisetya/sheethub/internal/domain"
	"github.com/google/uuid"
)

// Delimited-text record layout, fixed field order.
// tags are pipe-delimited inside their field.
var csvHeader = []string{"title", "link", "category", "owner", "tags", "description", "updated_at"}

// ParseCSV decodes delimited-text records into rows. Quote handling: a
// double quote toggles quoted mode, commas inside quoted mode are literal,
// and a doubled quote inside a quoted field decodes to one literal quote.
// A line with the canonical header is skipped. Rows missing required
// fields fail the whole import; nothing is partially applied.
func ParseCSV(text string) ([]domain.Row, error) {
	lines := splitLines(text)
	rows := make([]domain.Row, 0, len(lines))

	for n, line := range lines {
		fields, err := splitCSVLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrImportParse, n+1, err)
		}
		if isHeaderLine(fields) {
			continue
		}
		// Pad to the full layout so trailing empty fields may be omitted.
		for len(fields) < len(csvHeader) {
			fields = append(fields, "")
		}
		if len(fields) > len(csvHeader) {
			return nil, fmt.Errorf("%w: line %d: %d fields, want at most %d",
				apperrors.ErrImportParse, n+1, len(fields), len(csvHeader))
		}

		row := domain.Row{
			ID:          importID(),
			Title:       fields[0],
			Link:        fields[1],
			Category:    fields[2],
			Owner:       fields[3],
			Tags:        splitTags(fields[4]),
			Description: fields[5],
			UpdatedAt:   fields[6],
		}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrImportParse, n+1, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// EncodeCSV serializes rows in the fixed field order. Every field is
// quoted and inner quotes are doubled, so EncodeCSV output round-trips
// through ParseCSV.
func EncodeCSV(rows []domain.Row) string {
	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))
	for _, r := range rows {
		b.WriteByte('\n')
		fields := []string{
			r.Title, r.Link, r.Category, r.Owner,
			strings.Join(r.Tags, "|"), r.Description, r.UpdatedAt,
		}
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(f, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String()
}

func splitCSVLine(line string) ([]string, error) {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote")
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields, nil
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func isHeaderLine(fields []string) bool {
	if len(fields) != len(csvHeader) {
		return false
	}
	for i, f := range fields {
		if !strings.EqualFold(strings.TrimSpace(f), csvHeader[i]) {
			return false
		}
	}
	return true
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func importID() string {
	return "imp_" + uuid.NewString()
}
