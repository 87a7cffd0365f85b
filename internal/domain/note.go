package domain

import "strings"

// Note is one record in the spreadsheet-backed notes store.
type Note struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	Tags        []string `json:"tags,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
	IsArchived  bool     `json:"isArchived"`
}

// NoteInput carries user-supplied note fields for create/update. Tags and
// attachments travel semicolon-delimited, matching the spreadsheet wire form.
type NoteInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Tags        string `json:"tags,omitempty"`
	Attachments string `json:"attachments,omitempty"`
}

// Validate checks the required note fields.
func (in NoteInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return missingField("title")
	}
	if strings.TrimSpace(in.Content) == "" {
		return missingField("content")
	}
	return nil
}

// SplitList splits a semicolon-delimited wire value into trimmed parts.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
