package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/adisetya/sheethub/internal/apperrors"
	"github.com/adisetya/sheethub/internal/domain"
	"github.com/adisetya/sheethub/internal/logger"
	"github.com/adisetya/sheethub/internal/utils"
)

// Client proxies note CRUD to the spreadsheet-backed remote endpoint.
// The remote speaks a single-URL protocol: GET lists everything, POST
// carries an {action, id, data} envelope for mutations. A fetched copy is
// cached in memory so Get by id works without a second round trip.
type Client struct {
	endpoint string
	httpc    *http.Client
	logger   logger.Logger
	now      func() time.Time

	mu    sync.Mutex
	cache []domain.Note
}

// NewClient creates a notes client. An empty endpoint switches the client
// to a sample-data mode used for development.
func NewClient(endpoint string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: timeout},
		logger:   log,
		now:      time.Now,
	}
}

// envelope is the mutation request body for the remote endpoint.
type envelope struct {
	Action string       `json:"action"`
	ID     string       `json:"id,omitempty"`
	Data   *domain.Note `json:"data,omitempty"`
}

// remoteResult is the remote response shape.
type remoteResult struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Data    []json.RawMessage `json:"data,omitempty"`
}

// remoteRow tolerates the loose column naming of the spreadsheet source.
type remoteRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Name        string `json:"Name"`
	Content     string `json:"content"`
	Text        string `json:"Text"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	Tags        string `json:"tags"`
	Attachments string `json:"attachments"`
	IsArchived  any    `json:"isArchived"`
}

// List fetches all notes from the remote store. A fetch failure returns
// the empty list with the error wrapped as ErrRemoteFetch so callers can
// degrade instead of propagating.
func (c *Client) List(ctx context.Context) ([]domain.Note, error) {
	if c.endpoint == "" {
		return c.sampleNotes(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRemoteFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRemoteFetch, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", apperrors.ErrRemoteFetch, resp.StatusCode)
	}

	var result remoteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", apperrors.ErrRemoteFetch, err)
	}

	notes := make([]domain.Note, 0, len(result.Data))
	for i, raw := range result.Data {
		var row remoteRow
		if err := json.Unmarshal(raw, &row); err != nil {
			c.logger.Warn("skipping malformed note row", logger.Int("index", i), logger.Error(err))
			continue
		}
		notes = append(notes, mapRemoteRow(row, i, c.now()))
	}

	c.mu.Lock()
	c.cache = notes
	c.mu.Unlock()
	return notes, nil
}

// Get returns a cached note by id.
func (c *Client) Get(_ context.Context, id string) (domain.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.cache {
		if n.ID == id {
			return n, nil
		}
	}
	return domain.Note{}, fmt.Errorf("%w: note %q", apperrors.ErrNotFound, id)
}

// Create validates the input and appends a note through the remote store.
func (c *Client) Create(ctx context.Context, in domain.NoteInput) (domain.Note, error) {
	if err := in.Validate(); err != nil {
		return domain.Note{}, err
	}

	now := c.now().UTC().Format(time.RFC3339)
	note := domain.Note{
		ID:          fmt.Sprintf("note_%d", c.now().UnixMilli()),
		Title:       in.Title,
		Content:     in.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        domain.SplitList(in.Tags),
		Attachments: domain.SplitList(in.Attachments),
	}

	if c.endpoint == "" {
		c.mu.Lock()
		c.cache = append(c.cache, note)
		c.mu.Unlock()
		return note, nil
	}

	if err := c.mutate(ctx, envelope{Action: "create", Data: &note}); err != nil {
		return domain.Note{}, err
	}

	c.mu.Lock()
	c.cache = append(c.cache, note)
	c.mu.Unlock()
	return note, nil
}

// Update replaces mutable note fields by id. Notes are not mutated in
// place; the updated copy replaces the cached one.
func (c *Client) Update(ctx context.Context, id string, in domain.NoteInput) (domain.Note, error) {
	c.mu.Lock()
	idx := -1
	for i, n := range c.cache {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return domain.Note{}, fmt.Errorf("%w: note %q", apperrors.ErrNotFound, id)
	}
	updated := c.cache[idx]
	c.mu.Unlock()

	if strings.TrimSpace(in.Title) != "" {
		updated.Title = in.Title
	}
	if strings.TrimSpace(in.Content) != "" {
		updated.Content = in.Content
	}
	if in.Tags != "" {
		updated.Tags = domain.SplitList(in.Tags)
	}
	if in.Attachments != "" {
		updated.Attachments = domain.SplitList(in.Attachments)
	}
	updated.UpdatedAt = c.now().UTC().Format(time.RFC3339)

	if c.endpoint != "" {
		if err := c.mutate(ctx, envelope{Action: "update", ID: id, Data: &updated}); err != nil {
			return domain.Note{}, err
		}
	}

	c.mu.Lock()
	if idx < len(c.cache) && c.cache[idx].ID == id {
		c.cache[idx] = updated
	}
	c.mu.Unlock()
	return updated, nil
}

// Delete removes a note by id through the remote store.
func (c *Client) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := -1
	for i, n := range c.cache {
		if n.ID == id {
			idx = i
			break
		}
	}
	c.mu.Unlock()
	if idx < 0 {
		return fmt.Errorf("%w: note %q", apperrors.ErrNotFound, id)
	}

	if c.endpoint != "" {
		if err := c.mutate(ctx, envelope{Action: "delete", ID: id}); err != nil {
			return err
		}
	}

	c.mu.Lock()
	kept := make([]domain.Note, 0, len(c.cache))
	for _, n := range c.cache {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	c.cache = kept
	c.mu.Unlock()
	return nil
}

func (c *Client) mutate(ctx context.Context, env envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrRemoteFetch, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrRemoteFetch, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", apperrors.ErrRemoteFetch, resp.StatusCode)
	}

	var result remoteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: decode: %v", apperrors.ErrRemoteFetch, err)
	}
	if !result.Success {
		return fmt.Errorf("remote %s rejected: %s", env.Action, result.Error)
	}
	return nil
}

func mapRemoteRow(row remoteRow, index int, now time.Time) domain.Note {
	title := row.Title
	if title == "" {
		title = row.Name
	}
	if title == "" {
		title = "Untitled"
	}
	content := row.Content
	if content == "" {
		content = row.Text
	}
	id := row.ID
	if id == "" {
		id = fmt.Sprintf("note_%d", index+1)
	}
	created := row.CreatedAt
	if created == "" {
		created = now.UTC().Format(time.RFC3339)
	}
	updated := row.UpdatedAt
	if updated == "" {
		updated = created
	}

	archived := false
	switch v := row.IsArchived.(type) {
	case bool:
		archived = v
	case string:
		archived = v == "true"
	}

	return domain.Note{
		ID:          id,
		Title:       title,
		Content:     content,
		CreatedAt:   created,
		UpdatedAt:   updated,
		Tags:        domain.SplitList(row.Tags),
		Attachments: domain.SplitList(row.Attachments),
		IsArchived:  archived,
	}
}

func (c *Client) sampleNotes() []domain.Note {
	now := c.now().UTC().Format(time.RFC3339)
	sample := []domain.Note{{
		ID:        "sample_1",
		Title:     "Sample Note",
		Content:   "This is a sample note. Configure SHEETHUB_NOTES_ENDPOINT to connect to your spreadsheet.",
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      []string{"sample", "demo"},
	}}

	c.mu.Lock()
	if len(c.cache) == 0 {
		c.cache = sample
	} else {
		sample = append([]domain.Note(nil), c.cache...)
	}
	c.mu.Unlock()
	return sample
}
