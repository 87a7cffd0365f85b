package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adisetya/sheethub/internal/apperrors"
	"github.com/adisetya/sheethub/internal/domain"
	"github.com/adisetya/sheethub/internal/utils"
)

// remoteDocument is the remote rows document shape: {"items":[...]}.
type remoteDocument struct {
	Items []domain.Row `json:"items"`
}

// Loader fetches the catalog row set, either from a remote JSON document
// or from a local YAML file. The remote source wins when both are
// configured; the file is the offline fallback.
type Loader struct {
	url      string
	filePath string
	httpc    *http.Client
}

// NewLoader creates a catalog loader. Either source may be empty.
func NewLoader(url, filePath string, timeout time.Duration) *Loader {
	return &Loader{
		url:      url,
		filePath: filePath,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// Load returns the raw catalog rows. Remote failures are reported as
// ErrRemoteFetch so the caller can fall back to an empty set instead of
// propagating.
func (l *Loader) Load(ctx context.Context) ([]domain.Row, error) {
	if l.url != "" {
		return l.fetchRemote(ctx)
	}
	if l.filePath != "" {
		return l.readFile()
	}
	return nil, fmt.Errorf("%w: no catalog source configured", apperrors.ErrRemoteFetch)
}

func (l *Loader) fetchRemote(ctx context.Context) ([]domain.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRemoteFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRemoteFetch, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", apperrors.ErrRemoteFetch, resp.StatusCode)
	}

	var doc remoteDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", apperrors.ErrRemoteFetch, err)
	}
	return doc.Items, nil
}

func (l *Loader) readFile() ([]domain.Row, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	return NewMapper().MapRows(config)
}
