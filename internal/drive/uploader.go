package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/adisetya/sheethub/internal/logger"
	"github.com/adisetya/sheethub/internal/utils"
)

// Upload size cap and accepted content types for attachments.
const MaxUploadBytes = 5 << 20

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Uploader pushes attachment bytes to the Drive files API and makes the
// file publicly readable, returning a shareable URL.
type Uploader struct {
	uploadURL string // media upload endpoint
	apiURL    string // files metadata/permissions endpoint
	httpc     *http.Client
	logger    logger.Logger
}

// NewUploader creates a Drive uploader. Empty URLs select the production
// Google endpoints; tests point both at a local server.
func NewUploader(uploadURL, apiURL string, timeout time.Duration, log logger.Logger) *Uploader {
	if uploadURL == "" {
		uploadURL = "https://www.googleapis.com/upload/drive/v3/files"
	}
	if apiURL == "" {
		apiURL = "https://www.googleapis.com/drive/v3/files"
	}
	return &Uploader{
		uploadURL: uploadURL,
		apiURL:    apiURL,
		httpc:     &http.Client{Timeout: timeout},
		logger:    log,
	}
}

// AllowedType reports whether the attachment content type is accepted.
func AllowedType(contentType string) bool {
	_, ok := allowedTypes[contentType]
	return ok
}

type uploadedFile struct {
	ID string `json:"id"`
}

// Upload sends the raw bytes with the bearer token, renames the file,
// grants public read permission and returns the shareable view URL.
func (u *Uploader) Upload(ctx context.Context, accessToken, name, contentType string, data []byte) (string, error) {
	if len(data) > MaxUploadBytes {
		return "", fmt.Errorf("file size %d exceeds %d byte limit", len(data), MaxUploadBytes)
	}
	if !AllowedType(contentType) {
		return "", fmt.Errorf("invalid file type %q, only images are allowed", contentType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		u.uploadURL+"?uploadType=media", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", strconv.Itoa(len(data)))

	resp, err := u.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("drive upload failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("drive upload failed: unexpected status %d", resp.StatusCode)
	}

	var file uploadedFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return "", fmt.Errorf("drive upload failed: decode: %w", err)
	}
	if file.ID == "" {
		return "", fmt.Errorf("drive upload failed: no file id returned")
	}

	if err := u.rename(ctx, accessToken, file.ID, name); err != nil {
		// keep the upload; the generated name is still addressable
		u.logger.Warn("failed to rename uploaded file", logger.Error(err))
	}
	if err := u.share(ctx, accessToken, file.ID); err != nil {
		return "", err
	}

	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", file.ID), nil
}

func (u *Uploader) rename(ctx context.Context, accessToken, id, name string) error {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		fmt.Sprintf("%s/%s", u.apiURL, id), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.httpc.Do(req)
	if err != nil {
		return err
	}
	defer utils.Close(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (u *Uploader) share(ctx context.Context, accessToken, id string) error {
	body, err := json.Marshal(map[string]string{"role": "reader", "type": "anyone"})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s/permissions", u.apiURL, id), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("drive share failed: %w", err)
	}
	defer utils.Close(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("drive share failed: unexpected status %d", resp.StatusCode)
	}
	return nil
}
