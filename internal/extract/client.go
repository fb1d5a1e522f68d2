// Package extract talks to the note-extraction service over HTTP.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/SkiltonTrading/cmrv2/internal/config"
	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/port"
)

type httpExtractor struct {
	client *http.Client
	url    string
}

// NewClient creates a NoteExtractor that posts page images to the extraction
// service as multipart requests.
func NewClient(cfg *config.ExtractorConfig) port.NoteExtractor {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	return &httpExtractor{
		client: &http.Client{Timeout: timeout},
		url:    cfg.URL,
	}
}

func (c *httpExtractor) Extract(ctx context.Context, image []byte, meta domain.PageMeta) ([]domain.RawNote, error) {
	if c.url == "" {
		return nil, errors.New("extractor url not configured")
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding meta: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("image", fmt.Sprintf("page-%d.png", meta.PageIndex))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if err := w.WriteField("meta", string(metaJSON)); err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling extraction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, extractError(resp)
	}

	var result struct {
		Notes json.RawMessage `json:"notes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	// A page with no recognizable notes comes back with the notes field
	// null, absent, or occasionally mistyped. All of those are a valid
	// empty result; only a body that is not JSON at all fails the task.
	var notes []domain.RawNote
	if len(result.Notes) > 0 {
		if err := json.Unmarshal(result.Notes, &notes); err != nil {
			return nil, nil
		}
	}
	return notes, nil
}

// extractError turns a non-2xx response into an error, preferring the
// service's own {"error": ...} message over the bare status.
func extractError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("extraction service: %s (status %d)", payload.Error, resp.StatusCode)
	}
	if len(data) == 0 {
		return fmt.Errorf("extraction service: %s", http.StatusText(resp.StatusCode))
	}
	return fmt.Errorf("extraction service: status %d: %s", resp.StatusCode, string(data))
}
