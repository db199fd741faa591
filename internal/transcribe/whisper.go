// Package transcribe implements the speech-to-text collaborator against a
// Whisper-compatible transcription API.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/podiumlab/podium/internal/config"
	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
)

// WhisperClient implements ports.Transcriber.
type WhisperClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Transcriber = (*WhisperClient)(nil)

// NewWhisperClient builds a client from configuration.
func NewWhisperClient(cfg config.WhisperService, apiKey string) *WhisperClient {
	return &WhisperClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Transcribe posts the audio as multipart form data and returns the text.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("transcriber misconfigured")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	if err := form.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &domain.TransientError{Op: "transcribe", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		httpErr := fmt.Errorf("transcription error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return "", &domain.TransientError{Op: "transcribe", Err: httpErr}
		}
		return "", httpErr
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &domain.SchemaMismatchError{
			Op:     "transcribe",
			Detail: fmt.Sprintf("unparsable response body: %v", err),
			Err:    err,
		}
	}
	return decoded.Text, nil
}
