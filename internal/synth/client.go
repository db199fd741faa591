// Package synth implements the text-to-speech collaborator used to
// produce the audio exemplar artifact.
package synth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/podiumlab/podium/internal/config"
	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
)

// Client implements ports.Synthesizer against a small HTTP service.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

var _ ports.Synthesizer = (*Client)(nil)

// NewClient builds a synthesizer client from configuration.
func NewClient(cfg config.HTTPService) *Client {
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Synthesize turns text into WAV bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("synthesizer misconfigured")
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal synthesize payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.TransientError{Op: "synthesize", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("synthesizer error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var decoded struct {
		Audio string `json:"audio"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &domain.SchemaMismatchError{
			Op:     "synthesize",
			Detail: fmt.Sprintf("unparsable response body: %v", err),
			Err:    err,
		}
	}

	audio, err := base64.StdEncoding.DecodeString(decoded.Audio)
	if err != nil {
		return nil, &domain.SchemaMismatchError{
			Op:     "synthesize",
			Detail: fmt.Sprintf("audio field is not base64: %v", err),
			Err:    err,
		}
	}
	return audio, nil
}
