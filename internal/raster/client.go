// Package raster implements the slide-rasterizer collaborator: one page
// of a slide document in, one PNG out.
package raster

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

// Client implements ports.Rasterizer against a small HTTP service.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

var _ ports.Rasterizer = (*Client)(nil)

// NewClient builds a rasterizer client from configuration.
func NewClient(cfg config.HTTPService) *Client {
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RasterizePage renders the given 1-based page as PNG bytes.
func (c *Client) RasterizePage(ctx context.Context, document []byte, page int) ([]byte, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("rasterizer misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"document": base64.StdEncoding.EncodeToString(document),
		"page":     page,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rasterize payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/rasterize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.TransientError{Op: "rasterize", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rasterizer error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var decoded struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &domain.SchemaMismatchError{
			Op:     "rasterize",
			Detail: fmt.Sprintf("unparsable response body: %v", err),
			Err:    err,
		}
	}

	image, err := base64.StdEncoding.DecodeString(decoded.Image)
	if err != nil {
		return nil, &domain.SchemaMismatchError{
			Op:     "rasterize",
			Detail: fmt.Sprintf("image field is not base64: %v", err),
			Err:    err,
		}
	}
	return image, nil
}
