// Package judge implements the structured-judgment collaborator against a
// Gemini-style generateContent API. It owns the schema-validation
// boundary: every malformed response surfaces as a
// domain.SchemaMismatchError, every rate limit or outage as a
// domain.TransientError.
package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/podiumlab/podium/internal/config"
	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
)

// GeminiClient implements ports.Judge backed by a generateContent endpoint.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	limiter    *rate.Limiter
	httpClient *http.Client
}

var _ ports.Judge = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration. limiter may be nil
// to disable rate limiting; it is shared across all concurrent
// submissions so the external quota is respected globally.
func NewGeminiClient(cfg config.JudgeService, apiKey string, limiter *rate.Limiter) *GeminiClient {
	return &GeminiClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		apiKey:   apiKey,
		limiter:  limiter,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// request/response shapes of the generateContent wire format.

type generatePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *generateInline `json:"inline_data,omitempty"`
}

type generateInline struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig map[string]any    `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// JudgeStructured requests a JSON response and decodes it into out.
func (c *GeminiClient) JudgeStructured(ctx context.Context, req ports.JudgeRequest, out any) error {
	text, err := c.generate(ctx, req, true)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &domain.SchemaMismatchError{
			Op:     "judge",
			Detail: fmt.Sprintf("response does not match expected schema: %v", err),
			Err:    err,
		}
	}
	return nil
}

// JudgeText requests a free-form text response.
func (c *GeminiClient) JudgeText(ctx context.Context, req ports.JudgeRequest) (string, error) {
	return c.generate(ctx, req, false)
}

func (c *GeminiClient) generate(ctx context.Context, req ports.JudgeRequest, wantJSON bool) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", errors.New("judge client misconfigured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	parts := make([]generatePart, 0, len(req.Attachments)+1)
	for _, att := range req.Attachments {
		parts = append(parts, generatePart{
			InlineData: &generateInline{
				MIMEType: att.MIME,
				Data:     base64.StdEncoding.EncodeToString(att.Data),
			},
		})
	}
	parts = append(parts, generatePart{Text: req.Prompt})

	payload := generateRequest{
		Contents: []generateContent{{Parts: parts}},
	}
	if wantJSON {
		payload.GenerationConfig = map[string]any{
			"response_mime_type": "application/json",
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal judge payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &domain.TransientError{Op: "judge", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		httpErr := fmt.Errorf("judge error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
		if retryable(resp.StatusCode) {
			return "", &domain.TransientError{
				Op:         "judge",
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Err:        httpErr,
			}
		}
		return "", httpErr
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &domain.SchemaMismatchError{
			Op:     "judge",
			Detail: fmt.Sprintf("unparsable response body: %v", err),
			Err:    err,
		}
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", &domain.SchemaMismatchError{
			Op:     "judge",
			Detail: "response contains no candidates",
		}
	}

	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
