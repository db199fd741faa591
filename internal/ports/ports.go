// Package ports declares the narrow interfaces the pipeline consumes but
// does not implement: structured judgment, transcription, rasterization,
// speech synthesis, history storage, and notification.
package ports

import (
	"context"

	"github.com/podiumlab/podium/internal/domain"
)

// Attachment is binary material sent alongside a judgment prompt.
type Attachment struct {
	MIME string
	Data []byte
}

// JudgeRequest carries one prompt plus optional attachments.
type JudgeRequest struct {
	Prompt      string
	Attachments []Attachment
}

// Judge sends prompts to an external judgment model. Implementations own
// the schema-validation boundary: a response that does not decode into the
// expected structure surfaces uniformly as a domain.SchemaMismatchError,
// and rate limits or provider outages as a domain.TransientError.
type Judge interface {
	// JudgeStructured requests a JSON response and decodes it into out.
	JudgeStructured(ctx context.Context, req JudgeRequest, out any) error
	// JudgeText requests a free-form text response.
	JudgeText(ctx context.Context, req JudgeRequest) (string, error)
}

// Transcriber converts recorded audio into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Rasterizer renders one page of a slide document to a PNG image.
type Rasterizer interface {
	RasterizePage(ctx context.Context, document []byte, page int) ([]byte, error)
}

// Synthesizer turns text into spoken audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// HistoryStore persists per-user evaluation records. AppendHistory is a
// single atomic insert; the pipeline performs no locking of its own.
type HistoryStore interface {
	FetchHistory(ctx context.Context, userID string) ([]domain.HistoryRecord, error)
	AppendHistory(ctx context.Context, userID string, summary domain.AggregateSummary) (domain.HistoryRecord, error)
}

// Notifier informs the submitting user that a run finished. Best-effort:
// callers log failures rather than propagating them.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}
