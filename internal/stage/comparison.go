package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
	"github.com/podiumlab/podium/internal/prompt"
)

// Comparison relates this run to the user's persisted history. First-run
// users get an empty narrative without a judge call.
type Comparison struct {
	Judge ports.Judge
}

func (s *Comparison) Kind() domain.StageKind { return domain.KindComparison }
func (s *Comparison) Label() string          { return "comparison" }

func (s *Comparison) Run(ctx context.Context, in Input) (any, error) {
	if len(in.History) == 0 {
		return &domain.ComparisonResult{}, nil
	}

	p, err := prompt.Build("comparison", prompt.Vars{
		"history":    historyDigest(in.History),
		"transcript": in.Submission.Transcript,
	})
	if err != nil {
		return nil, fmt.Errorf("build comparison prompt: %w", err)
	}

	var out domain.ComparisonResult
	if err := s.Judge.JudgeStructured(ctx, ports.JudgeRequest{Prompt: p}, &out); err != nil {
		return nil, fmt.Errorf("judge comparison: %w", err)
	}
	return &out, nil
}

// historyDigest flattens past records into one prompt block, oldest first.
func historyDigest(records []domain.HistoryRecord) string {
	var b strings.Builder
	for i, r := range records {
		fmt.Fprintf(&b, "Evaluation %d (%s):\n", i+1, r.CreatedAt.Format("2006-01-02"))
		fmt.Fprintf(&b, "  scores: structure=%d speech=%d knowledge=%d personas=%d comparison=%d\n",
			r.Summary.StructureScore, r.Summary.SpeechScore, r.Summary.KnowledgeScore,
			r.Summary.PersonasScore, r.Summary.ComparisonScore)
		fmt.Fprintf(&b, "  verdict: %s\n", r.Summary.Narrative)
	}
	return b.String()
}
