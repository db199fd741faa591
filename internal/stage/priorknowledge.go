package stage

import (
	"context"
	"fmt"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
	"github.com/podiumlab/podium/internal/prompt"
)

// PriorKnowledge reviews how much unexplained background the talk demands.
type PriorKnowledge struct {
	Judge ports.Judge
}

func (s *PriorKnowledge) Kind() domain.StageKind { return domain.KindPriorKnowledge }
func (s *PriorKnowledge) Label() string          { return "prior_knowledge" }

func (s *PriorKnowledge) Run(ctx context.Context, in Input) (any, error) {
	p, err := prompt.Build("prior_knowledge", prompt.Vars{
		"transcript": in.Submission.Transcript,
	})
	if err != nil {
		return nil, fmt.Errorf("build prior_knowledge prompt: %w", err)
	}

	var out domain.PriorKnowledgeResult
	if err := s.Judge.JudgeStructured(ctx, ports.JudgeRequest{Prompt: p}, &out); err != nil {
		return nil, fmt.Errorf("judge prior knowledge: %w", err)
	}
	return &out, nil
}
