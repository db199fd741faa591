package stage

import (
	"context"
	"fmt"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
	"github.com/podiumlab/podium/internal/prompt"
)

// Structure reviews the presentation's structure against the slide deck.
type Structure struct {
	Judge ports.Judge
}

func (s *Structure) Kind() domain.StageKind { return domain.KindStructure }
func (s *Structure) Label() string          { return "structure" }

func (s *Structure) Run(ctx context.Context, in Input) (any, error) {
	p, err := prompt.Build("structure", prompt.Vars{
		"transcript": in.Submission.Transcript,
	})
	if err != nil {
		return nil, fmt.Errorf("build structure prompt: %w", err)
	}

	req := ports.JudgeRequest{
		Prompt: p,
		Attachments: []ports.Attachment{
			{MIME: "application/pdf", Data: in.Submission.SlideDocument},
		},
	}
	narrative, err := s.Judge.JudgeText(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("judge structure: %w", err)
	}
	return &domain.StructureResult{Narrative: narrative}, nil
}
