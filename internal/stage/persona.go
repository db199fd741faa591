package stage

import (
	"context"
	"fmt"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
	"github.com/podiumlab/podium/internal/prompt"
)

// Persona gives feedback from one configured audience viewpoint. The
// pipeline runs one Persona stage per configured persona string.
type Persona struct {
	Judge ports.Judge
	Name  string
}

func (s *Persona) Kind() domain.StageKind { return domain.KindPersona }
func (s *Persona) Label() string          { return "persona: " + s.Name }

func (s *Persona) Run(ctx context.Context, in Input) (any, error) {
	p, err := prompt.Build("persona", prompt.Vars{
		"persona":    s.Name,
		"transcript": in.Submission.Transcript,
	})
	if err != nil {
		return nil, fmt.Errorf("build persona prompt: %w", err)
	}

	var out domain.PersonaResult
	if err := s.Judge.JudgeStructured(ctx, ports.JudgeRequest{Prompt: p}, &out); err != nil {
		return nil, fmt.Errorf("judge persona %q: %w", s.Name, err)
	}
	if out.Persona == "" {
		out.Persona = s.Name
	}
	return &out, nil
}
