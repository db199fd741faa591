package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
	"github.com/podiumlab/podium/internal/prompt"
)

// unavailable is the degraded placeholder for a dimension whose stage
// failed. The aggregate prompt pins its score to the neutral value.
const unavailable = "(unavailable)"

// Aggregate combines all dimension feedback into one verdict with five
// bounded scores. It runs after the barrier and substitutes placeholders
// for any failed dimension rather than blocking on it.
type Aggregate struct {
	Judge ports.Judge
}

func (s *Aggregate) Kind() domain.StageKind { return domain.KindAggregate }
func (s *Aggregate) Label() string          { return "aggregate" }

func (s *Aggregate) Run(ctx context.Context, in Input) (any, error) {
	p, err := prompt.Build("aggregate", prompt.Vars{
		"structure":  structureText(in.Results.Structure),
		"speech":     speechText(in.Results.Speech),
		"knowledge":  knowledgeText(in.Results.Knowledge),
		"personas":   personasText(in.Results.Personas),
		"comparison": comparisonText(in.Results.Comparison),
	})
	if err != nil {
		return nil, fmt.Errorf("build aggregate prompt: %w", err)
	}

	var out domain.AggregateSummary
	if err := s.Judge.JudgeStructured(ctx, ports.JudgeRequest{Prompt: p}, &out); err != nil {
		return nil, fmt.Errorf("judge aggregate: %w", err)
	}
	pinDegraded(&out, in.Results)
	if err := out.Validate(); err != nil {
		return nil, &domain.SchemaMismatchError{Op: "aggregate", Detail: err.Error()}
	}
	return &out, nil
}

// pinDegraded overwrites the score of every dimension whose stage failed
// with the neutral placeholder. The judge never gets to rate a dimension
// it saw no data for, so remediation cannot trigger off a failure.
func pinDegraded(summary *domain.AggregateSummary, results *ResultSet) {
	if results.Structure == nil {
		summary.StructureScore = domain.NeutralScore
	}
	if results.Speech == nil {
		summary.SpeechScore = domain.NeutralScore
	}
	if results.Knowledge == nil {
		summary.KnowledgeScore = domain.NeutralScore
	}
	if len(results.Personas) == 0 {
		summary.PersonasScore = domain.NeutralScore
	}
	if results.Comparison == nil {
		summary.ComparisonScore = domain.NeutralScore
	}
}

func structureText(r *domain.StructureResult) string {
	if r == nil {
		return unavailable
	}
	return r.Narrative
}

func speechText(r *domain.SpeechRateResult) string {
	if r == nil {
		return unavailable
	}
	return r.RateReview + " " + r.StyleReview
}

func knowledgeText(r *domain.PriorKnowledgeResult) string {
	if r == nil {
		return unavailable
	}
	var b strings.Builder
	b.WriteString(r.Summary)
	for _, t := range r.Terms {
		fmt.Fprintf(&b, "\n  %s: %s (assumes %s, explained at %s)",
			t.Term, t.Description, t.Level, t.ExplainedLevel)
	}
	return b.String()
}

func personasText(results []domain.PersonaResult) string {
	if len(results) == 0 {
		return unavailable
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Persona, r.Feedback))
	}
	return strings.Join(parts, "\n")
}

func comparisonText(r *domain.ComparisonResult) string {
	if r == nil {
		return unavailable
	}
	if r.Narrative == "" {
		return "(first evaluation, no history)"
	}
	return r.Narrative
}
