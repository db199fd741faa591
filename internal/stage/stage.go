// Package stage defines the evaluation stages: each one turns a typed
// input into a typed result by way of external collaborators, and knows
// nothing about scheduling, streaming, or persistence.
package stage

import (
	"context"

	"github.com/podiumlab/podium/internal/domain"
)

// Stage is one unit of pipeline work.
type Stage interface {
	Kind() domain.StageKind
	// Label names the stage instance in stream events, e.g. "structure"
	// or "persona: industry engineer".
	Label() string
	Run(ctx context.Context, in Input) (any, error)
}

// Input carries everything any stage kind might need. The scheduler fills
// only the fields a given stage's dependencies provide.
type Input struct {
	Submission *domain.Submission
	// History is the user's record snapshot read at pipeline start,
	// excluding the current run. Comparison only.
	History []domain.HistoryRecord
	// Results holds the independent stages' outputs. Aggregate only.
	Results *ResultSet
	// Summary is the aggregate output. Remediation only.
	Summary *domain.AggregateSummary
}

// ResultSet collects the barrier inputs. A nil field means that stage
// failed; consumers substitute a degraded placeholder, never block.
type ResultSet struct {
	Structure  *domain.StructureResult
	Speech     *domain.SpeechRateResult
	Knowledge  *domain.PriorKnowledgeResult
	Personas   []domain.PersonaResult
	Comparison *domain.ComparisonResult
}
