package pipeline

import (
	"github.com/podiumlab/podium/internal/config"
	"github.com/podiumlab/podium/internal/domain"
)

// Decide maps a finished aggregate onto the remediation stages it
// triggers. A dimension at or below its threshold earns its stage; both
// can trigger on the same run. Pure function, no side effects.
func Decide(summary domain.AggregateSummary, cfg config.Remediation) []domain.StageKind {
	var kinds []domain.StageKind
	if summary.SpeechScore <= cfg.SpeechThreshold {
		kinds = append(kinds, domain.KindAudioExemplar)
	}
	if summary.StructureScore <= cfg.StructureThreshold {
		kinds = append(kinds, domain.KindSlideRevision)
	}
	return kinds
}
