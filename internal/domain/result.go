package domain

import (
	"fmt"
	"time"
)

// Score bounds for every aggregate dimension.
const (
	MinScore = 1
	MaxScore = 5

	// NeutralScore is the pinned placeholder substituted for a dimension
	// whose upstream stage failed or produced nothing.
	NeutralScore = 3
)

// StructureResult is the narrative review of the presentation's structure.
type StructureResult struct {
	Narrative string `json:"narrative"`
}

// SpeechRateResult reviews pace and speaking style separately.
type SpeechRateResult struct {
	RateReview  string `json:"rate_review"`
	StyleReview string `json:"style_review"`
}

// KnowledgeTerm is one term the talk assumes the audience already knows.
type KnowledgeTerm struct {
	Term           string `json:"term"`
	Description    string `json:"description"`
	Level          string `json:"level"`
	ExplainedLevel string `json:"explained_level"`
}

// PriorKnowledgeResult reviews how much background the talk demands.
type PriorKnowledgeResult struct {
	Summary string          `json:"summary"`
	Terms   []KnowledgeTerm `json:"terms"`
}

// PersonaResult is feedback written from one audience persona's viewpoint.
type PersonaResult struct {
	Persona  string `json:"persona"`
	Feedback string `json:"feedback"`
}

// ComparisonResult relates this run to the user's previous evaluations.
// Narrative is empty when the user has no history.
type ComparisonResult struct {
	Narrative string `json:"narrative"`
}

// AggregateSummary is the combined verdict: one narrative plus five
// bounded dimension scores. All five scores are always present, even when
// an upstream stage failed and a neutral placeholder was substituted.
type AggregateSummary struct {
	Narrative       string `json:"narrative"`
	StructureScore  int    `json:"structure_score"`
	SpeechScore     int    `json:"speech_score"`
	KnowledgeScore  int    `json:"knowledge_score"`
	PersonasScore   int    `json:"personas_score"`
	ComparisonScore int    `json:"comparison_score"`
}

// Validate checks that every dimension score is within [MinScore, MaxScore].
func (a AggregateSummary) Validate() error {
	dims := []struct {
		name  string
		score int
	}{
		{"structure_score", a.StructureScore},
		{"speech_score", a.SpeechScore},
		{"knowledge_score", a.KnowledgeScore},
		{"personas_score", a.PersonasScore},
		{"comparison_score", a.ComparisonScore},
	}
	for _, d := range dims {
		if d.score < MinScore || d.score > MaxScore {
			return fmt.Errorf("%s out of range: %d", d.name, d.score)
		}
	}
	return nil
}

// HistoryRecord is one persisted past AggregateSummary. Records are
// append-only and read back ascending by CreatedAt for trend comparison.
type HistoryRecord struct {
	ID        int64            `json:"id"`
	UserID    string           `json:"user_id"`
	CreatedAt time.Time        `json:"created_at"`
	Summary   AggregateSummary `json:"summary"`
}

// SlideFix is one suggested correction for one slide page.
type SlideFix struct {
	Page       int    `json:"page"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// SlideRevision is the slide remediation artifact: the weakest page, the
// per-page fix list, and (when available) the rasterized target page plus
// a generated mockup of the corrected page.
type SlideRevision struct {
	WorstPage    int        `json:"worst_page"`
	Fixes        []SlideFix `json:"fixes"`
	PageImageB64 string     `json:"page_image_base64,omitempty"`
	MockupB64    string     `json:"mockup_base64,omitempty"`
	MockupNote   string     `json:"mockup_note,omitempty"`
}

// AudioExemplar is the audio remediation artifact: a cleaned-up transcript
// read out at a model pace. Streamed only, never persisted.
type AudioExemplar struct {
	Transcript string `json:"transcript"`
	AudioB64   string `json:"audio_base64"`
}
