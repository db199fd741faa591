// Package domain defines the core types of the evaluation pipeline:
// submissions, stage kinds and results, the aggregate summary, history
// records, stream events, and the pipeline error taxonomy.
package domain

// StageKind identifies one unit of pipeline work.
type StageKind string

const (
	KindStructure      StageKind = "structure"
	KindSpeechRate     StageKind = "speech_rate"
	KindPriorKnowledge StageKind = "prior_knowledge"
	KindPersona        StageKind = "persona"
	KindComparison     StageKind = "comparison"
	KindAggregate      StageKind = "aggregate"
	KindAudioExemplar  StageKind = "audio_exemplar"
	KindSlideRevision  StageKind = "slide_revision"
)

// StageStatus is the terminal outcome a stage event reports. Stages in
// flight are not streamed; an event exists only once its stage finished.
type StageStatus string

const (
	StatusCompleted StageStatus = "completed"
	StatusFailed    StageStatus = "failed"
)
