package stage

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
	"github.com/podiumlab/podium/internal/prompt"
)

// AudioExemplar cleans up the spoken transcript and synthesizes it at a
// model pace. Triggered only when the speech score falls at or below the
// configured threshold.
type AudioExemplar struct {
	Judge ports.Judge
	Synth ports.Synthesizer
}

func (s *AudioExemplar) Kind() domain.StageKind { return domain.KindAudioExemplar }
func (s *AudioExemplar) Label() string          { return "audio_exemplar" }

func (s *AudioExemplar) Run(ctx context.Context, in Input) (any, error) {
	p, err := prompt.Build("transcript_cleanup", prompt.Vars{
		"transcript": in.Submission.Transcript,
	})
	if err != nil {
		return nil, fmt.Errorf("build transcript_cleanup prompt: %w", err)
	}

	var cleaned struct {
		Transcript string `json:"transcript"`
	}
	if err := s.Judge.JudgeStructured(ctx, ports.JudgeRequest{Prompt: p}, &cleaned); err != nil {
		return nil, fmt.Errorf("clean transcript: %w", err)
	}
	if cleaned.Transcript == "" {
		return nil, &domain.SchemaMismatchError{Op: "transcript_cleanup", Detail: "empty transcript"}
	}

	audio, err := s.Synth.Synthesize(ctx, cleaned.Transcript)
	if err != nil {
		return nil, fmt.Errorf("synthesize exemplar: %w", err)
	}

	return &domain.AudioExemplar{
		Transcript: cleaned.Transcript,
		AudioB64:   base64.StdEncoding.EncodeToString(audio),
	}, nil
}
