package stage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
	"github.com/podiumlab/podium/internal/prompt"
)

// SpeechRate reviews pace and speaking style from the raw recording.
type SpeechRate struct {
	Judge ports.Judge
}

func (s *SpeechRate) Kind() domain.StageKind { return domain.KindSpeechRate }
func (s *SpeechRate) Label() string          { return "speech_rate" }

func (s *SpeechRate) Run(ctx context.Context, in Input) (any, error) {
	p, err := prompt.Build("speech_rate", nil)
	if err != nil {
		return nil, fmt.Errorf("build speech_rate prompt: %w", err)
	}

	req := ports.JudgeRequest{
		Prompt: p,
		Attachments: []ports.Attachment{
			{MIME: audioMIME(in.Submission.AudioName), Data: in.Submission.Audio},
		},
	}
	var out domain.SpeechRateResult
	if err := s.Judge.JudgeStructured(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("judge speech rate: %w", err)
	}
	return &out, nil
}

// audioMIME maps a recording filename to its MIME type, defaulting to
// audio/mpeg for anything unrecognized.
func audioMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return "audio/wav"
	case ".m4a", ".aac":
		return "audio/aac"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	default:
		return "audio/mpeg"
	}
}
