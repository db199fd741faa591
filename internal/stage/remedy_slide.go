package stage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
	"github.com/podiumlab/podium/internal/prompt"
)

// SlideRevision proposes one fix per deck page and mocks up a corrected
// version of the weakest page. Triggered only when the structure score
// falls at or below the configured threshold.
//
// The fix list is the stage's core output; rasterizing the worst page and
// generating the mockup are best-effort extras whose failure degrades the
// result instead of failing the stage.
type SlideRevision struct {
	Judge  ports.Judge
	Raster ports.Rasterizer
	Log    *slog.Logger
}

func (s *SlideRevision) Kind() domain.StageKind { return domain.KindSlideRevision }
func (s *SlideRevision) Label() string          { return "slide_revision" }

func (s *SlideRevision) Run(ctx context.Context, in Input) (any, error) {
	p, err := prompt.Build("slide_fixes", nil)
	if err != nil {
		return nil, fmt.Errorf("build slide_fixes prompt: %w", err)
	}

	req := ports.JudgeRequest{
		Prompt: p,
		Attachments: []ports.Attachment{
			{MIME: "application/pdf", Data: in.Submission.SlideDocument},
		},
	}
	var fixes struct {
		WorstPage int              `json:"worst_page"`
		Fixes     []domain.SlideFix `json:"fixes"`
	}
	if err := s.Judge.JudgeStructured(ctx, req, &fixes); err != nil {
		return nil, fmt.Errorf("judge slide fixes: %w", err)
	}
	if fixes.WorstPage < 1 || len(fixes.Fixes) == 0 {
		return nil, &domain.SchemaMismatchError{Op: "slide_fixes", Detail: "missing worst page or fixes"}
	}

	rev := &domain.SlideRevision{
		WorstPage: fixes.WorstPage,
		Fixes:     fixes.Fixes,
	}

	page, err := s.Raster.RasterizePage(ctx, in.Submission.SlideDocument, fixes.WorstPage)
	if err != nil {
		s.Log.Warn("rasterize worst page failed, returning fixes only",
			"page", fixes.WorstPage, "err", err)
		return rev, nil
	}
	rev.PageImageB64 = base64.StdEncoding.EncodeToString(page)

	if err := s.mockup(ctx, rev, page, fixes.WorstPage); err != nil {
		s.Log.Warn("mockup generation failed, returning fixes only", "err", err)
	}
	return rev, nil
}

func (s *SlideRevision) mockup(ctx context.Context, rev *domain.SlideRevision, page []byte, worst int) error {
	fix := worstFix(rev.Fixes, worst)
	p, err := prompt.Build("slide_mockup", prompt.Vars{
		"issue":      fix.Issue,
		"suggestion": fix.Suggestion,
	})
	if err != nil {
		return fmt.Errorf("build slide_mockup prompt: %w", err)
	}

	req := ports.JudgeRequest{
		Prompt: p,
		Attachments: []ports.Attachment{
			{MIME: "image/png", Data: page},
		},
	}
	var out struct {
		Note        string `json:"note"`
		ImageBase64 string `json:"image_base64"`
	}
	if err := s.Judge.JudgeStructured(ctx, req, &out); err != nil {
		return fmt.Errorf("judge slide mockup: %w", err)
	}
	rev.MockupNote = out.Note
	rev.MockupB64 = out.ImageBase64
	return nil
}

// worstFix finds the fix entry for the weakest page, falling back to the
// first entry when the judge listed no fix for it.
func worstFix(fixes []domain.SlideFix, worst int) domain.SlideFix {
	for _, f := range fixes {
		if f.Page == worst {
			return f
		}
	}
	return fixes[0]
}
