// Package pipeline schedules the evaluation stages for one submission:
// independent critiques fan out onto a bounded worker pool, the aggregate
// waits at the barrier, remediation follows conditionally, and exactly
// one history record is written per successful run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/podiumlab/podium/internal/config"
	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
	"github.com/podiumlab/podium/internal/stage"
	"github.com/podiumlab/podium/internal/stream"
)

// Scheduler owns the collaborators and runs submissions through the
// stage graph. One Scheduler serves all submissions; per-run state lives
// on the stack of Run.
type Scheduler struct {
	judge       ports.Judge
	raster      ports.Rasterizer
	synth       ports.Synthesizer
	history     ports.HistoryStore
	notifier    ports.Notifier
	runner      *stage.Runner
	sem         *semaphore.Weighted
	personas    []string
	remediation config.Remediation
	log         *slog.Logger
}

// New wires a Scheduler from configuration and collaborators.
func New(cfg config.Pipeline, judge ports.Judge, raster ports.Rasterizer,
	synth ports.Synthesizer, history ports.HistoryStore, notifier ports.Notifier,
	log *slog.Logger) *Scheduler {
	return &Scheduler{
		judge:       judge,
		raster:      raster,
		synth:       synth,
		history:     history,
		notifier:    notifier,
		runner:      stage.NewRunner(cfg.ParsedStageTimeout(), cfg.TransientRetries, log),
		sem:         semaphore.NewWeighted(int64(cfg.Workers)),
		personas:    cfg.Personas,
		remediation: cfg.Remediation,
		log:         log,
	}
}

// Run evaluates one submission, emitting stage events onto st as stages
// finish and always closing the stream with a terminal event. The
// returned error is the terminal failure, nil for a completed run.
func (s *Scheduler) Run(ctx context.Context, sub *domain.Submission, st *stream.Stream) error {
	log := s.log.With("submission", sub.ID, "user", sub.UserID)
	log.Info("pipeline started", "personas", len(s.personas))

	results := s.runIndependents(ctx, sub, st, log)

	summary, err := s.runAggregate(ctx, sub, results, st)
	if err != nil {
		fatal := &domain.FatalPipelineError{Err: err}
		log.Error("aggregate failed, aborting run", "err", err)
		st.CloseWith(ctx, fatal)
		return fatal
	}

	record, err := s.history.AppendHistory(ctx, sub.UserID, *summary)
	if err != nil {
		// Streamed events stay valid; only the terminal outcome changes.
		perr := &domain.PersistenceError{Err: err}
		log.Error("history write failed", "err", err)
		st.CloseWith(ctx, perr)
		return perr
	}
	log.Info("history record written", "record", record.ID)

	s.runRemediation(ctx, sub, summary, st, log)
	s.notify(ctx, sub, summary, log)

	st.CloseWith(ctx, nil)
	log.Info("pipeline completed")
	return nil
}

// runIndependents fans out every stage with no result dependencies and
// blocks until all of them reach a terminal status. Failures are
// contained: the matching ResultSet field simply stays nil.
func (s *Scheduler) runIndependents(ctx context.Context, sub *domain.Submission,
	st *stream.Stream, log *slog.Logger) *stage.ResultSet {

	results := &stage.ResultSet{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	launch := func(sg stage.Stage, in stage.Input, keep func(any)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.runOne(ctx, sg, in, st, log)
			if err != nil {
				return
			}
			mu.Lock()
			keep(out)
			mu.Unlock()
		}()
	}

	in := stage.Input{Submission: sub}

	launch(&stage.Structure{Judge: s.judge}, in, func(out any) {
		results.Structure = out.(*domain.StructureResult)
	})
	launch(&stage.SpeechRate{Judge: s.judge}, in, func(out any) {
		results.Speech = out.(*domain.SpeechRateResult)
	})
	launch(&stage.PriorKnowledge{Judge: s.judge}, in, func(out any) {
		results.Knowledge = out.(*domain.PriorKnowledgeResult)
	})
	for _, persona := range s.personas {
		launch(&stage.Persona{Judge: s.judge, Name: persona}, in, func(out any) {
			results.Personas = append(results.Personas, *out.(*domain.PersonaResult))
		})
	}

	// Comparison reads the history snapshot first. The snapshot is taken
	// before this run's record exists, so a run never compares against
	// itself.
	wg.Add(1)
	go func() {
		defer wg.Done()
		comparison := &stage.Comparison{Judge: s.judge}
		history, err := s.history.FetchHistory(ctx, sub.UserID)
		if err != nil {
			log.Warn("history snapshot failed, comparison degraded", "err", err)
			s.emitFailed(ctx, st, comparison.Label(), comparison.Kind(),
				fmt.Errorf("fetch history: %w", err))
			return
		}
		out, err := s.runOne(ctx, comparison, stage.Input{Submission: sub, History: history}, st, log)
		if err != nil {
			return
		}
		mu.Lock()
		results.Comparison = out.(*domain.ComparisonResult)
		mu.Unlock()
	}()

	wg.Wait()
	return results
}

// runOne pushes a stage through the worker pool and the runner, then
// emits its terminal event.
func (s *Scheduler) runOne(ctx context.Context, sg stage.Stage, in stage.Input,
	st *stream.Stream, log *slog.Logger) (any, error) {

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	out, err := s.runner.Run(ctx, sg, in)
	s.sem.Release(1)

	if err != nil {
		log.Warn("stage failed", "stage", sg.Label(), "err", err)
		s.emitFailed(ctx, st, sg.Label(), sg.Kind(), err)
		return nil, err
	}
	s.emitCompleted(ctx, st, sg.Label(), sg.Kind(), out)
	return out, nil
}

// runAggregate runs the barrier stage. Any error here is fatal for the
// run; the runner already spent the single schema retry.
func (s *Scheduler) runAggregate(ctx context.Context, sub *domain.Submission,
	results *stage.ResultSet, st *stream.Stream) (*domain.AggregateSummary, error) {

	agg := &stage.Aggregate{Judge: s.judge}
	in := stage.Input{Submission: sub, Results: results}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	out, err := s.runner.Run(ctx, agg, in)
	s.sem.Release(1)
	if err != nil {
		return nil, err
	}

	summary := out.(*domain.AggregateSummary)
	s.emitCompleted(ctx, st, agg.Label(), agg.Kind(), summary)
	return summary, nil
}

// runRemediation runs whichever follow-up stages the scores trigger.
// Remediation failures never touch the terminal outcome.
func (s *Scheduler) runRemediation(ctx context.Context, sub *domain.Submission,
	summary *domain.AggregateSummary, st *stream.Stream, log *slog.Logger) {

	in := stage.Input{Submission: sub, Summary: summary}
	var wg sync.WaitGroup
	for _, kind := range Decide(*summary, s.remediation) {
		var sg stage.Stage
		switch kind {
		case domain.KindAudioExemplar:
			sg = &stage.AudioExemplar{Judge: s.judge, Synth: s.synth}
		case domain.KindSlideRevision:
			sg = &stage.SlideRevision{Judge: s.judge, Raster: s.raster, Log: log}
		default:
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.runOne(ctx, sg, in, st, log)
		}()
	}
	wg.Wait()
}

// notify tells the submitter the run finished. Best-effort: a mailer
// failure is logged, never escalated.
func (s *Scheduler) notify(ctx context.Context, sub *domain.Submission,
	summary *domain.AggregateSummary, log *slog.Logger) {

	if sub.NotifyAddress == "" {
		return
	}
	body := fmt.Sprintf("Your presentation evaluation is ready.\n\n%s\n\n"+
		"Scores (1-5): structure %d, speech %d, prior knowledge %d, personas %d, progress %d.\n",
		summary.Narrative, summary.StructureScore, summary.SpeechScore,
		summary.KnowledgeScore, summary.PersonasScore, summary.ComparisonScore)
	if err := s.notifier.Notify(ctx, sub.NotifyAddress, "Your evaluation is ready", body); err != nil {
		log.Warn("notification failed", "recipient", sub.NotifyAddress, "err", err)
	}
}

func (s *Scheduler) emitCompleted(ctx context.Context, st *stream.Stream,
	label string, kind domain.StageKind, payload any) {
	ev, err := domain.CompletedEvent(label, kind, payload)
	if err != nil {
		s.emitFailed(ctx, st, label, kind, err)
		return
	}
	if err := st.Emit(ctx, ev); err != nil {
		s.log.Warn("event dropped", "stage", label, "err", err)
	}
}

func (s *Scheduler) emitFailed(ctx context.Context, st *stream.Stream,
	label string, kind domain.StageKind, cause error) {
	if err := st.Emit(ctx, domain.FailedEvent(label, kind, cause)); err != nil {
		s.log.Warn("event dropped", "stage", label, "err", err)
	}
}
