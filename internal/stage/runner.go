package stage

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/podiumlab/podium/internal/domain"
)

// Retry backoff bounds.
const (
	backoffInitial = 500 * time.Millisecond
	backoffMax     = 8 * time.Second
)

// schemaRetries is the fixed retry budget for schema mismatches: one
// retry, then the stage fails and its caller decides whether to degrade.
const schemaRetries = 1

// Runner executes one stage under the pipeline's retry and timeout
// policy: transient errors are retried a bounded number of times with
// jittered exponential backoff, schema mismatches exactly once, timeouts
// never.
type Runner struct {
	timeout          time.Duration
	transientRetries int
	log              *slog.Logger
	// sleep is swappable for tests; defaults to a ctx-aware timer wait.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a Runner.
func NewRunner(timeout time.Duration, transientRetries int, log *slog.Logger) *Runner {
	return &Runner{
		timeout:          timeout,
		transientRetries: transientRetries,
		log:              log,
		sleep:            sleepCtx,
	}
}

// Run drives one stage to a terminal outcome.
func (r *Runner) Run(ctx context.Context, st Stage, in Input) (any, error) {
	transientLeft := r.transientRetries
	schemaLeft := schemaRetries

	for attempt := 1; ; attempt++ {
		runCtx, cancel := context.WithTimeout(ctx, r.timeout)
		result, err := st.Run(runCtx, in)
		timedOut := runCtx.Err() != nil && ctx.Err() == nil
		cancel()

		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			// Caller went away; no point classifying.
			return nil, ctx.Err()
		}
		if timedOut && errors.Is(err, context.DeadlineExceeded) {
			// A stage that blew its independent timeout is Failed, not a
			// retry storm.
			return nil, &domain.TransientError{Op: st.Label(), Err: domain.ErrStageTimeout}
		}

		switch domain.Classify(err) {
		case domain.KindTransient:
			if transientLeft <= 0 {
				return nil, err
			}
			transientLeft--
			delay := r.backoff(attempt, err)
			r.log.Warn("stage retrying after transient error",
				"stage", st.Label(), "attempt", attempt, "delay", delay, "err", err)
			if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
				return nil, sleepErr
			}
		case domain.KindSchemaMismatch:
			if schemaLeft <= 0 {
				return nil, err
			}
			schemaLeft--
			r.log.Warn("stage retrying after schema mismatch",
				"stage", st.Label(), "attempt", attempt, "err", err)
		default:
			return nil, err
		}
	}
}

// backoff computes the retry delay: provider guidance when present,
// otherwise full-jitter exponential backoff.
func (r *Runner) backoff(attempt int, err error) time.Duration {
	var transient *domain.TransientError
	if errors.As(err, &transient) && transient.RetryAfter > 0 {
		return transient.RetryAfter
	}

	d := backoffInitial
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= backoffMax {
			d = backoffMax
			break
		}
	}
	// Full jitter: random between 0 and the computed delay.
	return time.Duration(rand.Int64N(int64(d) + 1))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
