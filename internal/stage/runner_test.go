package stage

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podiumlab/podium/internal/domain"
)

// scriptedStage returns the scripted errors in order, then succeeds.
type scriptedStage struct {
	errs  []error
	calls int
	block bool // ignore the script and block until ctx is canceled
}

func (s *scriptedStage) Kind() domain.StageKind { return domain.KindStructure }
func (s *scriptedStage) Label() string          { return "scripted" }

func (s *scriptedStage) Run(ctx context.Context, _ Input) (any, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.calls <= len(s.errs) {
		return nil, s.errs[s.calls-1]
	}
	return "ok", nil
}

func testRunner(retries int) *Runner {
	r := NewRunner(time.Second, retries, slog.New(slog.DiscardHandler))
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestRunnerSucceedsFirstTry(t *testing.T) {
	st := &scriptedStage{}
	result, err := testRunner(2).Run(context.Background(), st, Input{})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, st.calls)
}

func TestRunnerRetriesTransient(t *testing.T) {
	st := &scriptedStage{errs: []error{
		&domain.TransientError{Op: "judge", Err: errors.New("429")},
		&domain.TransientError{Op: "judge", Err: errors.New("503")},
	}}
	result, err := testRunner(2).Run(context.Background(), st, Input{})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, st.calls)
}

func TestRunnerExhaustsTransientBudget(t *testing.T) {
	st := &scriptedStage{errs: []error{
		&domain.TransientError{Op: "judge", Err: errors.New("down")},
		&domain.TransientError{Op: "judge", Err: errors.New("down")},
		&domain.TransientError{Op: "judge", Err: errors.New("down")},
	}}
	_, err := testRunner(2).Run(context.Background(), st, Input{})
	require.Error(t, err)
	assert.Equal(t, domain.KindTransient, domain.Classify(err))
	assert.Equal(t, 3, st.calls, "initial attempt plus two retries")
}

func TestRunnerRetriesSchemaMismatchOnce(t *testing.T) {
	st := &scriptedStage{errs: []error{
		&domain.SchemaMismatchError{Op: "aggregate", Detail: "bad json"},
	}}
	result, err := testRunner(0).Run(context.Background(), st, Input{})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, st.calls)
}

func TestRunnerSchemaMismatchTwiceFails(t *testing.T) {
	st := &scriptedStage{errs: []error{
		&domain.SchemaMismatchError{Op: "aggregate", Detail: "bad json"},
		&domain.SchemaMismatchError{Op: "aggregate", Detail: "bad json again"},
	}}
	_, err := testRunner(2).Run(context.Background(), st, Input{})
	require.Error(t, err)
	assert.Equal(t, domain.KindSchemaMismatch, domain.Classify(err))
	assert.Equal(t, 2, st.calls)
}

func TestRunnerDoesNotRetryFatal(t *testing.T) {
	st := &scriptedStage{errs: []error{
		&domain.FatalPipelineError{Err: errors.New("broken")},
	}}
	_, err := testRunner(2).Run(context.Background(), st, Input{})
	require.Error(t, err)
	assert.Equal(t, domain.KindFatal, domain.Classify(err))
	assert.Equal(t, 1, st.calls)
}

func TestRunnerTimeoutFailsWithoutRetry(t *testing.T) {
	st := &scriptedStage{block: true}
	r := testRunner(2)
	r.timeout = 20 * time.Millisecond

	_, err := r.Run(context.Background(), st, Input{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStageTimeout)
	assert.Equal(t, 1, st.calls, "a timed-out stage is failed, not retried")
}

func TestRunnerHonorsCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := &scriptedStage{block: true}
	r := testRunner(2)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := r.Run(ctx, st, Input{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, st.calls)
}

func TestRunnerHonorsRetryAfter(t *testing.T) {
	st := &scriptedStage{errs: []error{
		&domain.TransientError{Op: "judge", RetryAfter: 7 * time.Second, Err: errors.New("429")},
	}}
	r := testRunner(2)
	var slept []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	_, err := r.Run(context.Background(), st, Input{})
	require.NoError(t, err)
	require.Len(t, slept, 1)
	assert.Equal(t, 7*time.Second, slept[0])
}

func TestRunnerBackoffIsBounded(t *testing.T) {
	r := testRunner(2)
	err := &domain.TransientError{Op: "judge", Err: errors.New("down")}
	for attempt := 1; attempt <= 10; attempt++ {
		d := r.backoff(attempt, err)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, backoffMax)
	}
}
