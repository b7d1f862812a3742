package orchestrator

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"

	searcherrors "github.com/jordigilh/omnisearch-orchestrator/internal/errors"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/metrics"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/searcher"
)

const (
	defaultMaxRetries         = 2
	defaultPerAttemptDeadline = 30 * time.Second
	backoffBaseMs             = 1000
	backoffCapMs              = 5000
)

// attemptOutcome is the tagged result of one fully-retried dispatch to
// a single provider, used instead of a bare error so the fallback loop
// can distinguish cancellation from a retryable provider failure.
type attemptOutcome struct {
	results      []searcher.Result
	err          *searcherrors.SearchError
	responseTime time.Duration
	timer        *metrics.Timer
	cancelled    bool
}

// fixedExpBackOff implements backoff.BackOff with a capped exponential
// schedule: min(1000*2^attempt, 5000) ms between attempts.
type fixedExpBackOff struct {
	attempt int
}

func (b *fixedExpBackOff) NextBackOff() time.Duration {
	ms := math.Min(backoffBaseMs*math.Pow(2, float64(b.attempt)), backoffCapMs)
	b.attempt++
	return time.Duration(ms) * time.Millisecond
}

func (b *fixedExpBackOff) Reset() { b.attempt = 0 }

// attemptSearch dispatches params to s, retrying up to maxRetries times
// with exponential backoff between attempts, racing each individual
// call against perAttemptDeadline. It never retries INVALID_INPUT,
// RATE_LIMIT, AUTHENTICATION_ERROR, or a parent cancellation — those
// surface immediately to the outer fallback loop.
func (o *Orchestrator) attemptSearch(ctx context.Context, s searcher.Searcher, params searcher.Params, maxRetries int, perAttemptDeadline time.Duration) attemptOutcome {
	var last attemptOutcome

	operation := func() ([]searcher.Result, error) {
		out := o.singleAttempt(ctx, s, params, perAttemptDeadline)
		last = out

		if out.cancelled {
			return nil, backoff.Permanent(out.err)
		}
		if out.err == nil {
			return out.results, nil
		}
		if !searcherrors.IsRetryable(out.err) {
			return nil, backoff.Permanent(out.err)
		}
		return nil, out.err
	}

	results, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&fixedExpBackOff{}),
		backoff.WithMaxTries(uint(maxRetries+1)),
	)
	if err == nil {
		last.results = results
		last.err = nil
	}
	return last
}

// singleAttempt executes exactly one call to s.Search, racing it against
// a per-call deadline and classifying the outcome into the closed
// error taxonomy.
func (o *Orchestrator) singleAttempt(ctx context.Context, s searcher.Searcher, params searcher.Params, deadline time.Duration) attemptOutcome {
	attemptCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	breaker := o.breakerFor(s.Name())

	timer := metrics.NewTimer()
	results, err := breaker.Execute(func() ([]searcher.Result, error) {
		return s.Search(attemptCtx, params)
	})
	elapsed := timer.Elapsed()

	if err == nil {
		return attemptOutcome{results: results, responseTime: elapsed, timer: timer}
	}

	if errors.Is(err, gobreaker.ErrOpenState) {
		return attemptOutcome{
			err:          searcherrors.New(searcherrors.ErrorTypeProviderError, s.Name(), "inner circuit breaker open"),
			responseTime: elapsed,
			timer:        timer,
		}
	}

	if ctx.Err() != nil {
		return attemptOutcome{
			err:          searcherrors.New(searcherrors.ErrorTypeInternal, s.Name(), "cancelled"),
			responseTime: elapsed,
			timer:        timer,
			cancelled:    true,
		}
	}

	if attemptCtx.Err() == context.DeadlineExceeded {
		return attemptOutcome{
			err:          searcherrors.New(searcherrors.ErrorTypeTimeout, s.Name(), "attempt exceeded per-call deadline"),
			responseTime: elapsed,
			timer:        timer,
		}
	}

	se, ok := err.(*searcherrors.SearchError)
	if !ok {
		se = searcherrors.Wrap(err, searcherrors.ErrorTypeAPIError, s.Name(), err.Error())
	}
	se = searcherrors.Classify(se)
	return attemptOutcome{err: se, responseTime: elapsed, timer: timer}
}

// sleep blocks for ms milliseconds or until ctx is cancelled, whichever
// comes first, reporting cancellation so the fallback loop can abort an
// inter-provider delay.
func (o *Orchestrator) sleep(ctx context.Context, ms int) error {
	if ms <= 0 {
		return nil
	}
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
