// Package fallback runs an ordered list of candidates until one succeeds,
// retrying a candidate only while its errors are classified as retryable.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// ErrExhausted is matched by the error Run returns once every candidate has
// been abandoned.
var ErrExhausted = errors.New("all candidates exhausted")

type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeRetryable Outcome = "retryable"
	OutcomeFatal     Outcome = "fatal"
)

// Attempt records one invocation of one candidate.
type Attempt struct {
	Candidate string
	Number    int
	Outcome   Outcome
	Elapsed   time.Duration
	Err       error
}

type Candidate[T any] struct {
	Name   string
	Invoke func(ctx context.Context) (T, error)
}

type Policy struct {
	// MaxAttempts per candidate. Values below 1 mean a single attempt.
	MaxAttempts int
	// Retryable decides whether an error keeps the current candidate. nil
	// treats every error as fatal for that candidate.
	Retryable func(error) bool
	// Backoff returns the pause before the retry following attempt n (0-based).
	Backoff func(attempt int) time.Duration
	Sleep   func(ctx context.Context, d time.Duration) error
	// OnAttempt observes every attempt. It cannot affect the outcome.
	OnAttempt func(Attempt)
	Now       func() time.Time
}

type Result[T any] struct {
	Value     T
	Candidate string
	Attempts  []Attempt
}

// ExhaustedError carries the full attempt history of a failed run.
type ExhaustedError struct {
	Attempts []Attempt
	Last     error
}

func (e *ExhaustedError) Error() string {
	tried := make([]string, 0, len(e.Attempts))
	seen := map[string]bool{}
	for _, a := range e.Attempts {
		if !seen[a.Candidate] {
			seen[a.Candidate] = true
			tried = append(tried, a.Candidate)
		}
	}
	msg := fmt.Sprintf("%s after %d attempts [%s]", ErrExhausted, len(e.Attempts), strings.Join(tried, ", "))
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Run tries candidates in order. It returns the first successful value, the
// context error if ctx ends first, or an *ExhaustedError.
func Run[T any](ctx context.Context, candidates []Candidate[T], p Policy) (Result[T], error) {
	p = p.withDefaults()
	var (
		res  Result[T]
		last error
	)
	for _, c := range candidates {
		for n := 0; n < p.MaxAttempts; n++ {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			start := p.Now()
			v, err := c.Invoke(ctx)
			a := Attempt{Candidate: c.Name, Number: n + 1, Elapsed: p.Now().Sub(start), Err: err}

			if err == nil {
				a.Outcome = OutcomeSuccess
				res.Attempts = append(res.Attempts, a)
				p.observe(a)
				res.Value = v
				res.Candidate = c.Name
				return res, nil
			}
			last = err

			retry := p.Retryable(err)
			if retry {
				a.Outcome = OutcomeRetryable
			} else {
				a.Outcome = OutcomeFatal
			}
			res.Attempts = append(res.Attempts, a)
			p.observe(a)

			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			if !retry || n == p.MaxAttempts-1 {
				break
			}
			if err := p.Sleep(ctx, p.Backoff(n)); err != nil {
				return res, err
			}
		}
	}
	return res, &ExhaustedError{Attempts: res.Attempts, Last: last}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Retryable == nil {
		p.Retryable = func(error) bool { return false }
	}
	if p.Backoff == nil {
		p.Backoff = func(int) time.Duration { return 0 }
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return p
}

func (p Policy) observe(a Attempt) {
	if p.OnAttempt == nil {
		return
	}
	defer func() { _ = recover() }()
	p.OnAttempt(a)
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ExponentialJitter waits 2^attempt units plus a uniform [0,1) unit of jitter.
// rnd may be nil.
func ExponentialJitter(unit time.Duration, rnd func() float64) func(int) time.Duration {
	if rnd == nil {
		rnd = rand.Float64
	}
	return func(attempt int) time.Duration {
		if attempt < 0 {
			attempt = 0
		}
		if attempt > 16 {
			attempt = 16
		}
		return time.Duration(float64(unit) * (float64(int64(1)<<attempt) + rnd()))
	}
}
