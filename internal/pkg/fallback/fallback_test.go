package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errLimited = errors.New("429 rate limited")
	errBroken  = errors.New("500 broken")
)

func isLimited(err error) bool { return errors.Is(err, errLimited) }

type sleepLog struct{ waits []time.Duration }

func (s *sleepLog) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func always(name string, err error, calls map[string]int) Candidate[string] {
	return Candidate[string]{Name: name, Invoke: func(context.Context) (string, error) {
		calls[name]++
		if err != nil {
			return "", err
		}
		return "from " + name, nil
	}}
}

func TestRunAttributesSuccessAfterRateLimitedCandidates(t *testing.T) {
	for k := 0; k <= 3; k++ {
		calls := map[string]int{}
		var cands []Candidate[string]
		names := []string{"m1", "m2", "m3", "m4"}
		for i := 0; i < k; i++ {
			cands = append(cands, always(names[i], errLimited, calls))
		}
		cands = append(cands, always(names[k], nil, calls))
		sl := &sleepLog{}

		res, err := Run(context.Background(), cands, Policy{MaxAttempts: 3, Retryable: isLimited, Sleep: sl.sleep})

		require.NoError(t, err)
		assert.Equal(t, names[k], res.Candidate)
		assert.Equal(t, "from "+names[k], res.Value)
		for i := 0; i < k; i++ {
			assert.Equal(t, 3, calls[names[i]], "candidate %s", names[i])
		}
		assert.Len(t, res.Attempts, 3*k+1)
		assert.Equal(t, OutcomeSuccess, res.Attempts[len(res.Attempts)-1].Outcome)
		// no pause after the final attempt of a candidate
		assert.Len(t, sl.waits, 2*k)
	}
}

func TestRunExhaustsAfterEveryAttempt(t *testing.T) {
	calls := map[string]int{}
	cands := []Candidate[string]{
		always("a", errLimited, calls),
		always("b", errLimited, calls),
		always("c", errLimited, calls),
	}

	res, err := Run(context.Background(), cands, Policy{MaxAttempts: 3, Retryable: isLimited, Sleep: (&sleepLog{}).sleep})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, errLimited)
	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Len(t, ex.Attempts, 9)
	assert.Len(t, res.Attempts, 9)
	assert.Contains(t, err.Error(), "[a, b, c]")
}

func TestRunFatalErrorAdvancesWithoutRetry(t *testing.T) {
	calls := map[string]int{}
	res, err := Run(context.Background(), []Candidate[string]{always("only", errBroken, calls)},
		Policy{MaxAttempts: 3, Retryable: isLimited})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls["only"])
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, OutcomeFatal, res.Attempts[0].Outcome)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := map[string]int{}
	cands := []Candidate[string]{
		{Name: "first", Invoke: func(context.Context) (string, error) {
			calls["first"]++
			cancel()
			return "", errLimited
		}},
		always("second", nil, calls),
	}

	_, err := Run(ctx, cands, Policy{MaxAttempts: 3, Retryable: isLimited})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls["first"])
	assert.Zero(t, calls["second"])
}

func TestRunSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	calls := map[string]int{}

	start := time.Now()
	_, err := Run(ctx, []Candidate[string]{always("slow", errLimited, calls)}, Policy{
		MaxAttempts: 3,
		Retryable:   isLimited,
		Backoff:     func(int) time.Duration { return time.Hour },
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, calls["slow"])
}

func TestRunObserverPanicIsIgnored(t *testing.T) {
	calls := map[string]int{}
	var seen []Attempt
	res, err := Run(context.Background(), []Candidate[string]{
		always("bad", errBroken, calls),
		always("good", nil, calls),
	}, Policy{OnAttempt: func(a Attempt) {
		seen = append(seen, a)
		panic("observer exploded")
	}})

	require.NoError(t, err)
	assert.Equal(t, "good", res.Candidate)
	require.Len(t, seen, 2)
	assert.Equal(t, "bad", seen[0].Candidate)
	assert.Equal(t, 1, seen[0].Number)
}

func TestRunNoCandidates(t *testing.T) {
	_, err := Run[string](context.Background(), nil, Policy{})
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestExponentialJitter(t *testing.T) {
	b := ExponentialJitter(time.Second, func() float64 { return 0.5 })
	assert.Equal(t, 1500*time.Millisecond, b(0))
	assert.Equal(t, 2500*time.Millisecond, b(1))
	assert.Equal(t, 4500*time.Millisecond, b(2))

	for i := 0; i < 50; i++ {
		d := ExponentialJitter(time.Second, nil)(1)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.Less(t, d, 3*time.Second)
	}
}
