package judge0

import (
	"context"
	"fmt"
	"time"

	pkgerrors "leetlab/pkg/errors"
	"leetlab/pkg/utils/logger"

	"go.uber.org/zap"
)

// PollStep is the decision taken after a round that still had pending executions.
type PollStep struct {
	// Sleep is the wait before the next round.
	Sleep time.Duration
	// NextDelay is the backoff to pass into the following NextState call.
	NextDelay time.Duration
	Continue  bool
}

// NextState decides what follows pending round number round (1-based) given the
// backoff computed so far. It stops once MaxRetries rounds have been spent;
// otherwise it sleeps delay and doubles it up to MaxDelay.
func (p PollPolicy) NextState(round int, delay time.Duration) PollStep {
	if round >= p.MaxRetries {
		return PollStep{}
	}
	if delay <= 0 {
		delay = p.InitialDelay
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	next := delay * 2
	if p.MaxDelay > 0 && next > p.MaxDelay {
		next = p.MaxDelay
	}
	return PollStep{Sleep: delay, NextDelay: next, Continue: true}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poller waits for a batch of executions to reach a terminal status.
type Poller struct {
	api    BatchAPI
	policy PollPolicy
	sleep  SleepFunc
}

// NewPoller creates a Poller; a nil sleep uses a context-aware timer.
func NewPoller(api BatchAPI, policy PollPolicy, sleep SleepFunc) *Poller {
	if sleep == nil {
		sleep = sleepContext
	}
	return &Poller{api: api, policy: policy, sleep: sleep}
}

// Poll queries the judge until every token is terminal and returns the results
// in token order. It never returns partial results: a query error aborts with
// JudgePollFailed and running out of rounds fails with JudgePollExhausted.
func (p *Poller) Poll(ctx context.Context, tokens []SubmissionToken) ([]ExecutionResult, error) {
	if len(tokens) == 0 {
		return []ExecutionResult{}, nil
	}

	delay := p.policy.InitialDelay
	for round := 1; ; round++ {
		results, err := p.api.GetBatch(ctx, tokens)
		if err == nil {
			results, err = orderByToken(tokens, results)
		}
		if err != nil {
			logger.Error(ctx, "judge result query failed",
				zap.Int("round", round),
				zap.Int("tokens", len(tokens)),
				zap.Error(err),
			)
			return nil, pkgerrors.Wrapf(err, pkgerrors.JudgePollFailed, "fetch results from judge failed")
		}

		pending := countPending(results)
		if pending == 0 {
			logger.Debug(ctx, "judge results ready", zap.Int("round", round), zap.Int("tokens", len(tokens)))
			return results, nil
		}

		step := p.policy.NextState(round, delay)
		if !step.Continue {
			logger.Warn(ctx, "judge polling exhausted",
				zap.Int("rounds", round),
				zap.Int("pending", pending),
				zap.Int("tokens", len(tokens)),
			)
			return nil, pkgerrors.New(pkgerrors.JudgePollExhausted).
				WithDetail("rounds", round).
				WithDetail("pending", pending)
		}

		logger.Debug(ctx, "judge results pending",
			zap.Int("round", round),
			zap.Int("pending", pending),
			zap.Duration("sleep", step.Sleep),
		)
		if err := p.sleep(ctx, step.Sleep); err != nil {
			logger.Warn(ctx, "judge polling interrupted", zap.Int("round", round), zap.Error(err))
			return nil, pkgerrors.Wrapf(err, pkgerrors.JudgePollFailed, "polling interrupted")
		}
		delay = step.NextDelay
	}
}

// orderByToken aligns results with tokens; every token must be present.
func orderByToken(tokens []SubmissionToken, results []ExecutionResult) ([]ExecutionResult, error) {
	byToken := make(map[SubmissionToken]ExecutionResult, len(results))
	for _, r := range results {
		byToken[r.Token] = r
	}
	ordered := make([]ExecutionResult, len(tokens))
	for i, token := range tokens {
		r, ok := byToken[token]
		if !ok {
			return nil, fmt.Errorf("judge response missing token %s", token)
		}
		ordered[i] = r
	}
	return ordered, nil
}

func countPending(results []ExecutionResult) int {
	pending := 0
	for _, r := range results {
		if IsPending(r.StatusID) {
			pending++
		}
	}
	return pending
}
