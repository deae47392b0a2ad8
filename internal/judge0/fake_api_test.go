package judge0

import (
	"context"
	"fmt"
	"time"
)

// fakeAPI records calls and serves scripted status rounds.
type fakeAPI struct {
	submitted  [][]ExecutionRequest
	submitErr  error
	getCalls   int
	getErr     error
	getErrAt   int
	rounds     [][]int
	lastTokens []SubmissionToken
	reverse    bool
}

func (f *fakeAPI) SubmitBatch(ctx context.Context, requests []ExecutionRequest) ([]SubmissionToken, error) {
	f.submitted = append(f.submitted, requests)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	tokens := make([]SubmissionToken, len(requests))
	for i := range requests {
		tokens[i] = SubmissionToken(fmt.Sprintf("tok-%d", i))
	}
	return tokens, nil
}

func (f *fakeAPI) GetBatch(ctx context.Context, tokens []SubmissionToken) ([]ExecutionResult, error) {
	f.getCalls++
	f.lastTokens = tokens
	if f.getErr != nil && f.getCalls >= f.getErrAt {
		return nil, f.getErr
	}
	round := f.rounds[len(f.rounds)-1]
	if f.getCalls-1 < len(f.rounds) {
		round = f.rounds[f.getCalls-1]
	}
	results := make([]ExecutionResult, len(tokens))
	for i, token := range tokens {
		results[i] = ExecutionResult{Token: token, StatusID: round[i], Stdout: fmt.Sprintf("out-%d", i), LanguageID: 71}
	}
	if f.reverse {
		for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
			results[i], results[j] = results[j], results[i]
		}
	}
	return results, nil
}

// recordingSleep captures requested sleeps without waiting.
type recordingSleep struct {
	slept []time.Duration
	err   error
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.slept = append(r.slept, d)
	return r.err
}

func repeatStatus(status, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = status
	}
	return out
}
