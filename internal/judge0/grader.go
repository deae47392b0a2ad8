package judge0

import (
	"context"

	pkgerrors "leetlab/pkg/errors"
)

// GradeReport carries the per-test-case results and the verdict of one run.
type GradeReport struct {
	Language Language
	Results  []ExecutionResult
	Outcome  ValidationOutcome
}

// Grader runs submit, poll and aggregate for one source against a problem's test cases.
type Grader struct {
	submitter *Submitter
	poller    *Poller
}

// NewGrader wires a Grader over a BatchAPI.
func NewGrader(api BatchAPI, policy PollPolicy, sleep SleepFunc) *Grader {
	return &Grader{
		submitter: NewSubmitter(api),
		poller:    NewPoller(api, policy, sleep),
	}
}

// Grade judges sourceCode in an already resolved language. A failing test case
// is reported in the outcome, not as an error.
func (g *Grader) Grade(ctx context.Context, lang Language, sourceCode string, testcases []TestCase) (GradeReport, error) {
	tokens, err := g.submitter.Submit(ctx, testcases, sourceCode, lang.ID)
	if err != nil {
		return GradeReport{}, err
	}
	results, err := g.poller.Poll(ctx, tokens)
	if err != nil {
		return GradeReport{}, err
	}
	return GradeReport{
		Language: lang,
		Results:  results,
		Outcome:  Aggregate(lang.Name, results),
	}, nil
}

// RequireLanguage resolves name or returns a LanguageNotSupported error naming it.
func RequireLanguage(name string) (Language, error) {
	lang, ok := ResolveLanguage(name)
	if !ok {
		return Language{}, pkgerrors.Newf(pkgerrors.LanguageNotSupported, "Language not supported: %s", name).
			WithDetail("language", name)
	}
	return lang, nil
}
