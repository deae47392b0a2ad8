package service

import (
	"context"
	"sort"

	"leetlab/internal/judge0"
	pkgerrors "leetlab/pkg/errors"
	"leetlab/pkg/utils/logger"

	"go.uber.org/zap"
)

// SolutionGrader runs one source against a set of test cases.
type SolutionGrader interface {
	Grade(ctx context.Context, lang judge0.Language, sourceCode string, testcases []judge0.TestCase) (judge0.GradeReport, error)
}

// ReferenceValidator checks that every reference solution passes every test case.
type ReferenceValidator struct {
	grader SolutionGrader
}

// NewReferenceValidator creates a ReferenceValidator.
func NewReferenceValidator(grader SolutionGrader) *ReferenceValidator {
	return &ReferenceValidator{grader: grader}
}

type referenceSolution struct {
	name string
	lang judge0.Language
	code string
}

// Validate grades each reference solution in language-name order and stops at the
// first failure. Every language is resolved before the judge is called.
func (v *ReferenceValidator) Validate(ctx context.Context, testcases []judge0.TestCase, solutions map[string]string) ([]judge0.ValidationOutcome, error) {
	if len(testcases) == 0 {
		return nil, pkgerrors.New(pkgerrors.TestCaseInvalid).WithMessage("at least one test case is required")
	}
	if len(solutions) == 0 {
		return nil, pkgerrors.New(pkgerrors.InvalidParams).WithMessage("at least one reference solution is required")
	}

	names := make([]string, 0, len(solutions))
	for name := range solutions {
		names = append(names, name)
	}
	sort.Strings(names)

	ordered := make([]referenceSolution, 0, len(names))
	for _, name := range names {
		lang, err := judge0.RequireLanguage(name)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, referenceSolution{name: name, lang: lang, code: solutions[name]})
	}

	outcomes := make([]judge0.ValidationOutcome, 0, len(ordered))
	for _, solution := range ordered {
		report, err := v.grader.Grade(ctx, solution.lang, solution.code, testcases)
		if err != nil {
			return nil, err
		}
		outcome := report.Outcome
		if !outcome.Passed {
			index := 0
			if outcome.FailingTestCase != nil {
				index = *outcome.FailingTestCase
			}
			logger.Info(ctx, "reference solution rejected",
				zap.String("language", solution.name),
				zap.Int("testcase", index),
				zap.String("status", judge0.StatusName(outcome.FailingStatusID)),
			)
			return nil, pkgerrors.Newf(pkgerrors.ReferenceSolutionFailed, "Testcase %d failed for language %s", index, solution.name).
				WithDetail("language", solution.name).
				WithDetail("testcase", index).
				WithDetail("status", judge0.StatusName(outcome.FailingStatusID))
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
