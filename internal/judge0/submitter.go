package judge0

import (
	"context"

	pkgerrors "leetlab/pkg/errors"
	"leetlab/pkg/utils/logger"

	"go.uber.org/zap"
)

// BuildRequests creates one execution request per test case, in test case order.
func BuildRequests(testcases []TestCase, sourceCode string, languageID int) []ExecutionRequest {
	requests := make([]ExecutionRequest, len(testcases))
	for i, tc := range testcases {
		requests[i] = ExecutionRequest{
			SourceCode:     sourceCode,
			LanguageID:     languageID,
			Stdin:          tc.Input,
			ExpectedOutput: tc.Output,
		}
	}
	return requests
}

// Submitter sends a solution against all test cases as a single batch.
type Submitter struct {
	api BatchAPI
}

// NewSubmitter creates a Submitter.
func NewSubmitter(api BatchAPI) *Submitter {
	return &Submitter{api: api}
}

// Submit returns one token per test case; tokens[i] belongs to testcases[i].
// Failures are not retried.
func (s *Submitter) Submit(ctx context.Context, testcases []TestCase, sourceCode string, languageID int) ([]SubmissionToken, error) {
	if len(testcases) == 0 {
		return nil, pkgerrors.New(pkgerrors.TestCaseInvalid).WithMessage("at least one test case is required")
	}

	tokens, err := s.api.SubmitBatch(ctx, BuildRequests(testcases, sourceCode, languageID))
	if err != nil {
		logger.Error(ctx, "judge batch submit failed",
			zap.Int("language_id", languageID),
			zap.Int("testcases", len(testcases)),
			zap.Error(err),
		)
		return nil, pkgerrors.Wrapf(err, pkgerrors.JudgeSubmitFailed, "submit batch to judge failed")
	}
	if len(tokens) != len(testcases) {
		return nil, pkgerrors.Newf(pkgerrors.JudgeSubmitFailed, "judge returned %d tokens for %d test cases", len(tokens), len(testcases))
	}

	logger.Debug(ctx, "judge batch submitted", zap.Int("language_id", languageID), zap.Int("tokens", len(tokens)))
	return tokens, nil
}
