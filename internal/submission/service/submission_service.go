package service

import (
	"context"
	"fmt"
	"strings"

	"leetlab/internal/judge0"
	problemrepo "leetlab/internal/problem/repository"
	"leetlab/internal/submission/repository"
	pkgerrors "leetlab/pkg/errors"
	"leetlab/pkg/utils/logger"

	"go.uber.org/zap"
)

// StatusAccepted is stored on a submission whose every test case passed.
const StatusAccepted = problemrepo.SubmissionStatusAccepted

const defaultMaxCodeBytes = 64 * 1024

// Grader runs one source against a set of test cases.
type Grader interface {
	Grade(ctx context.Context, lang judge0.Language, sourceCode string, testcases []judge0.TestCase) (judge0.GradeReport, error)
}

// ProblemReader loads the problem a submission targets.
type ProblemReader interface {
	GetProblem(ctx context.Context, problemID int64) (*problemrepo.Problem, error)
}

// SubmissionService runs user code through the judge and records the outcome.
type SubmissionService struct {
	repo         repository.SubmissionRepository
	problems     ProblemReader
	grader       Grader
	maxCodeBytes int
}

// NewSubmissionService creates a new SubmissionService. maxCodeBytes <= 0 uses the default limit.
func NewSubmissionService(repo repository.SubmissionRepository, problems ProblemReader, grader Grader, maxCodeBytes int) *SubmissionService {
	if maxCodeBytes <= 0 {
		maxCodeBytes = defaultMaxCodeBytes
	}
	return &SubmissionService{repo: repo, problems: problems, grader: grader, maxCodeBytes: maxCodeBytes}
}

// SubmitInput represents a user's code submission.
type SubmitInput struct {
	UserID     int64
	ProblemID  int64
	SourceCode string
	Language   string
}

// Submit grades the source against the problem's test cases. A failing test
// case still produces a stored submission; judge errors do not.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*repository.Submission, error) {
	if strings.TrimSpace(input.SourceCode) == "" {
		return nil, pkgerrors.New(pkgerrors.RequiredFieldEmpty).WithMessage("source code is required")
	}
	if len(input.SourceCode) > s.maxCodeBytes {
		return nil, pkgerrors.Newf(pkgerrors.CodeTooLarge, "source code exceeds %d bytes", s.maxCodeBytes)
	}
	lang, err := judge0.RequireLanguage(input.Language)
	if err != nil {
		return nil, err
	}

	problem, err := s.problems.GetProblem(ctx, input.ProblemID)
	if err != nil {
		return nil, err
	}
	if len(problem.TestCases) == 0 {
		return nil, pkgerrors.New(pkgerrors.TestCaseInvalid).WithMessage("problem has no test cases")
	}

	report, err := s.grader.Grade(ctx, lang, input.SourceCode, problem.TestCases)
	if err != nil {
		return nil, err
	}

	submission := buildSubmission(input, lang, problem.TestCases, report)
	if _, err := s.repo.Create(ctx, submission); err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("create submission failed: %w", err), pkgerrors.SubmissionCreateFailed)
	}

	logger.Info(ctx, "submission judged",
		zap.Int64("submission_id", submission.ID),
		zap.Int64("problem_id", submission.ProblemID),
		zap.String("language", lang.Name),
		zap.String("status", submission.Status),
	)
	return submission, nil
}

// ListSubmissions returns the user's submissions, newest first. problemID <= 0 lists all problems.
func (s *SubmissionService) ListSubmissions(ctx context.Context, userID, problemID int64) ([]*repository.Submission, error) {
	submissions, err := s.repo.ListByUser(ctx, userID, problemID)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("list submissions failed: %w", err), pkgerrors.DatabaseError)
	}
	return submissions, nil
}

func buildSubmission(input SubmitInput, lang judge0.Language, testcases []judge0.TestCase, report judge0.GradeReport) *repository.Submission {
	status := StatusAccepted
	if !report.Outcome.Passed {
		status = judge0.StatusName(report.Outcome.FailingStatusID)
	}

	results := make([]repository.TestCaseResult, 0, len(report.Results))
	for i, r := range report.Results {
		expected := ""
		if i < len(testcases) {
			expected = testcases[i].Output
		}
		results = append(results, repository.TestCaseResult{
			TestCase: i + 1,
			Passed:   r.StatusID == judge0.StatusAccepted,
			Stdout:   r.Stdout,
			Expected: expected,
			Stderr:   r.Stderr,
			Status:   judge0.StatusName(r.StatusID),
		})
	}

	return &repository.Submission{
		UserID:     input.UserID,
		ProblemID:  input.ProblemID,
		SourceCode: input.SourceCode,
		Language:   lang.Name,
		Status:     status,
		TestCases:  results,
	}
}
