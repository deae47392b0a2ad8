package repository

import "time"

// Submission is a user's graded attempt at a problem.
type Submission struct {
	ID         int64
	UserID     int64
	ProblemID  int64
	SourceCode string
	Language   string
	Status     string
	TestCases  []TestCaseResult
	CreatedAt  time.Time
}

// TestCaseResult is the judge's verdict for one test case of a submission.
type TestCaseResult struct {
	ID           int64
	SubmissionID int64
	// TestCase is 1-based.
	TestCase int
	Passed   bool
	Stdout   string
	Expected string
	Stderr   string
	Status   string
}
