package judge0

// TestCase is one stdin/expected-stdout pair of a problem.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ExecutionRequest is one entry of a batch submission.
type ExecutionRequest struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

// SubmissionToken identifies one execution on the judge.
type SubmissionToken string

// ExecutionResult is the judge's view of one execution.
type ExecutionResult struct {
	Token      SubmissionToken `json:"token"`
	StatusID   int             `json:"status_id"`
	Stdout     string          `json:"stdout"`
	Stderr     string          `json:"stderr"`
	LanguageID int             `json:"language_id"`
}

// ValidationOutcome is the verdict for one (language, source) pair.
// FailingTestCase is 1-based and nil when Passed.
type ValidationOutcome struct {
	Language        string
	Passed          bool
	FailingTestCase *int
	FailingStatusID int
}
