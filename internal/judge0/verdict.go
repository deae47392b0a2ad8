package judge0

// Aggregate scans results in test case order and fails on the first one that
// is not Accepted.
func Aggregate(language string, results []ExecutionResult) ValidationOutcome {
	for i, r := range results {
		if r.StatusID != StatusAccepted {
			index := i + 1
			return ValidationOutcome{
				Language:        language,
				Passed:          false,
				FailingTestCase: &index,
				FailingStatusID: r.StatusID,
			}
		}
	}
	return ValidationOutcome{Language: language, Passed: true}
}
