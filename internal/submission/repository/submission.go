package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"leetlab/internal/common/db"
)

type SubmissionRepository interface {
	// Create stores the submission and its test case results atomically.
	Create(ctx context.Context, submission *Submission) (int64, error)
	ListByUser(ctx context.Context, userID, problemID int64) ([]*Submission, error)
}

type MySQLSubmissionRepository struct {
	dbProvider db.Provider
}

func NewSubmissionRepository(provider db.Provider) SubmissionRepository {
	return &MySQLSubmissionRepository{dbProvider: provider}
}

const (
	submissionColumns = "id, user_id, problem_id, source_code, language, status, created_at"
	testCaseColumns   = "id, submission_id, testcase, passed, stdout, expected, stderr, status"
)

func (r *MySQLSubmissionRepository) Create(ctx context.Context, submission *Submission) (int64, error) {
	if submission == nil {
		return 0, errors.New("submission is nil")
	}
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return 0, err
	}

	err = database.Transaction(ctx, func(tx db.Transaction) error {
		result, err := tx.Exec(ctx,
			"INSERT INTO submissions (user_id, problem_id, source_code, language, status) VALUES (?, ?, ?, ?, ?)",
			submission.UserID, submission.ProblemID, submission.SourceCode, submission.Language, submission.Status,
		)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		submission.ID = id

		for i := range submission.TestCases {
			tc := &submission.TestCases[i]
			tc.SubmissionID = id
			result, err := tx.Exec(ctx,
				"INSERT INTO submission_testcases (submission_id, testcase, passed, stdout, expected, stderr, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
				id, tc.TestCase, tc.Passed, tc.Stdout, tc.Expected, nullableString(tc.Stderr), tc.Status,
			)
			if err != nil {
				return err
			}
			if tc.ID, err = result.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return submission.ID, nil
}

func (r *MySQLSubmissionRepository) ListByUser(ctx context.Context, userID, problemID int64) ([]*Submission, error) {
	querier, err := db.GetProviderQuerier(r.dbProvider, nil)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + submissionColumns + " FROM submissions WHERE user_id = ?"
	args := []interface{}{userID}
	if problemID > 0 {
		query += " AND problem_id = ?"
		args = append(args, problemID)
	}
	query += " ORDER BY id DESC"

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	submissions, err := scanSubmissions(rows)
	if err != nil {
		return nil, err
	}
	if len(submissions) == 0 {
		return submissions, nil
	}

	byID := make(map[int64]*Submission, len(submissions))
	placeholders := make([]string, 0, len(submissions))
	ids := make([]interface{}, 0, len(submissions))
	for _, s := range submissions {
		byID[s.ID] = s
		placeholders = append(placeholders, "?")
		ids = append(ids, s.ID)
	}
	tcQuery := "SELECT " + testCaseColumns + " FROM submission_testcases WHERE submission_id IN (" +
		strings.Join(placeholders, ",") + ") ORDER BY submission_id, testcase"
	tcRows, err := querier.Query(ctx, tcQuery, ids...)
	if err != nil {
		return nil, err
	}
	results, err := scanTestCaseResults(tcRows)
	if err != nil {
		return nil, err
	}
	for _, tc := range results {
		if s, ok := byID[tc.SubmissionID]; ok {
			s.TestCases = append(s.TestCases, tc)
		}
	}
	return submissions, nil
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func scanSubmissions(rows db.Rows) ([]*Submission, error) {
	defer func() { _ = rows.Close() }()

	out := make([]*Submission, 0)
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.UserID, &s.ProblemID, &s.SourceCode, &s.Language, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanTestCaseResults(rows db.Rows) ([]TestCaseResult, error) {
	defer func() { _ = rows.Close() }()

	out := make([]TestCaseResult, 0)
	for rows.Next() {
		var tc TestCaseResult
		var stderr sql.NullString
		if err := rows.Scan(&tc.ID, &tc.SubmissionID, &tc.TestCase, &tc.Passed, &tc.Stdout, &tc.Expected, &stderr, &tc.Status); err != nil {
			return nil, err
		}
		tc.Stderr = stderr.String
		out = append(out, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
