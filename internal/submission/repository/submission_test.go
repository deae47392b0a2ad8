package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"leetlab/internal/common/db"
)

type execCall struct {
	query string
	args  []interface{}
}

type fakeResult struct{ id int64 }

func (r fakeResult) LastInsertId() (int64, error) { return r.id, nil }
func (r fakeResult) RowsAffected() (int64, error) { return 1, nil }

type fakeRows struct {
	data [][]interface{}
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.data[r.pos-1]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d columns into %d targets", len(row), len(dest))
	}
	for i, value := range row {
		switch d := dest[i].(type) {
		case *int64:
			*d = value.(int64)
		case *int:
			*d = value.(int)
		case *string:
			*d = value.(string)
		case *bool:
			*d = value.(bool)
		case *time.Time:
			*d = value.(time.Time)
		case *sql.NullString:
			if value == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: value.(string), Valid: true}
			}
		default:
			return fmt.Errorf("scan: unsupported target %T", dest[i])
		}
	}
	return nil
}

func (r *fakeRows) Close() error { return nil }
func (r *fakeRows) Err() error   { return nil }

type fakeDB struct {
	execs      []execCall
	queries    []execCall
	nextID     int64
	failOn     string
	committed  bool
	rolledBack bool
	results    map[string][][]interface{}
}

func (f *fakeDB) Query(ctx context.Context, query string, args ...interface{}) (db.Rows, error) {
	f.queries = append(f.queries, execCall{query: query, args: args})
	for prefix, rows := range f.results {
		if strings.Contains(query, prefix) {
			return &fakeRows{data: rows}, nil
		}
	}
	return &fakeRows{}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, query string, args ...interface{}) db.Row {
	return nil
}

func (f *fakeDB) Exec(ctx context.Context, query string, args ...interface{}) (db.Result, error) {
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return nil, errors.New("exec failed")
	}
	f.execs = append(f.execs, execCall{query: query, args: args})
	f.nextID++
	return fakeResult{id: f.nextID}, nil
}

func (f *fakeDB) Transaction(ctx context.Context, fn func(tx db.Transaction) error) error {
	if err := fn(fakeTx{f}); err != nil {
		f.rolledBack = true
		return err
	}
	f.committed = true
	return nil
}

func (f *fakeDB) Ping(ctx context.Context) error { return nil }
func (f *fakeDB) Close() error                   { return nil }

type fakeTx struct{ *fakeDB }

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

func sampleSubmission() *Submission {
	return &Submission{
		UserID:     3,
		ProblemID:  7,
		SourceCode: "print(3)",
		Language:   "PYTHON",
		Status:     "Wrong Answer",
		TestCases: []TestCaseResult{
			{TestCase: 1, Passed: true, Stdout: "3", Expected: "3", Status: "Accepted"},
			{TestCase: 2, Passed: false, Stdout: "3", Expected: "4", Stderr: "warn", Status: "Wrong Answer"},
		},
	}
}

func TestCreateWritesSubmissionAndResultsInOneTransaction(t *testing.T) {
	fake := &fakeDB{}
	repo := NewSubmissionRepository(db.NewManager(fake))

	submission := sampleSubmission()
	id, err := repo.Create(context.Background(), submission)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 1 || submission.ID != 1 || !fake.committed {
		t.Fatalf("id=%d submission.ID=%d committed=%v", id, submission.ID, fake.committed)
	}
	if len(fake.execs) != 3 {
		t.Fatalf("expected 3 inserts, got %d", len(fake.execs))
	}
	if !strings.Contains(fake.execs[0].query, "INSERT INTO submissions") {
		t.Fatalf("first insert: %s", fake.execs[0].query)
	}
	second := fake.execs[2]
	if second.args[0] != int64(1) || second.args[1] != 2 {
		t.Fatalf("test case row not linked: %v", second.args)
	}
	if stderr := fake.execs[1].args[5].(sql.NullString); stderr.Valid {
		t.Fatalf("empty stderr should be stored as NULL")
	}
	if submission.TestCases[1].SubmissionID != 1 || submission.TestCases[1].ID != 3 {
		t.Fatalf("result ids not assigned: %+v", submission.TestCases[1])
	}
}

func TestCreateRollsBackOnResultFailure(t *testing.T) {
	fake := &fakeDB{failOn: "submission_testcases"}
	repo := NewSubmissionRepository(db.NewManager(fake))

	if _, err := repo.Create(context.Background(), sampleSubmission()); err == nil {
		t.Fatalf("expected error")
	}
	if !fake.rolledBack || fake.committed {
		t.Fatalf("rolledBack=%v committed=%v", fake.rolledBack, fake.committed)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	repo := NewSubmissionRepository(db.NewManager(nil))
	if _, err := repo.Create(context.Background(), sampleSubmission()); err == nil {
		t.Fatalf("expected error without database")
	}
}

func TestListByUserAttachesResults(t *testing.T) {
	now := time.Now()
	fake := &fakeDB{results: map[string][][]interface{}{
		"FROM submissions ": {
			{int64(9), int64(3), int64(7), "print(3)", "PYTHON", "Accepted", now},
			{int64(8), int64(3), int64(7), "print(0)", "PYTHON", "Wrong Answer", now},
		},
		"FROM submission_testcases": {
			{int64(1), int64(8), 1, false, "0", "3", nil, "Wrong Answer"},
			{int64(2), int64(9), 1, true, "3", "3", "note", "Accepted"},
		},
	}}
	repo := NewSubmissionRepository(db.NewManager(fake))

	submissions, err := repo.ListByUser(context.Background(), 3, 7)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(submissions) != 2 || submissions[0].ID != 9 {
		t.Fatalf("unexpected submissions: %+v", submissions)
	}
	if len(submissions[0].TestCases) != 1 || submissions[0].TestCases[0].Stderr != "note" {
		t.Fatalf("results not attached to 9: %+v", submissions[0].TestCases)
	}
	if len(submissions[1].TestCases) != 1 || submissions[1].TestCases[0].Passed {
		t.Fatalf("results not attached to 8: %+v", submissions[1].TestCases)
	}
	if args := fake.queries[0].args; len(args) != 2 || args[1] != int64(7) {
		t.Fatalf("problem filter not applied: %v", args)
	}
	if !strings.Contains(fake.queries[1].query, "IN (?,?)") {
		t.Fatalf("unexpected result query: %s", fake.queries[1].query)
	}
}

func TestListByUserEmpty(t *testing.T) {
	fake := &fakeDB{}
	repo := NewSubmissionRepository(db.NewManager(fake))

	submissions, err := repo.ListByUser(context.Background(), 3, 0)
	if err != nil || len(submissions) != 0 {
		t.Fatalf("unexpected: %v %+v", err, submissions)
	}
	if len(fake.queries) != 1 {
		t.Fatalf("expected a single query, got %d", len(fake.queries))
	}
}
