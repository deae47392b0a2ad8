package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"leetlab/internal/common/cache"
	"leetlab/internal/common/db"
)

const (
	defaultProblemTTL      = 30 * time.Minute
	defaultProblemEmptyTTL = 5 * time.Minute
	problemKeyPrefix       = "problem:detail:"

	// SubmissionStatusAccepted marks a submission that passed every test case.
	SubmissionStatusAccepted = "Accepted"
)

var (
	ErrProblemNotFound = errors.New("problem not found")
)

type ProblemRepository interface {
	Create(ctx context.Context, tx db.Transaction, problem *Problem) (int64, error)
	GetByID(ctx context.Context, tx db.Transaction, problemID int64) (*Problem, error)
	List(ctx context.Context, offset, limit int) ([]ProblemSummary, int64, error)
	ListSolvedByUser(ctx context.Context, userID int64) ([]ProblemSummary, error)
	Update(ctx context.Context, tx db.Transaction, problem *Problem) error
	Delete(ctx context.Context, tx db.Transaction, problemID int64) error
}

type MySQLProblemRepository struct {
	dbProvider db.Provider
	cache      cache.Cache
	ttl        time.Duration
	emptyTTL   time.Duration
}

func NewProblemRepository(provider db.Provider, cacheClient cache.Cache) ProblemRepository {
	return NewProblemRepositoryWithTTL(provider, cacheClient, defaultProblemTTL, defaultProblemEmptyTTL)
}

func NewProblemRepositoryWithTTL(provider db.Provider, cacheClient cache.Cache, ttl, emptyTTL time.Duration) ProblemRepository {
	if ttl <= 0 {
		ttl = defaultProblemTTL
	}
	if emptyTTL <= 0 {
		emptyTTL = defaultProblemEmptyTTL
	}
	return &MySQLProblemRepository{
		dbProvider: provider,
		cache:      cacheClient,
		ttl:        ttl,
		emptyTTL:   emptyTTL,
	}
}

const (
	problemColumns = "id, user_id, title, description, difficulty, tags, examples, constraints_text, hints, editorial, testcases, code_snippets, reference_solutions, created_at, updated_at"
	summaryColumns = "p.id, p.title, p.difficulty, p.tags, p.created_at"
)

func (r *MySQLProblemRepository) Create(ctx context.Context, tx db.Transaction, problem *Problem) (int64, error) {
	if problem == nil {
		return 0, errors.New("problem is nil")
	}
	cols, err := encodeProblemColumns(problem)
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO problems
		(user_id, title, description, difficulty, tags, examples, constraints_text, hints, editorial, testcases, code_snippets, reference_solutions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return 0, err
	}
	result, err := querier.Exec(ctx, query,
		problem.UserID, problem.Title, problem.Description, problem.Difficulty,
		cols.tags, cols.examples, problem.Constraints, nullableString(problem.Hints), nullableString(problem.Editorial),
		cols.testcases, cols.codeSnippets, cols.referenceSolutions,
	)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	problem.ID = id
	// drop a cached miss for this id
	r.invalidate(ctx, id)
	return id, nil
}

func (r *MySQLProblemRepository) GetByID(ctx context.Context, tx db.Transaction, problemID int64) (*Problem, error) {
	if r.cache != nil && tx == nil {
		problem, err := cache.GetWithCached[*Problem](
			ctx,
			r.cache,
			problemKey(problemID),
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(problem *Problem) bool { return problem == nil },
			marshalProblem,
			unmarshalProblem,
			func(ctx context.Context) (*Problem, error) {
				problem, err := r.getByIDFromDB(ctx, nil, problemID)
				if err != nil {
					if errors.Is(err, ErrProblemNotFound) {
						return nil, nil
					}
					return nil, err
				}
				return problem, nil
			},
		)
		if err != nil {
			return nil, err
		}
		if problem == nil {
			return nil, ErrProblemNotFound
		}
		return problem, nil
	}
	return r.getByIDFromDB(ctx, tx, problemID)
}

func (r *MySQLProblemRepository) List(ctx context.Context, offset, limit int) ([]ProblemSummary, int64, error) {
	querier, err := db.GetProviderQuerier(r.dbProvider, nil)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := querier.QueryRow(ctx, "SELECT COUNT(*) FROM problems").Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []ProblemSummary{}, 0, nil
	}

	query := "SELECT " + summaryColumns + " FROM problems p ORDER BY p.id ASC LIMIT ? OFFSET ?"
	rows, err := querier.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := scanSummaries(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *MySQLProblemRepository) ListSolvedByUser(ctx context.Context, userID int64) ([]ProblemSummary, error) {
	querier, err := db.GetProviderQuerier(r.dbProvider, nil)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + summaryColumns + `
		FROM problems p
		WHERE EXISTS (
			SELECT 1 FROM submissions s
			WHERE s.problem_id = p.id AND s.user_id = ? AND s.status = ?
		)
		ORDER BY p.id ASC`
	rows, err := querier.Query(ctx, query, userID, SubmissionStatusAccepted)
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

func (r *MySQLProblemRepository) Update(ctx context.Context, tx db.Transaction, problem *Problem) error {
	if problem == nil {
		return errors.New("problem is nil")
	}
	cols, err := encodeProblemColumns(problem)
	if err != nil {
		return err
	}

	query := `UPDATE problems SET
		title = ?, description = ?, difficulty = ?, tags = ?, examples = ?, constraints_text = ?, hints = ?, editorial = ?,
		testcases = ?, code_snippets = ?, reference_solutions = ?, updated_at = NOW()
		WHERE id = ?`
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return err
	}
	result, err := querier.Exec(ctx, query,
		problem.Title, problem.Description, problem.Difficulty, cols.tags, cols.examples, problem.Constraints,
		nullableString(problem.Hints), nullableString(problem.Editorial),
		cols.testcases, cols.codeSnippets, cols.referenceSolutions, problem.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// MySQL reports 0 for an unchanged row, so confirm it exists
		if _, err := r.getByIDFromDB(ctx, tx, problem.ID); err != nil {
			return err
		}
	}
	r.invalidate(ctx, problem.ID)
	return nil
}

func (r *MySQLProblemRepository) Delete(ctx context.Context, tx db.Transaction, problemID int64) error {
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return err
	}
	result, err := querier.Exec(ctx, "DELETE FROM problems WHERE id = ?", problemID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProblemNotFound
	}
	r.invalidate(ctx, problemID)
	return nil
}

func (r *MySQLProblemRepository) getByIDFromDB(ctx context.Context, tx db.Transaction, problemID int64) (*Problem, error) {
	query := "SELECT " + problemColumns + " FROM problems WHERE id = ?"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return nil, err
	}
	problem, err := scanProblem(querier.QueryRow(ctx, query, problemID))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrProblemNotFound
		}
		return nil, err
	}
	return problem, nil
}

func (r *MySQLProblemRepository) invalidate(ctx context.Context, problemID int64) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Del(ctx, problemKey(problemID))
}

func problemKey(problemID int64) string {
	return problemKeyPrefix + strconv.FormatInt(problemID, 10)
}

type problemColumnValues struct {
	tags               []byte
	examples           []byte
	testcases          []byte
	codeSnippets       []byte
	referenceSolutions []byte
}

func encodeProblemColumns(problem *Problem) (problemColumnValues, error) {
	var cols problemColumnValues
	var err error
	if cols.tags, err = encodeJSONColumn("tags", problem.Tags); err != nil {
		return cols, err
	}
	if cols.examples, err = encodeJSONColumn("examples", problem.Examples); err != nil {
		return cols, err
	}
	if cols.testcases, err = encodeJSONColumn("testcases", problem.TestCases); err != nil {
		return cols, err
	}
	if cols.codeSnippets, err = encodeJSONColumn("code_snippets", problem.CodeSnippets); err != nil {
		return cols, err
	}
	if cols.referenceSolutions, err = encodeJSONColumn("reference_solutions", problem.ReferenceSolutions); err != nil {
		return cols, err
	}
	return cols, nil
}

func encodeJSONColumn(name string, value interface{}) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s failed: %w", name, err)
	}
	return payload, nil
}

func decodeJSONColumn(name string, data []byte, target interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s failed: %w", name, err)
	}
	return nil
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func scanProblem(scanner db.Scanner) (*Problem, error) {
	var problem Problem
	var tags, examples, testcases, codeSnippets, referenceSolutions []byte
	var hints, editorial sql.NullString

	err := scanner.Scan(
		&problem.ID,
		&problem.UserID,
		&problem.Title,
		&problem.Description,
		&problem.Difficulty,
		&tags,
		&examples,
		&problem.Constraints,
		&hints,
		&editorial,
		&testcases,
		&codeSnippets,
		&referenceSolutions,
		&problem.CreatedAt,
		&problem.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	problem.Hints = hints.String
	problem.Editorial = editorial.String

	if err := decodeJSONColumn("tags", tags, &problem.Tags); err != nil {
		return nil, err
	}
	if err := decodeJSONColumn("examples", examples, &problem.Examples); err != nil {
		return nil, err
	}
	if err := decodeJSONColumn("testcases", testcases, &problem.TestCases); err != nil {
		return nil, err
	}
	if err := decodeJSONColumn("code_snippets", codeSnippets, &problem.CodeSnippets); err != nil {
		return nil, err
	}
	if err := decodeJSONColumn("reference_solutions", referenceSolutions, &problem.ReferenceSolutions); err != nil {
		return nil, err
	}
	return &problem, nil
}

func scanSummaries(rows db.Rows) ([]ProblemSummary, error) {
	defer func() { _ = rows.Close() }()

	items := make([]ProblemSummary, 0)
	for rows.Next() {
		var item ProblemSummary
		var tags []byte
		if err := rows.Scan(&item.ID, &item.Title, &item.Difficulty, &tags, &item.CreatedAt); err != nil {
			return nil, err
		}
		if err := decodeJSONColumn("tags", tags, &item.Tags); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
