package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leetlab/internal/judge0"
	"leetlab/internal/problem/repository"
	pkgerrors "leetlab/pkg/errors"
	"leetlab/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProblemService handles problem authoring and queries.
type ProblemService struct {
	repo      repository.ProblemRepository
	validator *ReferenceValidator
}

// NewProblemService creates a new ProblemService.
func NewProblemService(repo repository.ProblemRepository, validator *ReferenceValidator) *ProblemService {
	return &ProblemService{repo: repo, validator: validator}
}

// ProblemInput carries the authored fields of a problem.
type ProblemInput struct {
	Title              string
	Description        string
	Difficulty         string
	Tags               []string
	Examples           map[string]repository.Example
	Constraints        string
	Hints              string
	Editorial          string
	TestCases          []judge0.TestCase
	CodeSnippets       map[string]string
	ReferenceSolutions map[string]string
}

// CreateInput represents input for problem creation.
type CreateInput struct {
	ProblemInput
	UserID int64
}

// ListResult is one page of problems.
type ListResult struct {
	Items    []repository.ProblemSummary
	Total    int64
	Page     int
	PageSize int
}

// CreateProblem validates every reference solution against the judge and only
// then stores the problem.
func (s *ProblemService) CreateProblem(ctx context.Context, input CreateInput) (*repository.Problem, error) {
	problem, err := buildProblem(input.ProblemInput)
	if err != nil {
		return nil, err
	}
	problem.UserID = input.UserID

	if _, err := s.validator.Validate(ctx, problem.TestCases, problem.ReferenceSolutions); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, nil, problem)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("create problem failed: %w", err), pkgerrors.ProblemCreateFailed)
	}
	problem.ID = id
	logger.Info(ctx, "problem created",
		zap.Int64("problem_id", id),
		zap.Int("testcases", len(problem.TestCases)),
		zap.Int("languages", len(problem.ReferenceSolutions)),
	)
	return problem, nil
}

// GetProblem returns a problem by id.
func (s *ProblemService) GetProblem(ctx context.Context, problemID int64) (*repository.Problem, error) {
	if problemID <= 0 {
		return nil, pkgerrors.New(pkgerrors.InvalidParams)
	}
	problem, err := s.repo.GetByID(ctx, nil, problemID)
	if err != nil {
		if errors.Is(err, repository.ErrProblemNotFound) {
			return nil, pkgerrors.New(pkgerrors.ProblemNotFound)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("get problem failed: %w", err), pkgerrors.DatabaseError)
	}
	return problem, nil
}

// ListProblems returns one page of problems ordered by id.
func (s *ProblemService) ListProblems(ctx context.Context, page, pageSize int) (ListResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := s.repo.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(fmt.Errorf("list problems failed: %w", err), pkgerrors.DatabaseError)
	}
	return ListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// ListSolvedProblems returns problems the user has an accepted submission for.
func (s *ProblemService) ListSolvedProblems(ctx context.Context, userID int64) ([]repository.ProblemSummary, error) {
	items, err := s.repo.ListSolvedByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("list solved problems failed: %w", err), pkgerrors.DatabaseError)
	}
	return items, nil
}

// UpdateProblem replaces the authored fields and re-validates the reference
// solutions before writing.
func (s *ProblemService) UpdateProblem(ctx context.Context, problemID int64, input ProblemInput) (*repository.Problem, error) {
	existing, err := s.GetProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}

	problem, err := buildProblem(input)
	if err != nil {
		return nil, err
	}
	problem.ID = existing.ID
	problem.UserID = existing.UserID
	problem.CreatedAt = existing.CreatedAt

	if _, err := s.validator.Validate(ctx, problem.TestCases, problem.ReferenceSolutions); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, nil, problem); err != nil {
		if errors.Is(err, repository.ErrProblemNotFound) {
			return nil, pkgerrors.New(pkgerrors.ProblemNotFound)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("update problem failed: %w", err), pkgerrors.ProblemUpdateFailed)
	}
	logger.Info(ctx, "problem updated", zap.Int64("problem_id", problemID))
	return problem, nil
}

// DeleteProblem deletes a problem by id.
func (s *ProblemService) DeleteProblem(ctx context.Context, problemID int64) error {
	if problemID <= 0 {
		return pkgerrors.New(pkgerrors.InvalidParams)
	}
	if err := s.repo.Delete(ctx, nil, problemID); err != nil {
		if errors.Is(err, repository.ErrProblemNotFound) {
			return pkgerrors.New(pkgerrors.ProblemNotFound)
		}
		return pkgerrors.Wrap(fmt.Errorf("delete problem failed: %w", err), pkgerrors.ProblemDeleteFailed)
	}
	logger.Info(ctx, "problem deleted", zap.Int64("problem_id", problemID))
	return nil
}

func buildProblem(input ProblemInput) (*repository.Problem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.ValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.ValidationError("description", "must not be empty")
	}
	difficulty, err := parseDifficulty(input.Difficulty)
	if err != nil {
		return nil, err
	}

	return &repository.Problem{
		Title:              title,
		Description:        input.Description,
		Difficulty:         difficulty,
		Tags:               input.Tags,
		Examples:           input.Examples,
		Constraints:        input.Constraints,
		Hints:              input.Hints,
		Editorial:          input.Editorial,
		TestCases:          input.TestCases,
		CodeSnippets:       input.CodeSnippets,
		ReferenceSolutions: input.ReferenceSolutions,
	}, nil
}

func parseDifficulty(value string) (repository.Difficulty, error) {
	switch difficulty := repository.Difficulty(strings.ToUpper(strings.TrimSpace(value))); difficulty {
	case repository.DifficultyEasy, repository.DifficultyMedium, repository.DifficultyHard:
		return difficulty, nil
	default:
		return "", pkgerrors.ValidationError("difficulty", "must be one of EASY, MEDIUM, HARD")
	}
}
