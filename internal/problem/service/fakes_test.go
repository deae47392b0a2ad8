package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"leetlab/internal/common/db"
	"leetlab/internal/judge0"
	"leetlab/internal/problem/repository"
)

// scriptedJudge answers batches with fixed statuses per language id.
type scriptedJudge struct {
	statuses    map[int][]int
	submissions [][]judge0.ExecutionRequest
	queries     int
	langByToken map[judge0.SubmissionToken]int
}

func newScriptedJudge(statuses map[int][]int) *scriptedJudge {
	return &scriptedJudge{statuses: statuses, langByToken: make(map[judge0.SubmissionToken]int)}
}

func (j *scriptedJudge) SubmitBatch(ctx context.Context, requests []judge0.ExecutionRequest) ([]judge0.SubmissionToken, error) {
	j.submissions = append(j.submissions, requests)
	tokens := make([]judge0.SubmissionToken, len(requests))
	for i, req := range requests {
		token := judge0.SubmissionToken(fmt.Sprintf("b%d-t%d", len(j.submissions), i))
		j.langByToken[token] = req.LanguageID
		tokens[i] = token
	}
	return tokens, nil
}

func (j *scriptedJudge) GetBatch(ctx context.Context, tokens []judge0.SubmissionToken) ([]judge0.ExecutionResult, error) {
	j.queries++
	results := make([]judge0.ExecutionResult, len(tokens))
	for i, token := range tokens {
		langID := j.langByToken[token]
		status := judge0.StatusAccepted
		if script, ok := j.statuses[langID]; ok && i < len(script) {
			status = script[i]
		}
		results[i] = judge0.ExecutionResult{Token: token, StatusID: status, LanguageID: langID}
	}
	return results, nil
}

func (j *scriptedJudge) submittedLanguages() []int {
	ids := make([]int, 0, len(j.submissions))
	for _, batch := range j.submissions {
		ids = append(ids, batch[0].LanguageID)
	}
	return ids
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func newGrader(api judge0.BatchAPI) *judge0.Grader {
	return judge0.NewGrader(api, judge0.DefaultPollPolicy(), noSleep)
}

type fakeProblemRepo struct {
	problems map[int64]*repository.Problem
	solved   map[int64][]int64
	nextID   int64
	creates  int
	updates  int
}

func newFakeProblemRepo() *fakeProblemRepo {
	return &fakeProblemRepo{problems: make(map[int64]*repository.Problem), solved: make(map[int64][]int64), nextID: 1}
}

func (r *fakeProblemRepo) Create(ctx context.Context, tx db.Transaction, problem *repository.Problem) (int64, error) {
	r.creates++
	id := r.nextID
	r.nextID++
	clone := *problem
	clone.ID = id
	r.problems[id] = &clone
	return id, nil
}

func (r *fakeProblemRepo) GetByID(ctx context.Context, tx db.Transaction, problemID int64) (*repository.Problem, error) {
	problem, ok := r.problems[problemID]
	if !ok {
		return nil, repository.ErrProblemNotFound
	}
	clone := *problem
	return &clone, nil
}

func (r *fakeProblemRepo) List(ctx context.Context, offset, limit int) ([]repository.ProblemSummary, int64, error) {
	ids := make([]int64, 0, len(r.problems))
	for id := range r.problems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	items := make([]repository.ProblemSummary, 0)
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		items = append(items, summaryOf(r.problems[ids[i]]))
	}
	return items, int64(len(ids)), nil
}

func (r *fakeProblemRepo) ListSolvedByUser(ctx context.Context, userID int64) ([]repository.ProblemSummary, error) {
	items := make([]repository.ProblemSummary, 0)
	for _, id := range r.solved[userID] {
		if problem, ok := r.problems[id]; ok {
			items = append(items, summaryOf(problem))
		}
	}
	return items, nil
}

func (r *fakeProblemRepo) Update(ctx context.Context, tx db.Transaction, problem *repository.Problem) error {
	if _, ok := r.problems[problem.ID]; !ok {
		return repository.ErrProblemNotFound
	}
	r.updates++
	clone := *problem
	r.problems[problem.ID] = &clone
	return nil
}

func (r *fakeProblemRepo) Delete(ctx context.Context, tx db.Transaction, problemID int64) error {
	if _, ok := r.problems[problemID]; !ok {
		return repository.ErrProblemNotFound
	}
	delete(r.problems, problemID)
	return nil
}

func summaryOf(problem *repository.Problem) repository.ProblemSummary {
	return repository.ProblemSummary{ID: problem.ID, Title: problem.Title, Difficulty: problem.Difficulty, Tags: problem.Tags}
}
