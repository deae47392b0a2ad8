package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leetlab/internal/common/db"
	"leetlab/internal/common/http/middleware"
	"leetlab/internal/judge0"
	"leetlab/internal/problem/repository"
	"leetlab/internal/problem/service"
	pkgerrors "leetlab/pkg/errors"

	"github.com/gin-gonic/gin"
)

type stubJudge struct {
	status int
	calls  int
}

func (j *stubJudge) SubmitBatch(ctx context.Context, requests []judge0.ExecutionRequest) ([]judge0.SubmissionToken, error) {
	j.calls++
	tokens := make([]judge0.SubmissionToken, len(requests))
	for i := range requests {
		tokens[i] = judge0.SubmissionToken(string(rune('a' + i)))
	}
	return tokens, nil
}

func (j *stubJudge) GetBatch(ctx context.Context, tokens []judge0.SubmissionToken) ([]judge0.ExecutionResult, error) {
	results := make([]judge0.ExecutionResult, len(tokens))
	for i, token := range tokens {
		results[i] = judge0.ExecutionResult{Token: token, StatusID: j.status}
	}
	return results, nil
}

type memoryProblemRepo struct {
	problems []*repository.Problem
}

func (r *memoryProblemRepo) Create(ctx context.Context, tx db.Transaction, problem *repository.Problem) (int64, error) {
	clone := *problem
	clone.ID = int64(len(r.problems) + 1)
	r.problems = append(r.problems, &clone)
	return clone.ID, nil
}

func (r *memoryProblemRepo) GetByID(ctx context.Context, tx db.Transaction, problemID int64) (*repository.Problem, error) {
	for _, p := range r.problems {
		if p.ID == problemID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repository.ErrProblemNotFound
}

func (r *memoryProblemRepo) List(ctx context.Context, offset, limit int) ([]repository.ProblemSummary, int64, error) {
	items := make([]repository.ProblemSummary, 0)
	for i := offset; i < len(r.problems) && i < offset+limit; i++ {
		p := r.problems[i]
		items = append(items, repository.ProblemSummary{ID: p.ID, Title: p.Title, Difficulty: p.Difficulty})
	}
	return items, int64(len(r.problems)), nil
}

func (r *memoryProblemRepo) ListSolvedByUser(ctx context.Context, userID int64) ([]repository.ProblemSummary, error) {
	return []repository.ProblemSummary{}, nil
}

func (r *memoryProblemRepo) Update(ctx context.Context, tx db.Transaction, problem *repository.Problem) error {
	for i, p := range r.problems {
		if p.ID == problem.ID {
			clone := *problem
			r.problems[i] = &clone
			return nil
		}
	}
	return repository.ErrProblemNotFound
}

func (r *memoryProblemRepo) Delete(ctx context.Context, tx db.Transaction, problemID int64) error {
	for i, p := range r.problems {
		if p.ID == problemID {
			r.problems = append(r.problems[:i], r.problems[i+1:]...)
			return nil
		}
	}
	return repository.ErrProblemNotFound
}

type apiResponse struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

func newProblemRouter(judge *stubJudge, repo *memoryProblemRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	grader := judge0.NewGrader(judge, judge0.DefaultPollPolicy(), func(ctx context.Context, d time.Duration) error { return nil })
	ctrl := NewProblemController(service.NewProblemService(repo, service.NewReferenceValidator(grader)))

	authenticator := middleware.AuthenticatorFunc(func(ctx context.Context, raw string) (middleware.Principal, error) {
		switch raw {
		case "admin":
			return middleware.Principal{ID: 1, Role: "ADMIN"}, nil
		case "user":
			return middleware.Principal{ID: 2, Role: "USER"}, nil
		}
		return middleware.Principal{}, pkgerrors.New(pkgerrors.TokenInvalid)
	})

	router := gin.New()
	users := router.Group("/problems", middleware.AuthMiddleware(authenticator, middleware.AuthPolicy{}))
	users.GET("", ctrl.List)
	users.GET("/solved", ctrl.Solved)
	users.GET("/:id", ctrl.Get)
	admins := router.Group("/problems", middleware.AuthMiddleware(authenticator, middleware.AuthPolicy{Roles: []string{"ADMIN"}}))
	admins.POST("", ctrl.Create)
	admins.PUT("/:id", ctrl.Update)
	admins.DELETE("/:id", ctrl.Delete)
	return router
}

func doRequest(router http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var resp apiResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func problemBody(solutions map[string]string) map[string]interface{} {
	return map[string]interface{}{
		"title":              "Add Two Numbers",
		"description":        "Print a + b.",
		"difficulty":         "EASY",
		"tags":               []string{"math"},
		"testcases":          []map[string]string{{"input": "1 2", "output": "3"}, {"input": "2 2", "output": "4"}},
		"referenceSolutions": solutions,
	}
}

func TestCreateProblemEndpoint(t *testing.T) {
	cases := []struct {
		name       string
		token      string
		status     int
		solutions  map[string]string
		wantStatus int
		wantCode   pkgerrors.ErrorCode
		wantStored int
		wantCalls  int
	}{
		{name: "admin creates", token: "admin", status: judge0.StatusAccepted, solutions: map[string]string{"PYTHON": "print(3)"}, wantStatus: http.StatusCreated, wantCode: pkgerrors.Success, wantStored: 1, wantCalls: 1},
		{name: "user forbidden", token: "user", status: judge0.StatusAccepted, solutions: map[string]string{"PYTHON": "print(3)"}, wantStatus: http.StatusForbidden, wantCode: pkgerrors.Forbidden},
		{name: "unsupported language", token: "admin", status: judge0.StatusAccepted, solutions: map[string]string{"ruby": "puts 3"}, wantStatus: http.StatusBadRequest, wantCode: pkgerrors.LanguageNotSupported},
		{name: "wrong answer", token: "admin", status: judge0.StatusWrongAnswer, solutions: map[string]string{"PYTHON": "print(0)"}, wantStatus: http.StatusBadRequest, wantCode: pkgerrors.ReferenceSolutionFailed, wantCalls: 1},
		{name: "judge never finishes", token: "admin", status: judge0.StatusInQueue, solutions: map[string]string{"PYTHON": "print(3)"}, wantStatus: http.StatusGatewayTimeout, wantCode: pkgerrors.JudgePollExhausted, wantCalls: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			judge := &stubJudge{status: tc.status}
			repo := &memoryProblemRepo{}
			rec, resp := doRequest(newProblemRouter(judge, repo), http.MethodPost, "/problems", tc.token, problemBody(tc.solutions))
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if resp.Code != int(tc.wantCode) {
				t.Fatalf("code = %d, want %d", resp.Code, tc.wantCode)
			}
			if len(repo.problems) != tc.wantStored {
				t.Fatalf("stored %d problems, want %d", len(repo.problems), tc.wantStored)
			}
			if judge.calls != tc.wantCalls {
				t.Fatalf("judge calls = %d, want %d", judge.calls, tc.wantCalls)
			}
		})
	}
}

func TestReferenceFailureDetails(t *testing.T) {
	judge := &stubJudge{status: judge0.StatusWrongAnswer}
	_, resp := doRequest(newProblemRouter(judge, &memoryProblemRepo{}), http.MethodPost, "/problems", "admin", problemBody(map[string]string{"PYTHON": "print(0)"}))
	if resp.Message != "Testcase 1 failed for language PYTHON" {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
	if resp.Details["language"] != "PYTHON" || resp.Details["testcase"] != float64(1) {
		t.Fatalf("unexpected details: %+v", resp.Details)
	}
}

func TestProblemReadEndpoints(t *testing.T) {
	judge := &stubJudge{status: judge0.StatusAccepted}
	repo := &memoryProblemRepo{}
	router := newProblemRouter(judge, repo)
	doRequest(router, http.MethodPost, "/problems", "admin", problemBody(map[string]string{"PYTHON": "print(3)"}))

	rec, _ := doRequest(router, http.MethodGet, "/problems/1", "user", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	rec, resp := doRequest(router, http.MethodGet, "/problems/99", "user", nil)
	if rec.Code != http.StatusNotFound || resp.Code != int(pkgerrors.ProblemNotFound) {
		t.Fatalf("missing problem: %d %d", rec.Code, resp.Code)
	}
	rec, _ = doRequest(router, http.MethodGet, "/problems/abc", "user", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}
	rec, _ = doRequest(router, http.MethodGet, "/problems?page=1&page_size=10", "user", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	rec, _ = doRequest(router, http.MethodGet, "/problems/solved", "user", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("solved status = %d", rec.Code)
	}
	rec, _ = doRequest(router, http.MethodDelete, "/problems/1", "user", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user delete status = %d", rec.Code)
	}
	rec, _ = doRequest(router, http.MethodDelete, "/problems/1", "admin", nil)
	if rec.Code != http.StatusOK || len(repo.problems) != 0 {
		t.Fatalf("admin delete status = %d", rec.Code)
	}
}
