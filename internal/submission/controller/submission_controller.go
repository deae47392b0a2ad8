package controller

import (
	"strconv"
	"time"

	"leetlab/internal/common/http/middleware"
	"leetlab/internal/submission/repository"
	"leetlab/internal/submission/service"
	"leetlab/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// SubmissionController handles submission HTTP endpoints.
type SubmissionController struct {
	submissionService *service.SubmissionService
}

// NewSubmissionController creates a new SubmissionController.
func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{submissionService: submissionService}
}

// Submit runs the caller's code against a problem.
func (h *SubmissionController) Submit(c *gin.Context) {
	problemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || problemID <= 0 {
		response.BadRequest(c, "Invalid problem id")
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), service.SubmitInput{
		UserID:     userID,
		ProblemID:  problemID,
		SourceCode: req.SourceCode,
		Language:   req.Language,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Submission judged", toSubmissionResponse(submission))
}

// List returns the caller's submissions, optionally for one problem.
func (h *SubmissionController) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}
	var problemID int64
	if raw := c.Query("problem_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			response.BadRequest(c, "Invalid problem id")
			return
		}
		problemID = parsed
	}

	submissions, err := h.submissionService.ListSubmissions(c.Request.Context(), userID, problemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		items = append(items, toSubmissionResponse(s))
	}
	response.SuccessWithMessage(c, "Submissions fetched successfully", items)
}

// SubmitRequest defines the code submission payload.
type SubmitRequest struct {
	SourceCode string `json:"source_code" binding:"required"`
	Language   string `json:"language" binding:"required"`
}

// SubmissionResponse defines the submission payload.
type SubmissionResponse struct {
	ID         int64                `json:"id"`
	ProblemID  int64                `json:"problemId"`
	Language   string               `json:"language"`
	SourceCode string               `json:"sourceCode"`
	Status     string               `json:"status"`
	TestCases  []TestCaseResultView `json:"testCases"`
	CreatedAt  string               `json:"createdAt,omitempty"`
}

// TestCaseResultView defines one test case verdict.
type TestCaseResultView struct {
	TestCase int    `json:"testCase"`
	Passed   bool   `json:"passed"`
	Stdout   string `json:"stdout"`
	Expected string `json:"expected"`
	Stderr   string `json:"stderr,omitempty"`
	Status   string `json:"status"`
}

func toSubmissionResponse(s *repository.Submission) SubmissionResponse {
	resp := SubmissionResponse{
		ID:         s.ID,
		ProblemID:  s.ProblemID,
		Language:   s.Language,
		SourceCode: s.SourceCode,
		Status:     s.Status,
		TestCases:  make([]TestCaseResultView, 0, len(s.TestCases)),
	}
	if !s.CreatedAt.IsZero() {
		resp.CreatedAt = s.CreatedAt.Format(time.RFC3339)
	}
	for _, tc := range s.TestCases {
		resp.TestCases = append(resp.TestCases, TestCaseResultView{
			TestCase: tc.TestCase,
			Passed:   tc.Passed,
			Stdout:   tc.Stdout,
			Expected: tc.Expected,
			Stderr:   tc.Stderr,
			Status:   tc.Status,
		})
	}
	return resp
}
