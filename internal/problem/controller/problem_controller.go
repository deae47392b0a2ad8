package controller

import (
	"strconv"
	"time"

	"leetlab/internal/common/http/middleware"
	"leetlab/internal/judge0"
	"leetlab/internal/problem/repository"
	"leetlab/internal/problem/service"
	"leetlab/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// ProblemController handles problem HTTP endpoints.
type ProblemController struct {
	problemService *service.ProblemService
}

// NewProblemController creates a new ProblemController.
func NewProblemController(problemService *service.ProblemService) *ProblemController {
	return &ProblemController{problemService: problemService}
}

// Create handles problem creation.
func (h *ProblemController) Create(c *gin.Context) {
	var req ProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	problem, err := h.problemService.CreateProblem(c.Request.Context(), service.CreateInput{
		ProblemInput: req.toInput(),
		UserID:       userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Problem created successfully", toProblemResponse(problem))
}

// List handles paginated problem listing.
func (h *ProblemController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	result, err := h.problemService.ListProblems(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, toSummaryResponses(result.Items), result.Total, result.Page, result.PageSize)
}

// Get handles problem lookup by id.
func (h *ProblemController) Get(c *gin.Context) {
	problemID, ok := parseProblemID(c)
	if !ok {
		return
	}

	problem, err := h.problemService.GetProblem(c.Request.Context(), problemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Problem fetched successfully", toProblemResponse(problem))
}

// Update handles problem replacement; reference solutions are re-validated.
func (h *ProblemController) Update(c *gin.Context) {
	problemID, ok := parseProblemID(c)
	if !ok {
		return
	}
	var req ProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	problem, err := h.problemService.UpdateProblem(c.Request.Context(), problemID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Problem updated successfully", toProblemResponse(problem))
}

// Delete handles problem deletion.
func (h *ProblemController) Delete(c *gin.Context) {
	problemID, ok := parseProblemID(c)
	if !ok {
		return
	}

	if err := h.problemService.DeleteProblem(c.Request.Context(), problemID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Problem deleted successfully", nil)
}

// Solved lists problems the current user has solved.
func (h *ProblemController) Solved(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	items, err := h.problemService.ListSolvedProblems(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Solved problems fetched successfully", toSummaryResponses(items))
}

func parseProblemID(c *gin.Context) (int64, bool) {
	problemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || problemID <= 0 {
		response.BadRequest(c, "Invalid problem id")
		return 0, false
	}
	return problemID, true
}

// ProblemRequest defines the problem create/update payload.
type ProblemRequest struct {
	Title              string                        `json:"title" binding:"required"`
	Description        string                        `json:"description" binding:"required"`
	Difficulty         string                        `json:"difficulty" binding:"required"`
	Tags               []string                      `json:"tags"`
	Examples           map[string]repository.Example `json:"examples"`
	Constraints        string                        `json:"constraints"`
	Hints              string                        `json:"hints"`
	Editorial          string                        `json:"editorial"`
	TestCases          []judge0.TestCase             `json:"testcases" binding:"required"`
	CodeSnippets       map[string]string             `json:"codeSnippets"`
	ReferenceSolutions map[string]string             `json:"referenceSolutions" binding:"required"`
}

func (r ProblemRequest) toInput() service.ProblemInput {
	return service.ProblemInput{
		Title:              r.Title,
		Description:        r.Description,
		Difficulty:         r.Difficulty,
		Tags:               r.Tags,
		Examples:           r.Examples,
		Constraints:        r.Constraints,
		Hints:              r.Hints,
		Editorial:          r.Editorial,
		TestCases:          r.TestCases,
		CodeSnippets:       r.CodeSnippets,
		ReferenceSolutions: r.ReferenceSolutions,
	}
}

// ProblemResponse defines the problem detail payload.
type ProblemResponse struct {
	ID                 int64                         `json:"id"`
	UserID             int64                         `json:"userId"`
	Title              string                        `json:"title"`
	Description        string                        `json:"description"`
	Difficulty         string                        `json:"difficulty"`
	Tags               []string                      `json:"tags"`
	Examples           map[string]repository.Example `json:"examples"`
	Constraints        string                        `json:"constraints"`
	Hints              string                        `json:"hints,omitempty"`
	Editorial          string                        `json:"editorial,omitempty"`
	TestCases          []judge0.TestCase             `json:"testcases"`
	CodeSnippets       map[string]string             `json:"codeSnippets"`
	ReferenceSolutions map[string]string             `json:"referenceSolutions"`
	CreatedAt          string                        `json:"createdAt,omitempty"`
	UpdatedAt          string                        `json:"updatedAt,omitempty"`
}

// ProblemSummaryResponse defines the problem list item payload.
type ProblemSummaryResponse struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
}

func toProblemResponse(problem *repository.Problem) ProblemResponse {
	return ProblemResponse{
		ID:                 problem.ID,
		UserID:             problem.UserID,
		Title:              problem.Title,
		Description:        problem.Description,
		Difficulty:         string(problem.Difficulty),
		Tags:               problem.Tags,
		Examples:           problem.Examples,
		Constraints:        problem.Constraints,
		Hints:              problem.Hints,
		Editorial:          problem.Editorial,
		TestCases:          problem.TestCases,
		CodeSnippets:       problem.CodeSnippets,
		ReferenceSolutions: problem.ReferenceSolutions,
		CreatedAt:          formatTime(problem.CreatedAt),
		UpdatedAt:          formatTime(problem.UpdatedAt),
	}
}

func toSummaryResponses(items []repository.ProblemSummary) []ProblemSummaryResponse {
	out := make([]ProblemSummaryResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ProblemSummaryResponse{
			ID:         item.ID,
			Title:      item.Title,
			Difficulty: string(item.Difficulty),
			Tags:       item.Tags,
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
