package repository

import (
	"time"

	"leetlab/internal/judge0"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Example is the sample shown for one language.
type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// Problem represents a validated coding problem.
type Problem struct {
	ID                 int64
	UserID             int64
	Title              string
	Description        string
	Difficulty         Difficulty
	Tags               []string
	Examples           map[string]Example
	Constraints        string
	Hints              string
	Editorial          string
	TestCases          []judge0.TestCase
	CodeSnippets       map[string]string
	ReferenceSolutions map[string]string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProblemSummary is the list view of a problem.
type ProblemSummary struct {
	ID         int64
	Title      string
	Difficulty Difficulty
	Tags       []string
	CreatedAt  time.Time
}
