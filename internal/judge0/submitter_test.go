package judge0

import (
	"context"
	"errors"
	"testing"

	pkgerrors "leetlab/pkg/errors"
)

func TestSubmitPreservesTestCaseOrder(t *testing.T) {
	api := &fakeAPI{}
	testcases := []TestCase{
		{Input: "1 2", Output: "3"},
		{Input: "2 2", Output: "4"},
		{Input: "5 5", Output: "10"},
	}

	tokens, err := NewSubmitter(api).Submit(context.Background(), testcases, "print(sum)", 71)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(tokens) != 3 || tokens[0] != "tok-0" || tokens[2] != "tok-2" {
		t.Fatalf("unexpected tokens: %v", tokens)
	}
	if len(api.submitted) != 1 {
		t.Fatalf("expected a single batch, got %d", len(api.submitted))
	}
	for i, req := range api.submitted[0] {
		if req.Stdin != testcases[i].Input || req.ExpectedOutput != testcases[i].Output {
			t.Fatalf("request %d out of order: %+v", i, req)
		}
		if req.LanguageID != 71 || req.SourceCode != "print(sum)" {
			t.Fatalf("request %d has wrong source: %+v", i, req)
		}
	}
}

func TestSubmitRejectsEmptyTestCases(t *testing.T) {
	api := &fakeAPI{}
	_, err := NewSubmitter(api).Submit(context.Background(), nil, "code", 71)
	if !pkgerrors.Is(err, pkgerrors.TestCaseInvalid) {
		t.Fatalf("expected TestCaseInvalid, got %v", err)
	}
	if len(api.submitted) != 0 {
		t.Fatalf("expected no judge call")
	}
}

func TestSubmitWrapsTransportError(t *testing.T) {
	api := &fakeAPI{submitErr: errors.New("dial tcp: refused")}
	_, err := NewSubmitter(api).Submit(context.Background(), []TestCase{{Input: "1", Output: "1"}}, "code", 71)
	if !pkgerrors.Is(err, pkgerrors.JudgeSubmitFailed) {
		t.Fatalf("expected JudgeSubmitFailed, got %v", err)
	}
	if len(api.submitted) != 1 {
		t.Fatalf("submit must not be retried, got %d calls", len(api.submitted))
	}
}
