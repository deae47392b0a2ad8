package errors_test

import (
	"errors"
	"fmt"
	"testing"

	. "leetlab/pkg/errors"
)

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code       ErrorCode
		wantStatus int
	}{
		{Success, 200},
		{InvalidParams, 400},
		{ValidationFailed, 400},
		{LanguageNotSupported, 400},
		{ReferenceSolutionFailed, 400},
		{TestCaseInvalid, 400},
		{InvalidCredentials, 401},
		{TokenExpired, 401},
		{Unauthorized, 401},
		{Forbidden, 403},
		{UserNotFound, 404},
		{ProblemNotFound, 404},
		{EmailAlreadyExists, 409},
		{TooManyRequests, 429},
		{JudgeSubmitFailed, 502},
		{JudgePollFailed, 502},
		{JudgePollExhausted, 504},
		{InternalServerError, 500},
		{DatabaseError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.code.Message(), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.wantStatus {
				t.Errorf("HTTPStatus() = %v, want %v", got, tt.wantStatus)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ReferenceSolutionFailed, "Testcase %d failed for language %s", 2, "PYTHON")
	if err.Error() != "Testcase 2 failed for language PYTHON" {
		t.Errorf("Error() = %v", err.Error())
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrappedErr := Wrap(originalErr, DatabaseError)

	if wrappedErr.Code != DatabaseError {
		t.Errorf("Code = %v, want %v", wrappedErr.Code, DatabaseError)
	}
	if wrappedErr.Unwrap() != originalErr {
		t.Error("Unwrap() should return original error")
	}
	if Wrap(nil, DatabaseError) != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestError_Details(t *testing.T) {
	err := New(ReferenceSolutionFailed).
		WithDetail("language", "JAVA").
		WithDetails(map[string]interface{}{"testcase": 3, "status": "Wrong Answer"})

	if v, ok := err.Detail("language"); !ok || v != "JAVA" {
		t.Errorf("language detail = %v", v)
	}
	if v, _ := err.Detail("testcase"); v != 3 {
		t.Errorf("testcase detail = %v", v)
	}
	if _, ok := err.Detail("missing"); ok {
		t.Error("unexpected detail")
	}
}

func TestGetCodeThroughWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil error", err: nil, want: Success},
		{name: "custom error", err: New(JudgePollExhausted), want: JudgePollExhausted},
		{name: "fmt wrapped", err: fmt.Errorf("grading: %w", New(JudgePollFailed)), want: JudgePollFailed},
		{name: "standard error", err: errors.New("standard error"), want: InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(LanguageNotSupported)

	if !Is(err, LanguageNotSupported) {
		t.Error("Is() should return true for matching code")
	}
	if Is(err, DatabaseError) {
		t.Error("Is() should return false for non-matching code")
	}
	if Is(nil, LanguageNotSupported) {
		t.Error("Is() should return false for nil error")
	}
}
