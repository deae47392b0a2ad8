package errors

import "net/http"

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: User & Auth errors
// 12000-12999: Problem errors
// 13000-13999: Submission & Judge errors
// 16000-16999: Permission errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Unauthorized        ErrorCode = 10004
	Forbidden           ErrorCode = 10005
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Database errors (10100-10199)
	DatabaseError       ErrorCode = 10100
	RecordNotFound      ErrorCode = 10101
	RecordAlreadyExists ErrorCode = 10102
	TransactionFailed   ErrorCode = 10103

	// Cache errors (10200-10299)
	CacheError ErrorCode = 10200

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	InvalidValue       ErrorCode = 10302
	RequiredFieldEmpty ErrorCode = 10303

	// ========== User Module Errors (11000-11999) ==========

	// Authentication (11000-11099)
	InvalidCredentials    ErrorCode = 11000
	UserNotFound          ErrorCode = 11001
	TokenExpired          ErrorCode = 11003
	TokenInvalid          ErrorCode = 11004
	TokenGenerationFailed ErrorCode = 11005

	// Registration (11100-11199)
	EmailAlreadyExists ErrorCode = 11101
	InvalidEmail       ErrorCode = 11103
	InvalidPassword    ErrorCode = 11104
	PasswordTooWeak    ErrorCode = 11105
	InvalidName        ErrorCode = 11106

	// ========== Problem Module Errors (12000-12999) ==========

	ProblemNotFound     ErrorCode = 12000
	ProblemCreateFailed ErrorCode = 12002
	ProblemUpdateFailed ErrorCode = 12003
	ProblemDeleteFailed ErrorCode = 12004

	// Test cases & reference solutions (12100-12199)
	TestCaseInvalid         ErrorCode = 12102
	ReferenceSolutionFailed ErrorCode = 12104

	// ========== Submission & Judge Module Errors (13000-13999) ==========

	// Submission (13000-13099)
	SubmissionNotFound     ErrorCode = 13000
	SubmissionCreateFailed ErrorCode = 13001
	CodeTooLarge           ErrorCode = 13002
	LanguageNotSupported   ErrorCode = 13003

	// Judge (13100-13199)
	JudgeSystemError   ErrorCode = 13101
	JudgeSubmitFailed  ErrorCode = 13110
	JudgePollFailed    ErrorCode = 13111
	JudgePollExhausted ErrorCode = 13112

	// ========== Permission Errors (16000-16999) ==========

	PermissionDenied       ErrorCode = 16000
	InsufficientPermission ErrorCode = 16001
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Unauthorized:        "Unauthorized access",
	Forbidden:           "Access forbidden",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Database
	DatabaseError:       "Database operation failed",
	RecordNotFound:      "Record not found in database",
	RecordAlreadyExists: "Record already exists",
	TransactionFailed:   "Database transaction failed",

	// Cache
	CacheError: "Cache operation failed",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// User - Authentication
	InvalidCredentials:    "Invalid email or password",
	UserNotFound:          "User not found",
	TokenExpired:          "Token has expired",
	TokenInvalid:          "Invalid token",
	TokenGenerationFailed: "Failed to generate token",

	// User - Registration
	EmailAlreadyExists: "User already exists",
	InvalidEmail:       "Invalid email format",
	InvalidPassword:    "Invalid password format",
	PasswordTooWeak:    "Password is too weak",
	InvalidName:        "Invalid name",

	// Problem
	ProblemNotFound:     "Problem not found",
	ProblemCreateFailed: "Error creating problem",
	ProblemUpdateFailed: "Error updating problem",
	ProblemDeleteFailed: "Error deleting problem",

	// Test cases
	TestCaseInvalid:         "Invalid test case format",
	ReferenceSolutionFailed: "Reference solution failed",

	// Submission
	SubmissionNotFound:     "Submission not found",
	SubmissionCreateFailed: "Failed to create submission",
	CodeTooLarge:           "Code is too large",
	LanguageNotSupported:   "Language not supported",

	// Judge
	JudgeSystemError:   "Judge system error",
	JudgeSubmitFailed:  "Failed to submit batch to judge",
	JudgePollFailed:    "Failed to fetch results from judge",
	JudgePollExhausted: "Polling exceeded maximum retries",

	// Permission
	PermissionDenied:       "Permission denied",
	InsufficientPermission: "Insufficient permission",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return http.StatusOK
	case c >= 11000 && c < 11100: // Authentication errors
		if c == UserNotFound {
			return http.StatusNotFound
		}
		return http.StatusUnauthorized
	case c == Unauthorized:
		return http.StatusUnauthorized
	case c == Forbidden, c >= 16000 && c < 16100:
		return http.StatusForbidden
	case c == NotFound, c == ProblemNotFound, c == SubmissionNotFound:
		return http.StatusNotFound
	case c == EmailAlreadyExists, c == RecordAlreadyExists:
		return http.StatusConflict
	case c >= 11100 && c < 11200: // Registration input errors
		return http.StatusBadRequest
	case c == TooManyRequests:
		return http.StatusTooManyRequests
	case c == ServiceUnavailable:
		return http.StatusServiceUnavailable
	case c == JudgeSubmitFailed, c == JudgePollFailed:
		return http.StatusBadGateway
	case c == JudgePollExhausted, c == Timeout:
		return http.StatusGatewayTimeout
	case c >= 10300 && c < 10400: // Validation errors
		return http.StatusBadRequest
	case c == InvalidParams, c == LanguageNotSupported, c == CodeTooLarge,
		c == TestCaseInvalid, c == ReferenceSolutionFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
