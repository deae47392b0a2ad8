package judge0

// Judge0 status ids as returned in status_id.
const (
	StatusInQueue             = 1
	StatusProcessing          = 2
	StatusAccepted            = 3
	StatusWrongAnswer         = 4
	StatusTimeLimitExceeded   = 5
	StatusCompilationError    = 6
	StatusRuntimeErrorSIGSEGV = 7
	StatusRuntimeErrorSIGXFSZ = 8
	StatusRuntimeErrorSIGFPE  = 9
	StatusRuntimeErrorSIGABRT = 10
	StatusRuntimeErrorNZEC    = 11
	StatusRuntimeErrorOther   = 12
	StatusInternalError       = 13
	StatusExecFormatError     = 14
)

var statusNames = map[int]string{
	StatusInQueue:             "In Queue",
	StatusProcessing:          "Processing",
	StatusAccepted:            "Accepted",
	StatusWrongAnswer:         "Wrong Answer",
	StatusTimeLimitExceeded:   "Time Limit Exceeded",
	StatusCompilationError:    "Compilation Error",
	StatusRuntimeErrorSIGSEGV: "Runtime Error (SIGSEGV)",
	StatusRuntimeErrorSIGXFSZ: "Runtime Error (SIGXFSZ)",
	StatusRuntimeErrorSIGFPE:  "Runtime Error (SIGFPE)",
	StatusRuntimeErrorSIGABRT: "Runtime Error (SIGABRT)",
	StatusRuntimeErrorNZEC:    "Runtime Error (NZEC)",
	StatusRuntimeErrorOther:   "Runtime Error (Other)",
	StatusInternalError:       "Internal Error",
	StatusExecFormatError:     "Exec Format Error",
}

// StatusName returns the judge's description for a status id.
func StatusName(statusID int) string {
	if name, ok := statusNames[statusID]; ok {
		return name
	}
	return "Unknown"
}

// IsPending reports whether the execution is still queued or running.
func IsPending(statusID int) bool {
	return statusID == StatusInQueue || statusID == StatusProcessing
}
