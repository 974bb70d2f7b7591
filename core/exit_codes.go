package core

import (
	"os"
	"syscall"
)

// Process exit codes. Signal exits follow the 128+N shell convention.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	// ExitCodeInvalid means the parameters failed validation and nothing was sent.
	ExitCodeInvalid = 2
	ExitCodeSIGINT  = 130
	ExitCodeSIGTERM = 143
)

// ExitCodeName returns a short label for code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeInvalid:
		return "invalid parameters"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	case ExitCodeSIGTERM:
		return "terminated (SIGTERM)"
	default:
		return "unknown"
	}
}

// ExitCodeForSignal maps a termination signal to its exit code.
func ExitCodeForSignal(sig os.Signal) int {
	if sig == syscall.SIGTERM {
		return ExitCodeSIGTERM
	}
	return ExitCodeSIGINT
}

// IsSignalExit reports whether code came from a signal.
func IsSignalExit(code int) bool {
	return code == ExitCodeSIGINT || code == ExitCodeSIGTERM
}
