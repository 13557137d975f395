package cli

import "fmt"

// Process exit codes.
const (
	exitSuccess = 0
	// exitFailure is a failed CLI invocation or install.
	exitFailure = 1
	// exitRuntime is a configuration or wiring problem.
	exitRuntime = 2
)

// ExitError is an error that carries a specific process exit code.
// Cobra's RunE returns this to signal the desired exit code to main.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
