package invoke

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ErrorCodeInvalidInput is returned when the caller-supplied command is unusable.
	ErrorCodeInvalidInput = "INVALID_INPUT"
	// ErrorCodeInstallFailure is recorded when the install step did not succeed.
	// It never fails a run on its own; the binary lookup that follows does.
	ErrorCodeInstallFailure = "INSTALL_FAILURE"
	// ErrorCodeBinaryNotFound is returned when the CLI cannot be located on PATH.
	ErrorCodeBinaryNotFound = "BINARY_NOT_FOUND"
	// ErrorCodeExecutionStart is returned when the child process could not be spawned.
	ErrorCodeExecutionStart = "EXECUTION_START_FAILURE"
	// ErrorCodeCommandFailure is returned when the CLI ran and exited nonzero.
	ErrorCodeCommandFailure = "COMMAND_FAILURE"
	// ErrorCodeParseFailure is returned when stdout is not valid JSON.
	ErrorCodeParseFailure = "PARSE_FAILURE"
	// ErrorCodePublishFailure is returned when an output could not be written.
	ErrorCodePublishFailure = "PUBLISH_FAILURE"
)

// GenericFailureMessage is reported when the CLI never produced a result.
const GenericFailureMessage = "Failed to execute OCI CLI command."

// ErrEmptyCommand is the cause for a blank command input.
var ErrEmptyCommand = errors.New("invoke: command is empty")

// Error is a classified pipeline failure. Code is machine readable, Message
// is what gets reported to the caller.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	code := strings.TrimSpace(e.Code)
	msg := strings.TrimSpace(e.Message)
	switch {
	case code == "" && msg == "":
		return ErrorCodeCommandFailure
	case code == "":
		return msg
	case msg == "":
		return code
	default:
		return fmt.Sprintf("%s: %s", code, msg)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(code, message string, cause error) *Error {
	cleanCode := strings.TrimSpace(code)
	if cleanCode == "" {
		cleanCode = ErrorCodeCommandFailure
	}
	cleanMsg := strings.TrimSpace(message)
	if cleanMsg == "" && cause != nil {
		cleanMsg = cause.Error()
	}
	return &Error{
		Code:    cleanCode,
		Message: cleanMsg,
		Cause:   cause,
	}
}

func withErrorDetails(err *Error, details map[string]any) *Error {
	if err == nil || len(details) == 0 {
		return err
	}
	if err.Details == nil {
		err.Details = make(map[string]any, len(details))
	}
	for key, value := range details {
		err.Details[key] = value
	}
	return err
}

// ErrorCode returns the classification code carried by err, or "".
func ErrorCode(err error) string {
	var invokeErr *Error
	if errors.As(err, &invokeErr) && invokeErr != nil {
		return invokeErr.Code
	}
	return ""
}

// ErrorMessage returns the caller-facing message carried by err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var invokeErr *Error
	if errors.As(err, &invokeErr) && invokeErr != nil && strings.TrimSpace(invokeErr.Message) != "" {
		return invokeErr.Message
	}
	return err.Error()
}
