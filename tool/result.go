package tool

import (
	"errors"
	"fmt"
)

// Status tags the outcome of a tool call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the outcome of a tool call as sent back to the model.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success builds a successful Result.
func Success(message string, data any) Result {
	return Result{Status: StatusSuccess, Message: message, Data: data}
}

// Failure builds an error Result.
func Failure(message string) Result {
	return Result{Status: StatusError, Message: message}
}

// Failuref builds an error Result with a formatted message.
func Failuref(format string, args ...any) Result {
	return Failure(fmt.Sprintf(format, args...))
}

// FromError renders err into an error Result. A ToolError contributes its
// message only.
func FromError(err error) Result {
	var te *ToolError
	if errors.As(err, &te) {
		return Failure(te.Message)
	}
	return Failure(err.Error())
}

// IsError reports whether the call failed.
func (r Result) IsError() bool { return r.Status == StatusError }
