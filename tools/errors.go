package tools

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool is reported when a tool call names an unregistered tool
	ErrUnknownTool = errors.New("unknown tool")
	// ErrDuplicateTool is returned when registering a name twice
	ErrDuplicateTool = errors.New("duplicate tool name")
	// ErrInvalidToolName is returned for names the model APIs reject
	ErrInvalidToolName = errors.New("invalid tool name")
	// ErrInvalidArguments wraps argument decoding and validation failures
	ErrInvalidArguments = errors.New("invalid arguments")
)

// ExternalServiceError is a failure of the service behind a tool
type ExternalServiceError struct {
	// Service is the remote service, e.g. calendar
	Service string
	// Op is the failed operation, e.g. events.insert
	Op  string
	Err error
}

func NewExternalServiceError(service string, op string, err error) *ExternalServiceError {
	return &ExternalServiceError{
		Service: service,
		Op:      op,
		Err:     err,
	}
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// ErrorContent renders a failure as the tool result content shown to the model
func ErrorContent(err error) string {
	return fmt.Sprintf("Error: %v\n please fix your mistakes.", err)
}
