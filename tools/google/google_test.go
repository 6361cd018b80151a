package google

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/bububa/atomic-assistant/tools"
)

type failingClients struct{}

func (failingClients) HTTPClient(context.Context, string) (*http.Client, error) {
	return nil, errors.New("token revoked")
}

func TestServiceError(t *testing.T) {
	svc := NewService("calendar", "calendar", failingClients{})
	err := svc.Error("events.insert", &googleapi.Error{Code: 400, Message: "Invalid start time."})
	if got := err.Error(); got != "calendar events.insert failed: Invalid start time. (HTTP 400)" {
		t.Errorf("unexpected error string %q", got)
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		t.Error("expect googleapi error kept in chain")
	}
	err = svc.Error("events.list", &googleapi.Error{Code: 503})
	if got := err.Error(); got != "calendar events.list failed: Service Unavailable (HTTP 503)" {
		t.Errorf("unexpected error string %q", got)
	}
}

func TestServiceClientOptionsError(t *testing.T) {
	_, err := NewService("tasks", "tasks", failingClients{}).ClientOptions(context.Background())
	var serviceErr *tools.ExternalServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Op != "authorize" {
		t.Errorf("expect authorize ExternalServiceError, but got %v", err)
	}
}
