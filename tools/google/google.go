// Package google holds what the google API backed tools share: per call authorized
// clients and error conversion.
package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bububa/atomic-assistant/tools"
)

// ClientProvider returns an authorized client for a credential key
type ClientProvider interface {
	HTTPClient(ctx context.Context, key string) (*http.Client, error)
}

// APIError is a condensed google API error
type APIError struct {
	Code    int
	Message string
	err     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Code)
}

func (e *APIError) Unwrap() error {
	return e.err
}

type Option func(*Service)

// WithEndpoint overrides the API base path
func WithEndpoint(endpoint string) Option {
	return func(s *Service) {
		s.endpoint = endpoint
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Service describes one google API used by a tool set
type Service struct {
	name     string
	key      string
	clients  ClientProvider
	endpoint string
	logger   *slog.Logger
}

func NewService(name string, key string, clients ClientProvider, opts ...Option) *Service {
	ret := &Service{
		name:    name,
		key:     key,
		clients: clients,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return ret
}

func (s *Service) Name() string {
	return s.name
}

// ClientOptions authorizes a single API call
func (s *Service) ClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	clt, err := s.clients.HTTPClient(ctx, s.key)
	if err != nil {
		s.logger.Error("authorize google api failed", slog.String("service", s.name), slog.Any("error", err))
		return nil, s.Error("authorize", err)
	}
	opts := []option.ClientOption{option.WithHTTPClient(clt)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	return opts, nil
}

// Error wraps a failed operation as an ExternalServiceError
func (s *Service) Error(op string, err error) *tools.ExternalServiceError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		err = &APIError{
			Code:    gerr.Code,
			Message: msg,
			err:     err,
		}
	}
	return tools.NewExternalServiceError(s.name, op, err)
}
