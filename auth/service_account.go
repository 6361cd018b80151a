package auth

import (
	"context"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ServiceAccount acquires tokens headlessly with a service account key.
// Subject, when set, is the user impersonated through domain wide delegation.
type ServiceAccount struct {
	key     []byte
	subject string
}

var _ Acquirer = (*ServiceAccount)(nil)

func NewServiceAccount(key []byte, subject string) *ServiceAccount {
	return &ServiceAccount{
		key:     key,
		subject: subject,
	}
}

// LoadServiceAccount reads a service account key file
func LoadServiceAccount(path string, subject string) (*ServiceAccount, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewServiceAccount(bs, subject), nil
}

func (s *ServiceAccount) Acquire(ctx context.Context, scopes []string) (*oauth2.Token, error) {
	cfg, err := google.JWTConfigFromJSON(s.key, scopes...)
	if err != nil {
		return nil, err
	}
	cfg.Subject = s.subject
	return cfg.TokenSource(ctx).Token()
}
