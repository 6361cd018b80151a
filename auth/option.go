package auth

import (
	"log/slog"
	"net/http"
)

type Option func(*Provider)

// WithSource registers a credential key with its scopes and token file
func WithSource(key string, scopes []string, cache *FileCache) Option {
	return func(p *Provider) {
		p.sources[key] = source{
			scopes: scopes,
			cache:  cache,
		}
	}
}

func WithRefresher(r Refresher) Option {
	return func(p *Provider) {
		p.refresher = r
	}
}

func WithAcquirer(a Acquirer) Option {
	return func(p *Provider) {
		p.acquirer = a
	}
}

// WithHTTPClient sets the base client for token endpoints and API calls
func WithHTTPClient(clt *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = clt
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = l
	}
}
