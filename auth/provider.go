package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

const (
	CalendarKey = "calendar"
	TasksKey    = "tasks"
)

type source struct {
	scopes []string
	cache  *FileCache
}

// Provider hands out valid credentials per key.
// Loading, refreshing and persisting a key is serialized by a per key lock.
type Provider struct {
	sources    map[string]source
	refresher  Refresher
	acquirer   Acquirer
	httpClient *http.Client
	logger     *slog.Logger
	mu         sync.Mutex
	locks      map[string]*sync.Mutex
}

func NewProvider(opts ...Option) *Provider {
	ret := &Provider{
		sources: make(map[string]source),
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return ret
}

func (p *Provider) lock(key string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[key]
	if !ok {
		l = new(sync.Mutex)
		p.locks[key] = l
	}
	return l
}

func (p *Provider) withHTTPClient(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// Credential returns a valid credential for key.
// A cached credential is returned as is when valid, refreshed when expired and
// acquired again when it is missing or cannot be refreshed. Every new token is persisted.
func (p *Provider) Credential(ctx context.Context, key string) (*Credential, error) {
	src, ok := p.sources[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	l := p.lock(key)
	l.Lock()
	defer l.Unlock()
	ctx = p.withHTTPClient(ctx)
	logger := p.logger.With(slog.String("credential", key))
	cred, err := src.cache.Load()
	if err != nil {
		logger.Warn("load cached credential failed", slog.Any("error", err))
		cred = nil
	}
	if cred != nil && !cred.Covers(src.scopes) {
		logger.Info("cached credential misses scopes, discarding")
		cred = nil
	}
	if cred.Valid() {
		return cred, nil
	}
	var refreshErr error
	if cred.Refreshable() && p.refresher != nil {
		token, err := p.refresher.Refresh(ctx, cred.Token)
		if err == nil {
			logger.Info("credential refreshed", slog.Time("expiry", token.Expiry))
			return p.persist(logger, src, token)
		}
		refreshErr = err
		logger.Warn("refresh credential failed", slog.Any("error", err))
	}
	if p.acquirer == nil {
		if cred != nil {
			if refreshErr != nil {
				return nil, fmt.Errorf("%w: %w", ErrCredentialExpired, refreshErr)
			}
			return nil, ErrCredentialExpired
		}
		return nil, fmt.Errorf("%w for %s", ErrNoCredential, key)
	}
	token, err := p.acquirer.Acquire(ctx, src.scopes)
	if err != nil {
		return nil, fmt.Errorf("acquire %s credential: %w", key, err)
	}
	logger.Info("credential acquired", slog.Time("expiry", token.Expiry))
	return p.persist(logger, src, token)
}

func (p *Provider) persist(logger *slog.Logger, src source, token *oauth2.Token) (*Credential, error) {
	cred := &Credential{
		Scopes: src.scopes,
		Token:  token,
	}
	if err := src.cache.Save(cred); err != nil {
		// the credential is still usable for this process
		logger.Error("persist credential failed", slog.String("path", src.cache.Path()), slog.Any("error", err))
	}
	return cred, nil
}

// HTTPClient returns a client authorized with the current credential for key.
// The client is meant for a single call; request a new one for the next call.
func (p *Provider) HTTPClient(ctx context.Context, key string) (*http.Client, error) {
	cred, err := p.Credential(ctx, key)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(p.withHTTPClient(ctx), oauth2.StaticTokenSource(cred.Token)), nil
}
