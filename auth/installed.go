package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const installedAppSuccessMessage = "The authentication flow has completed. You may close this window."

// LoadClientSecrets reads an OAuth client secrets file (credentials.json)
func LoadClientSecrets(path string) (*oauth2.Config, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return google.ConfigFromJSON(bs)
}

type InstalledAppOption func(*InstalledAppFlow)

// WithListenAddr sets the loopback address receiving the redirect
func WithListenAddr(addr string) InstalledAppOption {
	return func(f *InstalledAppFlow) {
		f.addr = addr
	}
}

// WithPrompt sets where the consent URL is printed
func WithPrompt(w io.Writer) InstalledAppOption {
	return func(f *InstalledAppFlow) {
		f.prompt = w
	}
}

// WithTimeout bounds the wait for the user consent
func WithTimeout(d time.Duration) InstalledAppOption {
	return func(f *InstalledAppFlow) {
		f.timeout = d
	}
}

// InstalledAppFlow is the interactive consent flow of a desktop app.
// The user opens the printed URL, the browser redirects to a loopback server and the
// code is exchanged for a token.
type InstalledAppFlow struct {
	config  *oauth2.Config
	addr    string
	prompt  io.Writer
	timeout time.Duration
}

var _ Acquirer = (*InstalledAppFlow)(nil)

func NewInstalledAppFlow(cfg *oauth2.Config, opts ...InstalledAppOption) *InstalledAppFlow {
	ret := &InstalledAppFlow{
		config:  cfg,
		addr:    "127.0.0.1:0",
		prompt:  os.Stdout,
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

type authResult struct {
	code string
	err  error
}

func (f *InstalledAppFlow) Acquire(ctx context.Context, scopes []string) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		return nil, err
	}
	cfg := *f.config
	cfg.Scopes = scopes
	cfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	resultCh := make(chan authResult, 1)
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			var res authResult
			switch {
			case q.Get("state") != state:
				res.err = errors.New("state mismatch in authorization response")
			case q.Get("error") != "":
				res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
			case q.Get("code") == "":
				res.err = errors.New("missing authorization code")
			default:
				res.code = q.Get("code")
			}
			if res.err != nil {
				http.Error(w, res.err.Error(), http.StatusBadRequest)
			} else {
				io.WriteString(w, installedAppSuccessMessage)
			}
			select {
			case resultCh <- res:
			default:
			}
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go srv.Serve(ln)
	defer srv.Close()

	fmt.Fprintf(f.prompt, "Please visit this URL to authorize this application: %s\n", authURL)

	waitCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	var res authResult
	select {
	case res = <-resultCh:
	case <-waitCtx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", waitCtx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}
	return cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
}
