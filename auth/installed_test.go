package auth

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// urlWriter captures the printed consent URL
type urlWriter chan string

func (w urlWriter) Write(p []byte) (int, error) {
	line := strings.TrimSpace(string(p))
	if idx := strings.Index(line, "http"); idx >= 0 {
		w <- line[idx:]
	}
	return len(p), nil
}

func newInstalledTestFlow(t *testing.T) (*InstalledAppFlow, urlWriter) {
	t.Helper()
	srv := newTokenServer(t, "interactive")
	cfg := &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.example.com/auth",
			TokenURL:  srv.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	prompt := make(urlWriter, 1)
	return NewInstalledAppFlow(cfg, WithPrompt(prompt), WithTimeout(5*time.Second)), prompt
}

func TestInstalledAppFlow(t *testing.T) {
	flow, prompt := newInstalledTestFlow(t)
	type result struct {
		token *oauth2.Token
		err   error
	}
	done := make(chan result, 1)
	go func() {
		token, err := flow.Acquire(context.Background(), CalendarScopes)
		done <- result{token, err}
	}()
	authURL, err := url.Parse(<-prompt)
	if err != nil {
		t.Fatalf("parse consent url failed: %v", err)
	}
	q := authURL.Query()
	if q.Get("access_type") != "offline" || q.Get("code_challenge") == "" {
		t.Errorf("expect offline access with pkce, got %s", authURL)
	}
	if q.Get("scope") != CalendarScopes[0] {
		t.Errorf("expect calendar scope, but got %s", q.Get("scope"))
	}
	redirect := q.Get("redirect_uri")
	if !strings.HasPrefix(redirect, "http://127.0.0.1:") {
		t.Fatalf("expect loopback redirect, but got %s", redirect)
	}
	resp, err := http.Get(redirect + "?code=abc&state=" + url.QueryEscape(q.Get("state")))
	if err != nil {
		t.Fatalf("redirect failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != installedAppSuccessMessage {
		t.Errorf("unexpected redirect page %q", body)
	}
	res := <-done
	if res.err != nil {
		t.Fatalf("acquire failed: %v", res.err)
	}
	if res.token.AccessToken != "interactive" || res.token.RefreshToken != "server-refresh" {
		t.Errorf("unexpected token %+v", res.token)
	}
}

func TestInstalledAppFlowStateMismatch(t *testing.T) {
	flow, prompt := newInstalledTestFlow(t)
	done := make(chan error, 1)
	go func() {
		_, err := flow.Acquire(context.Background(), TasksScopes)
		done <- err
	}()
	authURL, err := url.Parse(<-prompt)
	if err != nil {
		t.Fatalf("parse consent url failed: %v", err)
	}
	resp, err := http.Get(authURL.Query().Get("redirect_uri") + "?code=abc&state=forged")
	if err != nil {
		t.Fatalf("redirect failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expect 400, but got %d", resp.StatusCode)
	}
	if err := <-done; err == nil || !strings.Contains(err.Error(), "state mismatch") {
		t.Errorf("expect state mismatch error, but got %v", err)
	}
}

func TestInstalledAppFlowCanceled(t *testing.T) {
	flow, prompt := newInstalledTestFlow(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := flow.Acquire(ctx, TasksScopes)
		done <- err
	}()
	<-prompt
	cancel()
	if err := <-done; err == nil {
		t.Error("expect error after cancel")
	}
}
