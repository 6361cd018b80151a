// Command assistant is a terminal personal assistant with calendar, tasks and web search tools.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bububa/atomic-assistant/agents"
	"github.com/bububa/atomic-assistant/config"
	"github.com/bububa/atomic-assistant/store"
)

const separator = "===================================="

func main() {
	var (
		configPath string
		envFile    string
		sessionID  string
		list       bool
		forget     bool
	)
	flag.StringVar(&configPath, "config", "", "path of the YAML configuration file")
	flag.StringVar(&envFile, "env", ".env", "path of the .env file, ignored when missing")
	flag.StringVar(&sessionID, "session", "", "session id to resume, a new session is started when empty")
	flag.BoolVar(&list, "sessions", false, "list the stored session ids and exit")
	flag.BoolVar(&forget, "forget", false, "delete the conversation of -session and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, configPath, envFile, sessionID, list, forget); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, envFile string, sessionID string, list bool, forget bool) error {
	if forget && sessionID == "" {
		return errors.New("-forget needs a -session id")
	}
	cfg, err := config.Load(configPath, config.WithOptionalEnvFile(envFile))
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	st, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	clients, err := newAuthProvider(cfg, os.Stdout, logger)
	if err != nil {
		return err
	}
	registry, err := newRegistry(cfg, clients, loc, logger)
	if err != nil {
		return err
	}
	model, err := newModel(cfg)
	if err != nil {
		return err
	}
	assistant := newAssistant(cfg, model, registry, st, loc, logger)
	logger.Info("assistant ready",
		slog.String("provider", cfg.Provider),
		slog.String("store", cfg.Store.Driver),
		slog.Any("tools", registry.Names()),
	)
	switch {
	case list:
		return listSessions(ctx, os.Stdout, assistant)
	case forget:
		return forgetSession(ctx, os.Stdout, assistant, sessionID)
	}
	if sessionID == "" {
		sessionID = store.NewSessionID()
		fmt.Printf("Session: %s\n", sessionID)
	}
	return repl(ctx, os.Stdin, os.Stdout, assistant, sessionID)
}

// repl reads user lines until EOF or a quit command
func repl(ctx context.Context, in io.Reader, out io.Writer, assistant *agents.Assistant, sessionID string) error {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "User: ")
		txt, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || txt == "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			return err
		}
		txt = strings.TrimSpace(txt)
		if txt == "" {
			continue
		}
		fmt.Fprintln(out, separator)
		switch strings.ToLower(txt) {
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		reply, err := assistant.Run(ctx, sessionID, txt)
		switch {
		case err == nil:
			fmt.Fprintf(out, "Assistant: %s\n", reply.Content())
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case errors.Is(err, agents.ErrModelUnavailable):
			fmt.Fprintf(out, "Assistant unavailable: %v\n", err)
		default:
			return err
		}
		fmt.Fprintln(out, separator)
	}
}

// listSessions prints one stored session id per line
func listSessions(ctx context.Context, out io.Writer, assistant *agents.Assistant) error {
	ids, err := assistant.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No stored sessions.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

func forgetSession(ctx context.Context, out io.Writer, assistant *agents.Assistant, sessionID string) error {
	if err := assistant.Forget(ctx, sessionID); err != nil {
		return err
	}
	fmt.Fprintf(out, "Session %s forgotten.\n", sessionID)
	return nil
}
