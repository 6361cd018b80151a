// Package store persists conversations keyed by session id.
//
// Backends register themselves like database/sql drivers; import the backend package
// for its side effect and Open it by name.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"github.com/bububa/atomic-assistant/components"
)

var (
	// ErrInvalidSessionID is returned for empty or malformed session ids
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrUnknownDriver is returned by Open for an unregistered backend
	ErrUnknownDriver = errors.New("unknown store driver")
)

const maxSessionIDLen = 128

// Store is an append-only conversation log per session.
// Loading an unknown session yields an empty conversation.
type Store interface {
	Load(ctx context.Context, sessionID string) (*components.Conversation, error)
	// Append adds msgs at the end of the session in order
	Append(ctx context.Context, sessionID string, msgs ...components.Message) error
	// Sessions lists the ids of stored sessions
	Sessions(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// NewSessionID returns a random session id
func NewSessionID() string {
	return uuid.NewString()
}

// ValidateSessionID rejects empty, oversized and non printable ids
func ValidateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSessionID)
	}
	if len(sessionID) > maxSessionIDLen {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidSessionID, maxSessionIDLen)
	}
	for _, r := range sessionID {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
		}
	}
	return nil
}

// Factory opens a backend for a data source name
type Factory func(dsn string) (Store, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Factory)
)

// Register makes a backend available by name, it panics on duplicates
func Register(name string, factory Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if factory == nil {
		panic("store: Register factory is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("store: Register called twice for driver " + name)
	}
	drivers[name] = factory
}

// Drivers returns the sorted names of registered backends
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	list := make([]string, 0, len(drivers))
	for name := range drivers {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// Open opens a registered backend
func Open(driver string, dsn string) (Store, error) {
	driversMu.RLock()
	factory, ok := drivers[driver]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (registered: %s)", ErrUnknownDriver, driver, strings.Join(Drivers(), ", "))
	}
	return factory(dsn)
}
