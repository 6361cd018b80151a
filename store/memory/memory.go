// Package memory is a volatile store, conversations live as long as the process
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bububa/atomic-assistant/components"
	"github.com/bububa/atomic-assistant/store"
)

const DriverName = "memory"

func init() {
	store.Register(DriverName, func(string) (store.Store, error) {
		return New(), nil
	})
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*components.Memory
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		sessions: make(map[string]*components.Memory),
	}
}

func (s *Store) Load(_ context.Context, sessionID string) (*components.Conversation, error) {
	if err := store.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	conv := &components.Conversation{SessionID: sessionID}
	s.mu.RLock()
	mem, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		conv.Messages = mem.History()
	}
	return conv, nil
}

func (s *Store) Append(_ context.Context, sessionID string, msgs ...components.Message) error {
	if err := store.ValidateSessionID(sessionID); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	mem, ok := s.sessions[sessionID]
	if !ok {
		mem = components.NewMemory()
		s.sessions[sessionID] = mem
	}
	s.mu.Unlock()
	mem.Append(msgs...)
	return nil
}

func (s *Store) Sessions(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		list = append(list, id)
	}
	sort.Strings(list)
	return list, nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	if err := store.ValidateSessionID(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	return nil
}
