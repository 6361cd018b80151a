package components

import (
	"sync"
)

// Memory Manages the conversation history of one session.
// History is append-only, insertion order is conversation order.
// threadsafe
type Memory struct {
	//	history is a list of messages representing the chat history.
	history []Message
	// mtx sync lock
	mtx *sync.RWMutex
}

// NewMemory initializes the Memory with an empty history.
func NewMemory() *Memory {
	return &Memory{
		history: make([]Message, 0, 16),
		mtx:     new(sync.RWMutex),
	}
}

// Append adds copies of msgs to the history.
func (m *Memory) Append(msgs ...Message) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, msg := range msgs {
		m.history = append(m.history, msg.Clone())
	}
}

// History returns a copy of the chat history.
func (m *Memory) History() []Message {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return CloneMessages(m.history)
}
