package memory

import (
	"testing"

	"github.com/bububa/atomic-assistant/store"
	"github.com/bububa/atomic-assistant/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store {
		return New()
	})
}

func TestOpenRegistered(t *testing.T) {
	s, err := store.Open(DriverName, "")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*Store); !ok {
		t.Errorf("expect *memory.Store, but got %T", s)
	}
}
