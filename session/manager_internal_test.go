package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/memory"
)

func (m *Manager) lockCount() int {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	return len(m.locks)
}

func TestClearReleasesSessionLock(t *testing.T) {
	dir := t.TempDir()
	mem := memory.NewStore(memory.Config{
		LongTermPath: filepath.Join(dir, "lt.json"),
		FactsPath:    filepath.Join(dir, "facts.json"),
	})
	if err := mem.Load(); err != nil {
		t.Fatal(err)
	}
	m := NewManager(Config{}, mem)
	ctx := context.Background()

	m.Append("s1", core.RoleUser, "hello")
	m.Append("s2", core.RoleUser, "hello")
	if got := m.lockCount(); got != 2 {
		t.Fatalf("expected 2 lock entries, got %d", got)
	}

	if err := m.Clear(ctx, "s1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if got := m.lockCount(); got != 1 {
		t.Errorf("clear should release the session's lock entry, got %d", got)
	}

	// Clearing an absent session leaves nothing behind either
	if err := m.Clear(ctx, "gone"); err != nil {
		t.Fatal(err)
	}
	if got := m.lockCount(); got != 1 {
		t.Errorf("no-op clear should not leave a lock entry, got %d", got)
	}
}
