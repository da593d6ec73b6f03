package sqlite

import (
	"fmt"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "densities.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return store
}

func TestStore_EmptyOnCreate(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty store, got %v", got)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	entries := map[string]int{"concrete": 2400, "steel": 7850, "paint": 0}

	if err := store.Save(entries); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %v", len(entries), got)
	}
	for name, d := range entries {
		if got[name] != d {
			t.Errorf("%s = %d, want %d", name, got[name], d)
		}
	}
}

func TestStore_SaveReplacesEverything(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save(map[string]int{"steel": 7850, "glass": 2500}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(map[string]int{"steel": 7800}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["steel"] != 7800 {
		t.Errorf("expected only the last save, got %v", got)
	}
}

func TestStore_PersistsAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "densities.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Save(map[string]int{"timber": 500}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	got, err := second.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got["timber"] != 500 {
		t.Errorf("expected timber to persist, got %v", got)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	if got := DefaultPath(); got != filepath.Join("/data", "ifcmass", "densities.db") {
		t.Errorf("DefaultPath() = %q", got)
	}
}

// BenchmarkSave measures replacing a large cache in one transaction
func BenchmarkSave(b *testing.B) {
	store, err := Open(filepath.Join(b.TempDir(), "densities.db"))
	if err != nil {
		b.Fatalf("failed to open store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			b.Fatalf("failed to close store: %v", err)
		}
	}()

	entries := make(map[string]int, 5000)
	for i := range 5000 {
		entries[fmt.Sprintf("material%c%c", 'a'+i%26, 'a'+i/26%26)+fmt.Sprint(i)] = i
	}

	b.ResetTimer()
	for b.Loop() {
		if err := store.Save(entries); err != nil {
			b.Fatalf("save failed: %v", err)
		}
	}
}
