package dataset

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestStore_Load(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)
	s := NewStore(path, zerolog.Nop())

	if err := s.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 4 {
		t.Errorf("expected 4 cases, got %d", s.Len())
	}
	id, at := s.Snapshot()
	if id.String() == "00000000-0000-0000-0000-000000000000" || at.IsZero() {
		t.Error("expected a snapshot id and timestamp after load")
	}
}

func TestStore_ReloadSwapsSnapshot(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)
	s := NewStore(path, zerolog.Nop())
	if err := s.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := s.Cases()
	id1, _ := s.Snapshot()

	if err := s.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, _ := s.Snapshot()
	if id1 == id2 {
		t.Error("expected a fresh snapshot id after reload")
	}
	// The earlier slice is still intact; readers holding it are unaffected.
	if len(before) != 4 {
		t.Errorf("previous snapshot mutated, len = %d", len(before))
	}
}

func TestStore_ConcurrentReload(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)
	s := NewStore(path, zerolog.Nop())
	if err := s.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := s.Load(); err != nil {
				t.Errorf("concurrent load: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = s.Cases()
			_, _ = s.Snapshot()
		}()
	}
	wg.Wait()

	if s.Len() != 4 {
		t.Errorf("expected 4 cases after concurrent reloads, got %d", s.Len())
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.csv"), zerolog.Nop())
	if err := s.Load(); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStore_LoadEmptyDataset(t *testing.T) {
	path := writeTempCSV(t, "caseid,age\n")
	s := NewStore(path, zerolog.Nop())
	if err := s.Load(); err == nil {
		t.Error("expected error for dataset with no case rows")
	}
}
