package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	uerrors "github.com/adamancini/updraft/internal/errors"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), ".updraft", "state.json"), zerolog.Nop())
}

func TestFileStoreLoadMissingReturnsDefault(t *testing.T) {
	store := newTestStore(t)

	st, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.Initialized || st.Interrupted {
		t.Errorf("Load() = %+v, want default record", st)
	}
	if st.PackageName != "" || st.Version != "" {
		t.Errorf("Load() = %+v, want empty package and version", st)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := State{PackageName: "omen", Version: "1.4.0", Initialized: true, Interrupted: false}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestFileStoreSaveOverwritesWholesale(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(State{PackageName: "omen", Version: "1.0.0", Initialized: true}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(State{Interrupted: true}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	want := State{Interrupted: true}
	if got != want {
		t.Errorf("Load() = %+v, want %+v (no merge with previous record)", got, want)
	}
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(State{PackageName: "omen", Version: "2.0.0", Initialized: true}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("state dir contains %v, want only state.json", names)
	}
}

func TestFileStoreWritesSchemaFields(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(State{PackageName: "omen", Version: "1.0.0", Initialized: true, Interrupted: true}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(store.Path)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"packageName": "omen"`, `"version": "1.0.0"`, `"initialized": true`, `"interrupted": true`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("state file missing %s:\n%s", field, data)
		}
	}
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	store := newTestStore(t)

	if err := os.MkdirAll(filepath.Dir(store.Path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := store.Load()
	if err == nil {
		t.Fatal("Load() expected error for corrupt file")
	}
	if !uerrors.IsCode(err, uerrors.CodeStateRead) {
		t.Errorf("Load() error code = %s, want %s", uerrors.CodeOf(err), uerrors.CodeStateRead)
	}
}

func TestFileStoreReset(t *testing.T) {
	store := newTestStore(t)

	if err := store.Reset(); err != nil {
		t.Errorf("Reset() on missing file error = %v", err)
	}

	if err := store.Save(State{Initialized: true}); err != nil {
		t.Fatal(err)
	}
	if !store.Exists() {
		t.Fatal("Exists() = false after Save")
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if store.Exists() {
		t.Error("Exists() = true after Reset")
	}
}
