package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/models"
)

// TestStateDBRoundTrip verifies record-then-check behavior.
func TestStateDBRoundTrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	unchanged, err := state.Unchanged(testScope, "groups.json", 100, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if unchanged {
		t.Error("Unchanged = true before Record")
	}

	if err := state.Record(testScope, "groups.json", 100, "abc"); err != nil {
		t.Fatal(err)
	}

	unchanged, err = state.Unchanged(testScope, "groups.json", 100, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !unchanged {
		t.Error("Unchanged = false after Record")
	}

	// Changed hash means the file must be re-imported.
	unchanged, err = state.Unchanged(testScope, "groups.json", 100, "different")
	if err != nil {
		t.Fatal(err)
	}
	if unchanged {
		t.Error("Unchanged = true for changed hash")
	}
}

// TestStateDBScopeIsolation verifies a file recorded for one scope is not
// treated as imported for another: the same export loaded into a second
// academy must be processed in full.
func TestStateDBScopeIsolation(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	if err := state.Record(testScope, "athletes.json", 42, "abc"); err != nil {
		t.Fatal(err)
	}

	other := models.Scope{TenantID: testScope.TenantID, AcademyID: uuid.New()}
	unchanged, err := state.Unchanged(other, "athletes.json", 42, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if unchanged {
		t.Error("Unchanged = true for a different academy")
	}

	unchanged, err = state.Unchanged(testScope, "athletes.json", 42, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !unchanged {
		t.Error("Unchanged = false for the recording scope")
	}
}

// TestHashFile verifies hashing is content-based and stable.
func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	h1, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("hash not stable: %s != %s", h1, h2)
	}

	other := filepath.Join(dir, "b.json")
	if err := os.WriteFile(other, []byte(`[{}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	h3, err := HashFile(other)
	if err != nil {
		t.Fatal(err)
	}
	if h3 == h1 {
		t.Error("different content produced the same hash")
	}
}
