package fs

import (
	"path/filepath"
	"testing"
)

// =============================================================================
// DisableFsync Tests
// =============================================================================

// TestDisableFsync_SyncNeverReachesUnderlyingFile verifies that Sync on a
// file opened through the layer is swallowed.
func TestDisableFsync_SyncNeverReachesUnderlyingFile(t *testing.T) {
	spy := newSpyFS(NewReal())
	fsys := NewDisableFsync(spy)

	path := filepath.Join(t.TempDir(), "data.txt")

	f, err := fsys.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := f.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got, want := spy.syncs, 0; got != want {
		t.Fatalf("underlying syncs=%d, want=%d", got, want)
	}
}

// TestDisableFsync_WritesStillLand verifies the layer only suppresses the
// flush, not the data.
func TestDisableFsync_WritesStillLand(t *testing.T) {
	fsys := NewDisableFsync(NewReal())
	path := filepath.Join(t.TempDir(), "data.txt")

	f, err := fsys.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got, want := string(got), "hello"; got != want {
		t.Fatalf("content=%q, want %q", got, want)
	}
}
