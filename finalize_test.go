package tempfs

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/tempfs/fs"
)

// newScopeWithLog is newTestScope with a captured log buffer.
func newScopeWithLog(t *testing.T, fsys fs.FS) (*Scope, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	opts := Options{
		FS:       fsys,
		TempRoot: t.TempDir(),
		Logger:   slog.New(slog.NewTextHandler(&buf, nil)),
	}

	scope, err := NewScope(NewRegistry(opts), "pkg.TestScope", 1, opts)
	require.NoError(t, err)

	return scope, &buf
}

func TestFinalize_SuccessRemovesEverythingChildrenFirst(t *testing.T) {
	stub := newStubFS()

	var removed []string

	stub.removeAll = func(path string) error {
		removed = append(removed, path)

		return stub.FS.RemoveAll(path)
	}

	scope, _ := newScopeWithLog(t, stub)

	dir, err := scope.TempDir("d")
	require.NoError(t, err)

	file, err := scope.TempFile("f", ".txt")
	require.NoError(t, err)

	base, err := scope.BaseDir()
	require.NoError(t, err)

	require.NoError(t, scope.Finalize(Outcome{Successful: true}, nil))

	// Reverse creation order: file, dir, then the base itself.
	want := []string{file, dir, base}
	if diff := cmp.Diff(want, removed); diff != "" {
		t.Fatalf("removal order mismatch:\n%s", diff)
	}

	_, err = os.Stat(base)
	require.True(t, os.IsNotExist(err), "base dir should be gone, stat err=%v", err)
}

func TestFinalize_FailureLeavesEvidenceAndNotes(t *testing.T) {
	scope, buf := newScopeWithLog(t, fs.NewReal())

	dir, err := scope.TempDir("d")
	require.NoError(t, err)

	file, err := scope.TempFile("f", ".txt")
	require.NoError(t, err)

	base, err := scope.BaseDir()
	require.NoError(t, err)

	require.NoError(t, scope.Finalize(Outcome{Successful: false}, nil),
		"a failed scope must never be failed further by cleanup")

	for _, p := range []string{base, dir, file} {
		_, err := os.Stat(p)
		require.NoError(t, err, "%s must be left on disk", p)
	}

	require.Contains(t, buf.String(), base, "the notice must name the base dir")
}

func TestFinalize_FailureWithoutBaseIsQuiet(t *testing.T) {
	scope, buf := newScopeWithLog(t, fs.NewReal())

	require.NoError(t, scope.Finalize(Outcome{Successful: false}, nil))
	require.Empty(t, buf.String(), "no base dir, nothing to point at")
}

func TestFinalize_CleanupFailureBecomesScopeFailure(t *testing.T) {
	stub := newStubFS()

	scope, _ := newScopeWithLog(t, stub)

	file, err := scope.TempFile("locked", ".txt")
	require.NoError(t, err)

	stub.removeAll = func(path string) error {
		if path == file {
			return &os.PathError{Op: "remove", Path: path, Err: os.ErrPermission}
		}

		return stub.FS.RemoveAll(path)
	}

	err = scope.Finalize(Outcome{Successful: true}, nil)

	require.Error(t, err)
	require.Contains(t, err.Error(), file, "failure must name the path")
}

func TestFinalize_SuppressionDowngradesCleanupFailure(t *testing.T) {
	stub := newStubFS()

	scope, buf := newScopeWithLog(t, stub)

	file, err := scope.TempFile("locked", ".txt")
	require.NoError(t, err)

	stub.removeAll = func(path string) error {
		if path == file {
			return &os.PathError{Op: "remove", Path: path, Err: os.ErrPermission}
		}

		return stub.FS.RemoveAll(path)
	}

	err = scope.Finalize(Outcome{Successful: true}, &Suppression{Reference: "BUG-42"})

	require.NoError(t, err, "suppressed cleanup failure must not fail the scope")
	require.Contains(t, buf.String(), "BUG-42", "warning must carry the reference")
}

func TestFinalize_LeaveArtifactsNeverRemoves(t *testing.T) {
	var buf bytes.Buffer

	opts := Options{
		FS:             fs.NewReal(),
		TempRoot:       t.TempDir(),
		LeaveArtifacts: true,
		Logger:         slog.New(slog.NewTextHandler(&buf, nil)),
	}

	scope, err := NewScope(NewRegistry(opts), "pkg.TestLeave", 1, opts)
	require.NoError(t, err)

	dir, err := scope.TempDir("d")
	require.NoError(t, err)

	base, err := scope.BaseDir()
	require.NoError(t, err)

	require.NoError(t, scope.Finalize(Outcome{Successful: true}, nil))

	for _, p := range []string{base, dir} {
		_, err := os.Stat(p)
		require.NoError(t, err, "%s must survive finalize in leave mode", p)
	}
}

func TestFinalize_SecondCallIsHarmless(t *testing.T) {
	scope, _ := newScopeWithLog(t, fs.NewReal())

	_, err := scope.TempDir("d")
	require.NoError(t, err)

	require.NoError(t, scope.Finalize(Outcome{Successful: true}, nil))
	require.NoError(t, scope.Finalize(Outcome{Successful: true}, nil))
}
