package fs

import "os"

// DisableFsync wraps an [FS] so that [File.Sync] never reaches the disk.
//
// Tests that exercise durability-flushing code paths run much faster when the
// flush itself is a no-op, and the harness applies this layer in most runs.
// Data written through this layer is NOT crash-safe.
type DisableFsync struct {
	passthrough
}

// NewDisableFsync returns an [FS] whose files ignore Sync.
func NewDisableFsync(fsys FS) *DisableFsync {
	return &DisableFsync{passthrough{fs: fsys}}
}

func (d *DisableFsync) Open(path string) (File, error) {
	return noSyncWrap(d.fs.Open(path))
}

func (d *DisableFsync) Create(path string) (File, error) {
	return noSyncWrap(d.fs.Create(path))
}

func (d *DisableFsync) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return noSyncWrap(d.fs.OpenFile(path, flag, perm))
}

func noSyncWrap(f File, err error) (File, error) {
	if err != nil {
		return nil, err
	}

	return &noSyncFile{File: f}, nil
}

// noSyncFile forwards everything except Sync.
type noSyncFile struct {
	File
}

func (f *noSyncFile) Sync() error { return nil }

// Compile-time interface checks.
var (
	_ FS   = (*DisableFsync)(nil)
	_ File = (*noSyncFile)(nil)
)
