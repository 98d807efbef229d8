package fs

import (
	iofs "io/fs"
	"os"
	"syscall"
)

// passthrough forwards every [FS] method to the wrapped filesystem.
//
// Layers embed it and override only the methods whose behavior they change,
// so adding a method to [FS] does not break every layer.
type passthrough struct {
	fs FS
}

func (p *passthrough) Open(path string) (File, error)   { return p.fs.Open(path) }
func (p *passthrough) Create(path string) (File, error) { return p.fs.Create(path) }
func (p *passthrough) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return p.fs.OpenFile(path, flag, perm)
}
func (p *passthrough) ReadFile(path string) ([]byte, error) { return p.fs.ReadFile(path) }
func (p *passthrough) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return p.fs.WriteFileAtomic(path, data, perm)
}
func (p *passthrough) ReadDir(path string) ([]os.DirEntry, error) { return p.fs.ReadDir(path) }
func (p *passthrough) Mkdir(path string, perm os.FileMode) error  { return p.fs.Mkdir(path, perm) }
func (p *passthrough) MkdirAll(path string, perm os.FileMode) error {
	return p.fs.MkdirAll(path, perm)
}
func (p *passthrough) Stat(path string) (os.FileInfo, error) { return p.fs.Stat(path) }
func (p *passthrough) Exists(path string) (bool, error)      { return p.fs.Exists(path) }
func (p *passthrough) Remove(path string) error              { return p.fs.Remove(path) }
func (p *passthrough) RemoveAll(path string) error           { return p.fs.RemoveAll(path) }
func (p *passthrough) Rename(oldpath, newpath string) error  { return p.fs.Rename(oldpath, newpath) }

var _ FS = (*passthrough)(nil)

// pathError creates an *os.PathError with the given operation, path, and errno.
// This matches what the real OS returns, so errors.Is() works correctly.
func pathError(op, path string, errno syscall.Errno) error {
	return &iofs.PathError{Op: op, Path: path, Err: errno}
}
