package fs

import (
	"log/slog"
	"os"
)

// Verbose wraps an [FS] and logs every operation and its outcome at Debug.
//
// It is behavior-neutral: results and errors pass through untouched, so
// enabling it can never change what a test observes.
type Verbose struct {
	passthrough

	log *slog.Logger
}

// NewVerbose returns a logging [FS] wrapping fsys. A nil logger uses
// [slog.Default].
func NewVerbose(fsys FS, log *slog.Logger) *Verbose {
	if log == nil {
		log = slog.Default()
	}

	return &Verbose{passthrough: passthrough{fs: fsys}, log: log}
}

func (v *Verbose) logOp(op, path string, err error) {
	if err != nil {
		v.log.Debug("fs op", "op", op, "path", path, "err", err)

		return
	}

	v.log.Debug("fs op", "op", op, "path", path)
}

func (v *Verbose) Open(path string) (File, error) {
	f, err := v.fs.Open(path)
	v.logOp("open", path, err)

	return f, err
}

func (v *Verbose) Create(path string) (File, error) {
	f, err := v.fs.Create(path)
	v.logOp("create", path, err)

	return f, err
}

func (v *Verbose) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	f, err := v.fs.OpenFile(path, flag, perm)
	v.logOp("openfile", path, err)

	return f, err
}

func (v *Verbose) ReadFile(path string) ([]byte, error) {
	data, err := v.fs.ReadFile(path)
	v.logOp("readfile", path, err)

	return data, err
}

func (v *Verbose) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	err := v.fs.WriteFileAtomic(path, data, perm)
	v.logOp("writefileatomic", path, err)

	return err
}

func (v *Verbose) ReadDir(path string) ([]os.DirEntry, error) {
	entries, err := v.fs.ReadDir(path)
	v.logOp("readdir", path, err)

	return entries, err
}

func (v *Verbose) Mkdir(path string, perm os.FileMode) error {
	err := v.fs.Mkdir(path, perm)
	v.logOp("mkdir", path, err)

	return err
}

func (v *Verbose) MkdirAll(path string, perm os.FileMode) error {
	err := v.fs.MkdirAll(path, perm)
	v.logOp("mkdirall", path, err)

	return err
}

func (v *Verbose) Stat(path string) (os.FileInfo, error) {
	info, err := v.fs.Stat(path)
	v.logOp("stat", path, err)

	return info, err
}

func (v *Verbose) Exists(path string) (bool, error) {
	exists, err := v.fs.Exists(path)
	v.logOp("exists", path, err)

	return exists, err
}

func (v *Verbose) Remove(path string) error {
	err := v.fs.Remove(path)
	v.logOp("remove", path, err)

	return err
}

func (v *Verbose) RemoveAll(path string) error {
	err := v.fs.RemoveAll(path)
	v.logOp("removeall", path, err)

	return err
}

func (v *Verbose) Rename(oldpath, newpath string) error {
	err := v.fs.Rename(oldpath, newpath)
	v.logOp("rename", oldpath, err)

	return err
}

// Compile-time interface check.
var _ FS = (*Verbose)(nil)
