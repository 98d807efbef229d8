package fs

import (
	"os"
)

// spyFS wraps another FS and counts Sync calls reaching files opened
// through it. Lets the DisableFsync tests observe whether a flush made it
// past the layer under test.
type spyFS struct {
	passthrough

	syncs int
}

func newSpyFS(fsys FS) *spyFS {
	return &spyFS{passthrough: passthrough{fs: fsys}}
}

func (s *spyFS) Open(path string) (File, error) {
	return s.spy(s.fs.Open(path))
}

func (s *spyFS) Create(path string) (File, error) {
	return s.spy(s.fs.Create(path))
}

func (s *spyFS) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return s.spy(s.fs.OpenFile(path, flag, perm))
}

func (s *spyFS) spy(f File, err error) (File, error) {
	if err != nil {
		return nil, err
	}

	return &spyFile{File: f, fs: s}, nil
}

type spyFile struct {
	File
	fs *spyFS
}

func (f *spyFile) Sync() error {
	f.fs.syncs++

	return f.File.Sync()
}
