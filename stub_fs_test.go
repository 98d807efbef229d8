package tempfs

import (
	"os"

	"github.com/calvinalkan/tempfs/fs"
)

// stubFS embeds a real filesystem and lets individual tests intercept the
// operations under test. A nil hook falls through to the embedded FS.
type stubFS struct {
	fs.FS

	mkdir     func(path string, perm os.FileMode) error
	openFile  func(path string, flag int, perm os.FileMode) (fs.File, error)
	removeAll func(path string) error
}

func newStubFS() *stubFS {
	return &stubFS{FS: fs.NewReal()}
}

func (s *stubFS) Mkdir(path string, perm os.FileMode) error {
	if s.mkdir != nil {
		return s.mkdir(path, perm)
	}

	return s.FS.Mkdir(path, perm)
}

func (s *stubFS) OpenFile(path string, flag int, perm os.FileMode) (fs.File, error) {
	if s.openFile != nil {
		return s.openFile(path, flag, perm)
	}

	return s.FS.OpenFile(path, flag, perm)
}

func (s *stubFS) RemoveAll(path string) error {
	if s.removeAll != nil {
		return s.removeAll(path)
	}

	return s.FS.RemoveAll(path)
}
