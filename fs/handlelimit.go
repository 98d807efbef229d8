package fs

import (
	"os"
	"sync/atomic"
	"syscall"
)

// HandleLimit wraps an [FS] and enforces a ceiling on concurrently open
// handles.
//
// Opening a file when the ceiling is reached fails with an *os.PathError
// carrying EMFILE, exactly like a process that exhausted its descriptor
// table. The ceiling is a fixed input rather than the host's rlimit so tests
// behave the same on every platform.
type HandleLimit struct {
	passthrough

	max  int64
	live atomic.Int64
}

// NewHandleLimit returns an [FS] that allows at most max concurrently open
// handles through it.
func NewHandleLimit(fsys FS, max int) *HandleLimit {
	return &HandleLimit{passthrough: passthrough{fs: fsys}, max: int64(max)}
}

func (h *HandleLimit) Open(path string) (File, error) {
	return h.acquire("open", path, func() (File, error) { return h.fs.Open(path) })
}

func (h *HandleLimit) Create(path string) (File, error) {
	return h.acquire("create", path, func() (File, error) { return h.fs.Create(path) })
}

func (h *HandleLimit) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return h.acquire("open", path, func() (File, error) { return h.fs.OpenFile(path, flag, perm) })
}

// Live returns the number of handles currently open through this layer.
func (h *HandleLimit) Live() int {
	return int(h.live.Load())
}

func (h *HandleLimit) acquire(op, path string, open func() (File, error)) (File, error) {
	if h.live.Add(1) > h.max {
		h.live.Add(-1)

		return nil, pathError(op, path, syscall.EMFILE)
	}

	f, err := open()
	if err != nil {
		h.live.Add(-1)

		return nil, err
	}

	return &limitedFile{File: f, limit: h}, nil
}

// limitedFile returns its slot on Close. Double Close releases only once.
type limitedFile struct {
	File
	limit    *HandleLimit
	released atomic.Bool
}

func (f *limitedFile) Close() error {
	if f.released.CompareAndSwap(false, true) {
		f.limit.live.Add(-1)
	}

	return f.File.Close()
}

// Compile-time interface checks.
var (
	_ FS   = (*HandleLimit)(nil)
	_ File = (*limitedFile)(nil)
)
