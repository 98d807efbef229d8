package fs

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// ErrLeakedHandles is returned by [LeakTracker.Check] when files opened
// through the layer were never closed.
var ErrLeakedHandles = errors.New("leaked open file handles")

// LeakTracker wraps an [FS] and records every handle it opens together with
// the call stack of the opener.
//
// At the end of a run, [LeakTracker.Check] reports handles that were never
// closed. Closing a handle (even with an error) unregisters it, so a failed
// Close does not show up as a leak.
type LeakTracker struct {
	passthrough

	mu   sync.Mutex
	open map[*leakFile]leakOrigin
}

// leakOrigin remembers where a handle was opened.
type leakOrigin struct {
	path  string
	stack string
}

// NewLeakTracker returns a leak-tracking [FS] wrapping fsys.
func NewLeakTracker(fsys FS) *LeakTracker {
	return &LeakTracker{
		passthrough: passthrough{fs: fsys},
		open:        make(map[*leakFile]leakOrigin),
	}
}

func (l *LeakTracker) Open(path string) (File, error) {
	f, err := l.fs.Open(path)

	return l.track(path, f, err)
}

func (l *LeakTracker) Create(path string) (File, error) {
	f, err := l.fs.Create(path)

	return l.track(path, f, err)
}

func (l *LeakTracker) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	f, err := l.fs.OpenFile(path, flag, perm)

	return l.track(path, f, err)
}

// OpenCount returns the number of currently open handles.
func (l *LeakTracker) OpenCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.open)
}

// Check returns an error wrapping [ErrLeakedHandles] if any handle opened
// through this layer is still open. The error message names each leaked path
// and the call stack that opened it.
func (l *LeakTracker) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.open) == 0 {
		return nil
	}

	origins := make([]leakOrigin, 0, len(l.open))
	for _, o := range l.open {
		origins = append(origins, o)
	}

	sort.Slice(origins, func(i, j int) bool { return origins[i].path < origins[j].path })

	var b strings.Builder
	for _, o := range origins {
		fmt.Fprintf(&b, "\n  %s opened at:\n%s", o.path, o.stack)
	}

	return fmt.Errorf("%w: %d unclosed:%s", ErrLeakedHandles, len(origins), b.String())
}

func (l *LeakTracker) track(path string, f File, err error) (File, error) {
	if err != nil {
		return nil, err
	}

	lf := &leakFile{File: f, tracker: l}

	l.mu.Lock()
	l.open[lf] = leakOrigin{path: path, stack: callerStack()}
	l.mu.Unlock()

	return lf, nil
}

func (l *LeakTracker) untrack(lf *leakFile) {
	l.mu.Lock()
	delete(l.open, lf)
	l.mu.Unlock()
}

// callerStack formats the opener's stack, skipping the tracker's own frames.
func callerStack() string {
	pc := make([]uintptr, 16)
	n := runtime.Callers(4, pc)
	frames := runtime.CallersFrames(pc[:n])

	var b strings.Builder

	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "    %s\n        %s:%d\n", frame.Function, frame.File, frame.Line)

		if !more {
			break
		}
	}

	return b.String()
}

// leakFile unregisters itself from the tracker on Close.
type leakFile struct {
	File
	tracker *LeakTracker
}

func (f *leakFile) Close() error {
	f.tracker.untrack(f)

	return f.File.Close()
}

// Compile-time interface checks.
var (
	_ FS   = (*LeakTracker)(nil)
	_ File = (*leakFile)(nil)
)
