package tempfs

import (
	"errors"
	"log/slog"
	"math/rand"
	"runtime"

	"github.com/calvinalkan/tempfs/fs"
)

// MaxOpenHandles is the ceiling the handle-limit layer enforces.
//
// Fixed and platform-independent so a test that opens too many files fails
// the same way on every machine, regardless of the host's rlimit.
const MaxOpenHandles = 2048

// Wrappers supplies the filesystem layer constructors the composer stacks.
// Each takes the underlying filesystem and returns the wrapped one.
//
// A nil field skips that layer. [DefaultWrappers] wires the implementations
// from package fs.
type Wrappers struct {
	DisableFsync    func(fs.FS) fs.FS
	LeakTracker     func(fs.FS) fs.FS
	HandleLimit     func(fs.FS, int) fs.FS
	CaseInsensitive func(fs.FS) fs.FS
	Verbose         func(fs.FS, *slog.Logger) fs.FS
}

// DefaultWrappers returns the wrapper set from package fs.
func DefaultWrappers() *Wrappers {
	return &Wrappers{
		DisableFsync:    func(f fs.FS) fs.FS { return fs.NewDisableFsync(f) },
		LeakTracker:     func(f fs.FS) fs.FS { return fs.NewLeakTracker(f) },
		HandleLimit:     func(f fs.FS, max int) fs.FS { return fs.NewHandleLimit(f, max) },
		CaseInsensitive: func(f fs.FS) fs.FS { return fs.NewCaseInsensitive(f) },
		Verbose:         func(f fs.FS, log *slog.Logger) fs.FS { return fs.NewVerbose(f, log) },
	}
}

// Handle is the effective filesystem for one run: the real filesystem plus
// the ordered behavior-override layers chosen for it. Immutable once
// composed; owned exclusively by the run.
type Handle struct {
	// FS is the composed filesystem all of the run's operations go through.
	FS fs.FS

	// Layers lists the applied overrides, innermost first. Empty for a
	// bare run.
	Layers []string

	def    bool
	checks []func() error
}

// Default reports whether the handle is the bare real filesystem with no
// layers applied.
func (h *Handle) Default() bool { return h.def }

// Close releases the handle. Layers that track state across the run
// (currently leak tracking) report their findings here, so a run that leaked
// handles fails at close.
func (h *Handle) Close() error {
	var errs []error

	for _, check := range h.checks {
		if err := check(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// hostFoldsCase reports whether the host platform's filesystem is already
// case-insensitive, in which case emulating it is redundant and the two
// implementations disagree about corner cases.
func hostFoldsCase() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

// Compose builds the effective filesystem for a run from its seed.
//
// The seed fully determines the choice, so a run can be reproduced from its
// seed alone:
//   - 9 times out of 10, the baseline override stack is applied: durability
//     flushes disabled, leaked-handle tracking, and an open-handle ceiling
//     of [MaxOpenHandles].
//   - Within that branch, 1 time out of 10, case-insensitive path emulation
//     is added on top, except on hosts whose filesystem already folds case.
//   - 1 time out of 10 overall, the bare real filesystem is returned.
//
// Verbose mode adds a logging layer under the overrides and logs the chosen
// stack; it never changes behavior. Composition cannot fail.
func Compose(seed int64, opts Options) *Handle {
	if opts.FS != nil {
		return &Handle{FS: opts.FS, Layers: []string{"external"}}
	}

	wrappers := opts.Wrappers
	if wrappers == nil {
		wrappers = DefaultWrappers()
	}

	log := opts.logger()

	h := &Handle{FS: fs.NewReal(), def: true}

	if opts.Verbose && wrappers.Verbose != nil {
		h.apply("verbose", wrappers.Verbose(h.FS, log))
	}

	rng := rand.New(rand.NewSource(seed))

	// Sometimes just use the bare filesystem.
	if rng.Intn(10) > 0 {
		if wrappers.DisableFsync != nil {
			h.apply("disable-fsync", wrappers.DisableFsync(h.FS))
		}

		if wrappers.LeakTracker != nil {
			h.apply("leak-tracker", wrappers.LeakTracker(h.FS))
		}

		if wrappers.HandleLimit != nil {
			h.apply("handle-limit", wrappers.HandleLimit(h.FS, MaxOpenHandles))
		}

		if rng.Intn(10) == 0 && !hostFoldsCase() && wrappers.CaseInsensitive != nil {
			h.apply("case-insensitive", wrappers.CaseInsensitive(h.FS))
		}
	}

	if opts.Verbose {
		log.Debug("composed filesystem", "seed", seedString(seed), "layers", h.Layers)
	}

	return h
}

// apply pushes one layer onto the handle.
func (h *Handle) apply(name string, layer fs.FS) {
	h.FS = layer
	h.Layers = append(h.Layers, name)
	h.def = false

	if c, ok := layer.(interface{ Check() error }); ok {
		h.checks = append(h.checks, c.Check)
	}
}
