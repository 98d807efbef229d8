// Package tempfs manages the temporary directories and files a test harness
// creates while running, and the filesystem those tests run against.
//
// A runner creates one [Registry] per process and one [Scope] per test-class
// run. The scope composes a (possibly wrapped) filesystem from the run seed,
// lazily allocates a collision-resistant base directory, and hands out child
// resources via [Scope.TempDir] and [Scope.TempFile]. Every allocated path is
// recorded in the registry. After the scope completes, the runner calls
// [Scope.Finalize] exactly once with the scope's outcome: a passing scope has
// its resources removed in reverse creation order, a failing scope keeps them
// on disk as evidence.
//
// Typical wiring:
//
//	opts, err := tempfs.LoadOptions(".")
//	if err != nil { ... }
//
//	reg := tempfs.NewRegistry(opts)
//
//	scope, err := tempfs.NewScope(reg, "github.com/acme/widget.TestStore", seed, opts)
//	if err != nil { ... }
//
//	dir, err := scope.TempDir("index")
//	...
//
//	err = scope.Finalize(tempfs.Outcome{Successful: passed}, nil)
package tempfs

// Outcome is the scope's result, supplied by the test runner at teardown.
type Outcome struct {
	// Successful reports whether every test in the scope passed.
	Successful bool
}

// Suppression downgrades a cleanup failure for a scope from an error to a
// logged warning. It carries the reference (bug id or URL) explaining why
// leftover files are a known condition.
type Suppression struct {
	// Reference is the diagnostic pointer included in the warning.
	Reference string
}
