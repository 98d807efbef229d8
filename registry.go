package tempfs

import (
	"log/slog"
	"sync"
)

// Registry is the process-wide ordered record of every allocated temporary
// resource. Insertion order is creation order; draining reverses it so
// children come out before the parents they were created under.
//
// One Registry is created per process (by the runner) and shared by all
// concurrently executing scopes. Append and drain are serialized by one
// mutex, so no path registered before a drain's snapshot is lost and none
// registered after is included.
type Registry struct {
	mu    sync.Mutex
	queue []string

	leave bool
	log   *slog.Logger
}

// NewRegistry creates the cleanup registry for a run.
//
// With [Options.LeaveArtifacts] set, registration becomes a no-op and
// nothing recorded here is ever deleted.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		leave: opts.LeaveArtifacts,
		log:   opts.logger(),
	}
}

// Register records a path for removal at scope teardown.
//
// In leave-artifacts mode the path is not recorded; a note of the
// intentionally kept path is logged instead.
func (r *Registry) Register(path string) {
	if r.leave {
		r.log.Info("will leave temporary file", "path", path)

		return
	}

	r.mu.Lock()
	r.queue = append(r.queue, path)
	r.mu.Unlock()
}

// Drain atomically snapshots the queue in reverse creation order, clears it,
// and returns the snapshot.
func (r *Registry) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := make([]string, len(r.queue))
	for i, p := range r.queue {
		drained[len(r.queue)-1-i] = p
	}

	r.queue = nil

	return drained
}
