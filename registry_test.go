package tempfs

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DrainReversesRegistrationOrder(t *testing.T) {
	reg := NewRegistry(Options{Logger: discardLogger()})

	reg.Register("/t/base")
	reg.Register("/t/base/d-000")
	reg.Register("/t/base/f-000.txt")

	want := []string{"/t/base/f-000.txt", "/t/base/d-000", "/t/base"}

	if diff := cmp.Diff(want, reg.Drain()); diff != "" {
		t.Fatalf("drain order mismatch:\n%s", diff)
	}
}

func TestRegistry_SecondDrainIsEmpty(t *testing.T) {
	reg := NewRegistry(Options{Logger: discardLogger()})

	reg.Register("/t/a")
	reg.Register("/t/b")

	require.Len(t, reg.Drain(), 2)
	require.Empty(t, reg.Drain(), "second drain must return nothing")
}

// TestRegistry_ConcurrentRegisterNeverLosesPaths races registrations
// against drains: every registered path must come out of exactly one drain.
func TestRegistry_ConcurrentRegisterNeverLosesPaths(t *testing.T) {
	reg := NewRegistry(Options{Logger: discardLogger()})

	const (
		writers        = 8
		pathsPerWriter = 250
	)

	var wg sync.WaitGroup

	for w := 0; w < writers; w++ {
		w := w

		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < pathsPerWriter; i++ {
				reg.Register(fmt.Sprintf("/t/w%d/p%d", w, i))
			}
		}()
	}

	seen := make(map[string]int)

	done := make(chan struct{})

	go func() {
		wg.Wait()
		close(done)
	}()

	drainInto := func() {
		for _, p := range reg.Drain() {
			seen[p]++
		}
	}

	for {
		select {
		case <-done:
			drainInto() // final drain picks up stragglers

			require.Len(t, seen, writers*pathsPerWriter, "paths lost or never drained")

			for p, n := range seen {
				require.Equal(t, 1, n, "path %s drained %d times", p, n)
			}

			return
		default:
			drainInto()
		}
	}
}

func TestRegistry_LeaveModeSkipsRegistrationAndNotes(t *testing.T) {
	var buf bytes.Buffer

	reg := NewRegistry(Options{
		LeaveArtifacts: true,
		Logger:         slog.New(slog.NewTextHandler(&buf, nil)),
	})

	reg.Register("/t/kept")

	require.Empty(t, reg.Drain(), "leave mode must not record paths")
	require.Contains(t, buf.String(), "/t/kept", "the kept path must be noted")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
