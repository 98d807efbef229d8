package tempfs

import (
	"errors"
	"fmt"
)

// Finalize tears down the scope's temporary resources according to its
// outcome. The runner calls it exactly once per scope, after all resource
// creation for the scope has ceased.
//
// On a successful outcome, every drained path is removed in reverse creation
// order (children before parents). If any removal fails and the scope
// declared a suppression, a warning naming the suppression's reference is
// logged and Finalize returns nil, leaving the paths on disk; without a
// suppression the removal failure becomes the scope's failure. Only after a
// fully clean removal is a non-default filesystem handle closed — a
// suppressed failure leaves the handle (and its leak-tracking state) open
// for inspection.
//
// On a failed outcome nothing is deleted. If the scope allocated a base
// directory, its location is logged so the leftover files can be inspected.
// This path never fails the scope further.
func (s *Scope) Finalize(outcome Outcome, sup *Suppression) error {
	paths := s.reg.Drain()

	base := s.baseDir
	s.baseDir = ""

	if !outcome.Successful {
		if base != "" {
			s.log.Warn("leaving temporary files on disk", "scope", s.identity, "path", base)
		}

		return nil
	}

	var errs []error

	for _, p := range paths {
		if err := s.handle.FS.RemoveAll(p); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		if sup != nil {
			s.log.Warn("leftover undeleted temporary files",
				"scope", s.identity, "bugRef", sup.Reference, "err", err)

			return nil
		}

		return fmt.Errorf("cleanup failed for scope %s: %w", s.identity, err)
	}

	if !s.handle.Default() {
		if err := s.handle.Close(); err != nil {
			return fmt.Errorf("closing filesystem for scope %s: %w", s.identity, err)
		}
	}

	return nil
}
