package tempfs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// tempNameRetryThreshold is how many candidate names are tried before the
// temp root is declared unusable.
const tempNameRetryThreshold = 9999

const (
	scopeDirPerms = 0o755
	tempFilePerms = 0o644
)

// Scope owns the temporary resources of one test-class run.
//
// A scope corresponds to a single test-class run and is not itself executed
// on multiple goroutines, so resource creation on a Scope is single-flight
// by the caller's contract. Different scopes run concurrently; they share
// the [Registry] but nothing else.
type Scope struct {
	identity string
	seed     int64

	reg    *Registry
	handle *Handle
	root   string
	log    *slog.Logger

	// Lazily allocated by BaseDir; reset by Finalize.
	baseDir string
}

// NewScope prepares the temp-resource environment for one scope: composes
// the run's filesystem from the seed and resolves the temp root.
//
// identity is the scope's name as reported by the runner (for example the
// fully qualified test-class name); it becomes part of the base directory
// name. seed is the runner's reproducible random seed.
//
// Root resolution failure is a configuration error wrapping [ErrTempRoot]
// and is fatal for the run.
func NewScope(reg *Registry, identity string, seed int64, opts Options) (*Scope, error) {
	handle := Compose(seed, opts)

	root, err := resolveRoot(handle.FS, opts.TempRoot)
	if err != nil {
		return nil, err
	}

	log := opts.logger()

	if opts.Verbose {
		log.Debug("temp root resolved", "scope", identity, "root", root)
	}

	return &Scope{
		identity: identity,
		seed:     seed,
		reg:      reg,
		handle:   handle,
		root:     root,
		log:      log,
	}, nil
}

// Handle returns the composed filesystem for this scope's run. Test code
// performs all of its filesystem access through it.
func (s *Scope) Handle() *Handle {
	return s.handle
}

// BaseDir returns the scope's base temp directory, allocating it on first
// call. At most one base directory exists per scope; it is registered for
// cleanup before being returned.
func (s *Scope) BaseDir() (string, error) {
	if s.baseDir != "" {
		return s.baseDir, nil
	}

	prefix := sanitizeIdentity(s.identity)

	dir, err := s.claim(s.root, func(attempt int) string {
		return fmt.Sprintf("%s %s-%03d", prefix, seedString(s.seed), attempt)
	}, s.claimDir)
	if err != nil {
		return "", err
	}

	s.baseDir = dir
	s.reg.Register(dir)

	return dir, nil
}

// TempDir creates a new directory under the scope's base directory,
// registers it for cleanup, and returns its absolute path.
func (s *Scope) TempDir(prefix string) (string, error) {
	return s.createResource(prefix, "", s.claimDir)
}

// TempFile creates a new empty file under the scope's base directory,
// registers it for cleanup, and returns its absolute path.
func (s *Scope) TempFile(prefix, suffix string) (string, error) {
	return s.createResource(prefix, suffix, s.claimFile)
}

func (s *Scope) createResource(prefix, suffix string, claimOne func(string) error) (string, error) {
	base, err := s.BaseDir()
	if err != nil {
		return "", err
	}

	path, err := s.claim(base, func(attempt int) string {
		return fmt.Sprintf("%s-%03d%s", prefix, attempt, suffix)
	}, claimOne)
	if err != nil {
		return "", err
	}

	s.reg.Register(path)

	return path, nil
}

// claim tries candidate names under dir until one is atomically claimed.
// An existing-name collision is the only retriable outcome; any other
// creation error aborts immediately. Attempts are numbered from 0; after
// tempNameRetryThreshold collisions the temp root is declared unusable.
func (s *Scope) claim(dir string, name func(attempt int) string, claimOne func(string) error) (string, error) {
	for attempt := 0; attempt < tempNameRetryThreshold; attempt++ {
		candidate := filepath.Join(dir, name(attempt))

		err := claimOne(candidate)
		if err == nil {
			return candidate, nil
		}

		if errors.Is(err, os.ErrExist) {
			continue
		}

		return "", fmt.Errorf("creating %s: %w", candidate, err)
	}

	return "", fmt.Errorf("%w, check your temp directory and consider manually cleaning it: %s",
		ErrNameExhausted, s.root)
}

// claimDir atomically claims a directory name.
func (s *Scope) claimDir(path string) error {
	return s.handle.FS.Mkdir(path, scopeDirPerms)
}

// claimFile atomically claims a file name.
func (s *Scope) claimFile(path string) error {
	f, err := s.handle.FS.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, tempFilePerms)
	if err != nil {
		return err
	}

	return f.Close()
}

// identityPrefixes are stripped from scope identities for readability.
// Scope names are usually fully qualified import paths plus a test name;
// the hosting prefix carries no information inside a temp dir listing.
var identityPrefixes = []string{
	"github.com/",
	"gitlab.com/",
	"golang.org/x/",
}

// sanitizeIdentity turns a scope identity into a safe directory-name prefix.
func sanitizeIdentity(identity string) string {
	for _, p := range identityPrefixes {
		if after, ok := strings.CutPrefix(identity, p); ok {
			identity = after

			break
		}
	}

	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, identity)
}

// scopeDirPattern matches base directory names produced by [Scope.BaseDir]:
// "<sanitized-scope> <seed-hex>-<NNN>".
var scopeDirPattern = regexp.MustCompile(`^.+ [0-9A-F]+-[0-9]{3}$`)

// IsScopeDirName reports whether name matches the base-directory naming
// scheme. Tools that clean temp roots use it to tell harness leftovers from
// unrelated entries.
func IsScopeDirName(name string) bool {
	return scopeDirPattern.MatchString(name)
}

// seedString formats a run seed the way it appears in directory names:
// uppercase hex, matching the runner's seed notation.
func seedString(seed int64) string {
	return strings.ToUpper(strconv.FormatUint(uint64(seed), 16))
}
