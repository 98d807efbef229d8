package fs

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// CaseInsensitive wraps an [FS] and emulates case-insensitive,
// case-preserving path semantics (the Windows and macOS default) on top of a
// case-sensitive filesystem.
//
// Lookups resolve each path component against the on-disk spelling that
// matches it case-insensitively, so "FOO/bar.txt" finds "foo/Bar.txt".
// Creating a name whose case-folded form already exists collides: exclusive
// claims fail with EEXIST, plain creates open the existing entry.
//
// The emulation is resolved against the wrapped filesystem on every call and
// keeps no state of its own, so it stays correct when other code mutates the
// same tree.
type CaseInsensitive struct {
	passthrough
}

// NewCaseInsensitive returns an [FS] with case-insensitive path semantics.
func NewCaseInsensitive(fsys FS) *CaseInsensitive {
	return &CaseInsensitive{passthrough{fs: fsys}}
}

// resolve maps path to the on-disk spelling that matches it
// case-insensitively. Components with no match keep their given spelling,
// so resolve of a nonexistent path returns a path whose parent is resolved.
func (c *CaseInsensitive) resolve(path string) string {
	clean := filepath.Clean(path)

	sep := string(filepath.Separator)
	parts := strings.Split(clean, sep)

	resolved := ""
	if filepath.IsAbs(clean) {
		resolved = sep
		parts = parts[1:]
	}

	for i, part := range parts {
		if part == "" {
			continue
		}

		candidate := filepath.Join(resolved, part)

		exists, err := c.fs.Exists(candidate)
		if err == nil && exists {
			resolved = candidate

			continue
		}

		entries, err := c.fs.ReadDir(resolved)
		if err != nil {
			// Parent unreadable or gone: keep the remaining spelling as given.
			return filepath.Join(append([]string{resolved}, parts[i:]...)...)
		}

		match := part

		for _, e := range entries {
			if strings.EqualFold(e.Name(), part) {
				match = e.Name()

				break
			}
		}

		resolved = filepath.Join(resolved, match)
	}

	return resolved
}

// --- File Operations ---

func (c *CaseInsensitive) Open(path string) (File, error) {
	return c.fs.Open(c.resolve(path))
}

func (c *CaseInsensitive) Create(path string) (File, error) {
	return c.fs.Create(c.resolve(path))
}

func (c *CaseInsensitive) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	resolved := c.resolve(path)

	if flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0 {
		// Exclusive claim: a case-variant counts as the name being taken.
		if exists, err := c.fs.Exists(resolved); err == nil && exists {
			return nil, pathError("open", path, syscall.EEXIST)
		}
	}

	return c.fs.OpenFile(resolved, flag, perm)
}

// --- Convenience Methods ---

func (c *CaseInsensitive) ReadFile(path string) ([]byte, error) {
	return c.fs.ReadFile(c.resolve(path))
}

func (c *CaseInsensitive) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return c.fs.WriteFileAtomic(c.resolve(path), data, perm)
}

// --- Directory Operations ---

func (c *CaseInsensitive) ReadDir(path string) ([]os.DirEntry, error) {
	return c.fs.ReadDir(c.resolve(path))
}

func (c *CaseInsensitive) Mkdir(path string, perm os.FileMode) error {
	resolved := c.resolve(path)

	if exists, err := c.fs.Exists(resolved); err == nil && exists {
		return pathError("mkdir", path, syscall.EEXIST)
	}

	return c.fs.Mkdir(resolved, perm)
}

func (c *CaseInsensitive) MkdirAll(path string, perm os.FileMode) error {
	return c.fs.MkdirAll(c.resolve(path), perm)
}

// --- Metadata ---

func (c *CaseInsensitive) Stat(path string) (os.FileInfo, error) {
	return c.fs.Stat(c.resolve(path))
}

func (c *CaseInsensitive) Exists(path string) (bool, error) {
	return c.fs.Exists(c.resolve(path))
}

// --- Mutations ---

func (c *CaseInsensitive) Remove(path string) error {
	return c.fs.Remove(c.resolve(path))
}

func (c *CaseInsensitive) RemoveAll(path string) error {
	return c.fs.RemoveAll(c.resolve(path))
}

func (c *CaseInsensitive) Rename(oldpath, newpath string) error {
	return c.fs.Rename(c.resolve(oldpath), c.resolve(newpath))
}

// Compile-time interface check.
var _ FS = (*CaseInsensitive)(nil)
