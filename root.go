package tempfs

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/calvinalkan/tempfs/fs"
)

const rootDirPerms = 0o755

// resolveRoot locates and validates the writable base directory for all
// temporary resources: the override if set, else the platform temp
// directory. The directory is created if missing, checked for writability,
// and resolved to a canonical absolute path.
//
// Every failure wraps [ErrTempRoot]; the run cannot proceed without a root.
func resolveRoot(fsys fs.FS, override string) (string, error) {
	root := override
	if root == "" {
		root = os.TempDir()
	}

	if err := fsys.MkdirAll(root, rootDirPerms); err != nil {
		return "", fmt.Errorf("%w: cannot create %s: %w", ErrTempRoot, root, err)
	}

	info, err := fsys.Stat(root)
	if err != nil {
		return "", fmt.Errorf("%w: cannot stat %s: %w", ErrTempRoot, root, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrTempRoot, root)
	}

	if err := unix.Access(root, unix.W_OK); err != nil {
		return "", fmt.Errorf("%w: %s is not writable: %w", ErrTempRoot, root, err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve %s: %w", ErrTempRoot, root, err)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve %s: %w", ErrTempRoot, abs, err)
	}

	return canonical, nil
}
