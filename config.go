package tempfs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/tempfs/fs"
)

// Options holds all configuration for a run.
//
// The zero value is usable: system temp root, artifacts cleaned up, quiet
// logging, default wrapper set.
type Options struct {
	// TempRoot overrides the base directory for all temporary resources.
	// Empty means the platform temp directory.
	TempRoot string `json:"temp_root,omitempty"` //nolint:tagliatelle // snake_case for config file

	// LeaveArtifacts disables cleanup entirely: registration becomes a
	// no-op and nothing is ever deleted, whatever the outcome.
	LeaveArtifacts bool `json:"leave_artifacts,omitempty"` //nolint:tagliatelle // snake_case for config file

	// Verbose enables diagnostic logging of filesystem composition, the
	// chosen root, and every filesystem operation.
	Verbose bool `json:"verbose,omitempty"`

	// Logger receives diagnostics. Nil means a text handler on stderr,
	// at Debug level when Verbose is set, Info otherwise.
	Logger *slog.Logger `json:"-"`

	// Wrappers supplies the filesystem layer constructors the composer
	// stacks. Nil means the implementations in package fs.
	Wrappers *Wrappers `json:"-"`

	// FS bypasses composition entirely and runs the scope against the
	// given filesystem. Used by runners that bring their own filesystem
	// and by tests.
	FS fs.FS `json:"-"`
}

// OptionsFileName is the config file looked up by [LoadOptions].
const OptionsFileName = ".tempfs.json"

// Environment variable overrides, applied after the config file.
const (
	envTempRoot = "TEMPFS_ROOT"
	envLeaveTmp = "TEMPFS_LEAVE_TMP"
	envVerbose  = "TEMPFS_VERBOSE"
)

// LoadOptions loads configuration with the following precedence
// (highest wins):
//  1. Defaults (zero [Options])
//  2. Config file at <workDir>/.tempfs.json, if present (HuJSON: comments
//     and trailing commas allowed)
//  3. Environment variables TEMPFS_ROOT, TEMPFS_LEAVE_TMP, TEMPFS_VERBOSE
//
// Callers layer programmatic settings on top of the result themselves.
func LoadOptions(workDir string) (Options, error) {
	var opts Options

	path := filepath.Join(workDir, OptionsFileName)

	raw, err := os.ReadFile(path)

	switch {
	case os.IsNotExist(err):
		// Optional file.
	case err != nil:
		return Options{}, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	default:
		std, err := hujson.Standardize(raw)
		if err != nil {
			return Options{}, fmt.Errorf("%w: %s: %w", ErrConfigInvalid, path, err)
		}

		if err := json.Unmarshal(std, &opts); err != nil {
			return Options{}, fmt.Errorf("%w: %s: %w", ErrConfigInvalid, path, err)
		}
	}

	if err := applyEnv(&opts); err != nil {
		return Options{}, err
	}

	return opts, nil
}

// applyEnv overlays the TEMPFS_* environment variables onto opts.
func applyEnv(opts *Options) error {
	if root := os.Getenv(envTempRoot); root != "" {
		opts.TempRoot = root
	}

	for _, v := range []struct {
		name string
		dst  *bool
	}{
		{envLeaveTmp, &opts.LeaveArtifacts},
		{envVerbose, &opts.Verbose},
	} {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}

		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrConfigInvalid, v.name, raw, err)
		}

		*v.dst = b
	}

	return nil
}

// logger returns the configured logger, constructing the default if unset.
func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
