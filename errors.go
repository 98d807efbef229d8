package tempfs

import "errors"

var (
	// ErrTempRoot means the temp root directory cannot be created, is not a
	// directory, or is not writable. Fatal: nothing can run without it.
	ErrTempRoot = errors.New("temp root unusable")

	// ErrNameExhausted means every candidate name up to the retry ceiling
	// was taken. The temp root is stale or broken and needs manual cleaning.
	ErrNameExhausted = errors.New("failed to get a temporary name too many times")

	// ErrConfigFileRead means the options file exists but cannot be read.
	ErrConfigFileRead = errors.New("cannot read config file")

	// ErrConfigInvalid means the options file or an environment override
	// does not parse.
	ErrConfigInvalid = errors.New("invalid config")
)
