package dataload

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the error taxonomy. Callers distinguish error classes
// with errors.Is; the concrete types below add context.
var (
	// ErrUsage indicates invalid loader configuration: bad fixture names,
	// bad path shape, unsupported read options, malformed callbacks, or
	// binary data fed to the default splitter.
	ErrUsage = errors.New("invalid data loader usage")

	// ErrNotFound indicates the requested data file or directory could not
	// be located under any data loader directory.
	ErrNotFound = errors.New("data path not found")

	// ErrInvalidConfig indicates an invalid project configuration file.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UsageError is a configuration-time error, fatal to the affected test's
// collection. It carries enough context to diagnose without re-running.
type UsageError struct {
	Loader string // loader kind, e.g. "parametrize"
	Path   string // data path, if known
	Reason string
}

func (e *UsageError) Error() string {
	var b strings.Builder
	b.WriteString("invalid usage")
	if e.Loader != "" {
		fmt.Fprintf(&b, " of %s loader", e.Loader)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Path != "" {
		fmt.Fprintf(&b, " (path: %s)", e.Path)
	}
	return b.String()
}

func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// Usagef builds a UsageError with a formatted reason.
func Usagef(loader, path, format string, args ...any) *UsageError {
	return &UsageError{Loader: loader, Path: path, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a failed path resolution, enumerating every
// candidate data loader directory that was checked.
type NotFoundError struct {
	RelPath      string
	WantFile     bool
	DirName      string
	SearchedDirs []string
}

func (e *NotFoundError) Error() string {
	if len(e.SearchedDirs) == 0 {
		return fmt.Sprintf("unable to find any data loader directory %q", e.DirName)
	}
	kind := "directory"
	if e.WantFile {
		kind = "file"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "unable to locate the specified %s %q under any of the following data loader directories:", kind, e.RelPath)
	for _, d := range e.SearchedDirs {
		fmt.Fprintf(&b, "\n  - %s", d)
	}
	return b.String()
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Exit codes for the dataload CLI.
const (
	ExitSuccess      = 0 // Success
	ExitGeneralError = 1 // Unclassified runtime error
	ExitUsageError   = 2 // Invalid loader usage or CLI arguments
	ExitPanic        = 3 // Panic or unexpected system error
	ExitConfigError  = 10 // Invalid project configuration
	ExitNotFound     = 14 // Data path could not be resolved
)

// ExitCodeForError returns the exit code for an error: ExitSuccess for nil,
// semantic codes for classified errors, ExitGeneralError otherwise.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	}

	// Cobra reports flag and argument problems as plain errors.
	errStr := err.Error()
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "accepts ") {
		return ExitUsageError
	}

	return ExitGeneralError
}
