package dataload

// Logger provides a pluggable logging interface for dataload operations.
// Implementations must be safe for concurrent use by multiple goroutines:
// cache-cleanup logging may run from a finalizer goroutine.
type Logger interface {
	// Verbose logs detailed diagnostic information.
	// Only logged when verbose mode is enabled.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations.
	Info(format string, args ...interface{})

	// Error logs error messages. Cache-cleanup failures are reported here
	// and never propagated.
	Error(format string, args ...interface{})
}
