package logging

// FuncLogger forwards all messages to a printf-style sink. It adapts
// testing.T.Logf (or any compatible function) to the dataload.Logger
// interface so loader diagnostics end up in the test log.
//
// Concurrency safety is the sink's responsibility; testing.T.Logf is safe.
type FuncLogger struct {
	sink    func(format string, args ...interface{})
	verbose bool
}

// NewFuncLogger creates a FuncLogger around sink. Verbose messages are
// forwarded only when verbose is true.
func NewFuncLogger(sink func(format string, args ...interface{}), verbose bool) *FuncLogger {
	return &FuncLogger{sink: sink, verbose: verbose}
}

// Verbose forwards diagnostic messages if verbose mode is enabled.
func (l *FuncLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.sink("[VERBOSE] "+format, args...)
}

// Info forwards informational messages.
func (l *FuncLogger) Info(format string, args ...interface{}) {
	l.sink(format, args...)
}

// Error forwards error messages.
func (l *FuncLogger) Error(format string, args ...interface{}) {
	l.sink("[ERROR] "+format, args...)
}
