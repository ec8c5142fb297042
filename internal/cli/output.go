package cli

import (
	"os"

	"golang.org/x/term"
)

// plainOutput reports whether command output should be machine-oriented
// (tab-separated, no headers). Piped stdout, CI environments, and NO_COLOR
// all switch to plain output.
func plainOutput() bool {
	if os.Getenv("CI") != "" {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}
