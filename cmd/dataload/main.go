package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/dataload-go/dataload/internal/cli"
	"github.com/dataload-go/dataload/pkg/dataload"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(dataload.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(dataload.ExitCodeForError(err))
	}
}
