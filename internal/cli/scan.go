package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dataload-go/dataload/internal/files/scanner"
	"github.com/dataload-go/dataload/internal/identity"
	"github.com/dataload-go/dataload/internal/logging"
)

const scanPreviewLimit = 80

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Preview the parts a data file splits into",
	Long: `Scan a line-oriented data file and print the parts a parametrized test
would receive: part index, byte offset, and the line content.

Trailing whitespace-only lines are dropped by default, matching the
library's stripping behavior. Use --keep-whitespace to keep them.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Bool("keep-whitespace", false, "Keep trailing whitespace-only lines")
	scanCmd.Flags().Int("limit", 0, "Print at most N parts (0 = all)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	keepWhitespace, _ := cmd.Flags().GetBool("keep-whitespace")
	limit, _ := cmd.Flags().GetInt("limit")

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	logger.Verbose("Scanning %s (strip=%t)", path, !keepWhitespace)
	entries, err := scanner.NewScanner().ScanLines(path, !keepWhitespace, scanner.Callbacks{})
	if err != nil {
		return err
	}

	plain := plainOutput()
	if !plain {
		fmt.Fprintf(os.Stderr, "dataset %s\n", identity.ForPath(path))
		fmt.Fprintf(os.Stderr, "%s: %d part(s)\n\n", path, len(entries))
	}

	base := filepath.Base(path)
	for i, e := range entries {
		if limit > 0 && i >= limit {
			logger.Verbose("Stopping after %d part(s)", limit)
			break
		}
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("%s:part%d", base, i+1)
		}
		text := previewLine(data, e.Offset)
		if plain {
			fmt.Printf("%s\t%d\t%s\n", id, e.Offset, text)
		} else {
			fmt.Printf("%-24s %8d  %s\n", id, e.Offset, text)
		}
	}
	return nil
}

// previewLine extracts the line starting at offset, without its terminator,
// truncated for display.
func previewLine(data []byte, offset int64) string {
	if offset < 0 || offset >= int64(len(data)) {
		return ""
	}
	line := string(data[offset:])
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimRight(line, "\r")
	if len(line) > scanPreviewLimit {
		line = line[:scanPreviewLimit] + "..."
	}
	return line
}
