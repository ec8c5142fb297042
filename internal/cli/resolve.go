package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dataload-go/dataload/internal/config"
	"github.com/dataload-go/dataload/internal/files/locate"
	"github.com/dataload-go/dataload/internal/logging"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <relative-path>",
	Short: "Resolve a data path the way a test would",
	Long: `Resolve a relative data path against the project's data loader
directories. The search starts at --from (default: the current directory),
walks upward checking <dir>/<loader-dir>/<relative-path> at each level, and
stops at the project root.

Project configuration (dataload.yaml, .env, DATALOAD_* variables) is applied
exactly as the library applies it, so the printed path is the one your tests
will load.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Bool("dir", false, "Resolve a directory instead of a file")
	resolveCmd.Flags().String("from", "", "Directory to start the upward search from (default: current directory)")
	resolveCmd.Flags().String("dir-name", "", "Override the data loader directory name")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	relPath := args[0]
	wantDir, _ := cmd.Flags().GetBool("dir")
	from, _ := cmd.Flags().GetString("from")
	dirNameFlag, _ := cmd.Flags().GetString("dir-name")

	if from == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		from = cwd
	}
	from, err := filepath.Abs(from)
	if err != nil {
		return err
	}

	rootDir, err := locate.FindRoot(nil, from)
	if err != nil {
		logger.Verbose("No go.mod found upward of %s, using it as the root", from)
		rootDir = from
	}
	cfg, err := config.Load(rootDir)
	if err != nil {
		return err
	}
	searchRoot := rootDir
	if cfg.RootDir != "" {
		if filepath.IsAbs(cfg.RootDir) {
			searchRoot = filepath.Clean(cfg.RootDir)
		} else {
			searchRoot = filepath.Join(rootDir, cfg.RootDir)
		}
	}
	dirName := cfg.EffectiveDirName()
	if dirNameFlag != "" {
		dirName = dirNameFlag
	}

	logger.Verbose("Searching for %q under %q directories, from %s up to %s", relPath, dirName, from, searchRoot)
	resolved, err := locate.NewResolver(nil).Resolve(locate.Query{
		DirName:    dirName,
		Root:       searchRoot,
		RelPath:    relPath,
		SearchFrom: from,
		WantFile:   !wantDir,
	})
	if err != nil {
		return err
	}
	fmt.Println(resolved)
	return nil
}
