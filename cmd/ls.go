package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/envfile"
	"github.com/xmazu/envtable/internal/tui"
	"github.com/xmazu/envtable/internal/workspace"
)

var lsCmd = &cobra.Command{
	Use:   "ls [directory]",
	Short: "List .env files in a directory tree",
	Long: `Discover and list .env and .env.* files under the given directory.
Without a directory the enclosing project root (git repository, go.work,
pnpm/turbo/lerna workspace) is searched. Each file shows its variable count.
The patterns come from the env_patterns setting.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	var root workspace.Root
	if len(args) == 1 {
		root = workspace.Root{Dir: args[0]}
	} else {
		r, err := workspace.FindRoot(".")
		if err != nil {
			return fmt.Errorf("detect workspace: %w", err)
		}
		root = r
	}

	dir, err := filepath.Abs(root.Dir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	files, err := workspace.ListEnvFiles(dir, loadSettings().EnvPatterns)
	if err != nil {
		return fmt.Errorf("list .env files: %w", err)
	}
	var paths []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		paths = append(paths, rel)
	}
	sort.Strings(paths)

	out := stdout(cmd)
	if len(paths) == 0 {
		fmt.Fprintln(out, tui.Muted("No .env files found."))
		return nil
	}

	if root.IsWorkspace() {
		fmt.Fprintf(out, "%s%s (%s)\n\n", tui.Label("Workspace: "), dir, root.Describe())
	}

	tree := workspace.BuildEnvTree(paths)
	workspace.PrintEnvTree(out, tree, func(rel string) string {
		return variableCount(filepath.Join(dir, rel))
	})
	return nil
}

func variableCount(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return tui.Error("(unreadable)")
	}
	defer f.Close()
	env, err := envfile.ParseReader(f)
	if err != nil {
		return tui.Error("(unreadable)")
	}
	if env.Len() == 1 {
		return tui.Muted("(1 variable)")
	}
	return tui.Muted(fmt.Sprintf("(%d variables)", env.Len()))
}
