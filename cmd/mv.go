package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/edit"
	"github.com/xmazu/envtable/internal/tui"
)

var mvCmd = &cobra.Command{
	Use:   "mv KEY POSITION",
	Short: "Move a variable to another row",
	Long: `Move a variable, together with its comments, so that it ends up at
POSITION (0 is the first row).`,
	Args: cobra.ExactArgs(2),
	RunE: runMv,
}

var mvFile string

func init() {
	mvCmd.Flags().StringVarP(&mvFile, "file", "f", ".env", "Path to .env file")
	rootCmd.AddCommand(mvCmd)
}

func runMv(cmd *cobra.Command, args []string) error {
	key := args[0]
	position, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid position %q: %w", args[1], err)
	}

	path, err := fileArg([]string{mvFile})
	if err != nil {
		return err
	}
	e, err := edit.Open(path, edit.Options{FormatOnSave: loadSettings().FormatOnSave, Log: cmdLogger(cmd)})
	if err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	defer e.Close()

	if err := e.Move(key, position); err != nil {
		return err
	}
	if err := e.Commit(); err != nil {
		return fmt.Errorf("failed to save .env file: %w", err)
	}
	recordAudit(cmd, path, audit.OpMove, key)
	fmt.Fprintf(os.Stderr, "%s %s moved to %d\n", tui.Success("✓"), tui.Label(key), position)
	return nil
}
