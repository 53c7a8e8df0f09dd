package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/edit"
	"github.com/xmazu/envtable/internal/tui"
)

var unsetCmd = &cobra.Command{
	Use:   "unset KEY",
	Short: "Remove an environment variable",
	Long:  `Remove a variable and the comments written above it from a .env file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUnset,
}

var (
	unsetFile string
	unsetYes  bool
)

func init() {
	unsetCmd.Flags().StringVarP(&unsetFile, "file", "f", ".env", "Path to .env file")
	unsetCmd.Flags().BoolVarP(&unsetYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(unsetCmd)
}

func runUnset(cmd *cobra.Command, args []string) error {
	key := args[0]
	path, err := fileArg([]string{unsetFile})
	if err != nil {
		return err
	}
	e, err := edit.Open(path, edit.Options{FormatOnSave: loadSettings().FormatOnSave, Log: cmdLogger(cmd)})
	if err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	defer e.Close()

	if e.Env().Index(key) < 0 {
		return fmt.Errorf("%w: %s", edit.ErrKeyNotFound, key)
	}
	if !unsetYes {
		ok, err := tui.Confirm(fmt.Sprintf("Remove %s from %s?", key, unsetFile))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, tui.Muted("Aborted."))
			return nil
		}
	}

	if err := e.Unset(key); err != nil {
		return err
	}
	if err := e.Commit(); err != nil {
		return fmt.Errorf("failed to save .env file: %w", err)
	}
	recordAudit(cmd, path, audit.OpUnset, key)
	fmt.Fprintf(os.Stderr, "%s %s removed\n", tui.Success("✓"), tui.Label(key))
	return nil
}
