package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/edit"
	"github.com/xmazu/envtable/internal/tui"
)

var setCmd = &cobra.Command{
	Use:   "set KEY [VALUE]",
	Short: "Set an environment variable",
	Long: `Set a variable in a .env file. An existing key is updated in place and keeps
its comments; a new key is added as the first row.

When VALUE is omitted it is read from a prompt, hidden unless --plain is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSet,
}

var (
	setFile  string
	setPlain bool
)

func init() {
	setCmd.Flags().StringVarP(&setFile, "file", "f", ".env", "Path to .env file")
	setCmd.Flags().BoolVar(&setPlain, "plain", false, "Echo the value while typing it")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if err := edit.ValidateKey(key); err != nil {
		return fmt.Errorf("%w (use envtable set KEY VALUE)", err)
	}

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		v, err := readSetValue(key)
		if err != nil {
			return err
		}
		value = v
	}

	path, err := fileArg([]string{setFile})
	if err != nil {
		return err
	}
	e, err := edit.Open(path, edit.Options{FormatOnSave: loadSettings().FormatOnSave, Log: cmdLogger(cmd)})
	if err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	defer e.Close()

	created, err := e.Set(key, value)
	if err != nil {
		return err
	}
	if err := e.Commit(); err != nil {
		return fmt.Errorf("failed to save .env file: %w", err)
	}
	recordAudit(cmd, path, audit.OpSet, key)

	verb := "updated"
	if created {
		verb = "added"
	}
	fmt.Fprintf(os.Stderr, "%s %s %s\n", tui.Success("✓"), tui.Label(key), verb)
	return nil
}

func readSetValue(key string) (string, error) {
	title := fmt.Sprintf("Value for %s", key)
	if setPlain {
		return tui.PlaintextInput(title)
	}
	return tui.HiddenInput(title)
}
