package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/edit"
	"github.com/xmazu/envtable/internal/envfile"
	"github.com/xmazu/envtable/internal/tui"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Rewrite a .env file in canonical form",
	Long: `Rewrite a .env file the way the editor saves it: comments kept directly
above their variable, every value double-quoted, blank and unreadable lines
dropped.

With --check nothing is written; the command fails when the file is not
already canonical.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFmt,
}

var fmtCheck bool

var errNotFormatted = errors.New("file is not formatted")

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "Report instead of rewriting")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	path, err := fileArg(args)
	if err != nil {
		return err
	}
	out := stdout(cmd)

	if fmtCheck {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read .env file: %w", err)
		}
		if lines := envfile.InvalidLines(string(data)); len(lines) > 0 {
			fmt.Fprintf(out, "%s unreadable lines will be dropped: %v\n", tui.Warning("!"), lines)
		}
		_, changed, err := envfile.Normalize(string(data))
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintf(out, "%s %s\n", tui.Error("✗"), path)
			return errNotFormatted
		}
		fmt.Fprintf(out, "%s %s\n", tui.Success("✓"), path)
		return nil
	}

	e, err := edit.Open(path, edit.Options{FormatOnSave: true, Log: cmdLogger(cmd)})
	if err != nil {
		return err
	}
	defer e.Close()

	changed, err := e.Format()
	if err != nil {
		return fmt.Errorf("failed to format .env file: %w", err)
	}
	if !changed {
		fmt.Fprintf(out, "%s %s already formatted\n", tui.Muted("·"), path)
		return nil
	}
	if err := e.Commit(); err != nil {
		return fmt.Errorf("failed to save .env file: %w", err)
	}
	recordAudit(cmd, path, audit.OpFormat)
	fmt.Fprintf(out, "%s %s formatted\n", tui.Success("✓"), path)
	return nil
}
