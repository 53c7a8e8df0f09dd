package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/config"
	"github.com/xmazu/envtable/internal/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show the current settings. Settings are read from
~/.config/envtable/config.yaml, or from $ENVTABLE_CONFIG_DIR when set.

  view            table or raw, the view the editor opens in
  mask_secrets    hide secret-looking values until revealed
  format_on_save  rewrite files in canonical form before writing
  log_level       info or debug
  watch_debounce  delay before reloading a file changed on disk
  audit           append writes to .envtable/audit.logl
  env_patterns    comma separated globs used by envtable ls`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set NAME VALUE",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(stdout(cmd), config.SettingsPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	s, err := config.LoadSettings()
	if err != nil {
		return err
	}
	out := stdout(cmd)
	for _, name := range config.Names() {
		v, err := s.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s = %s\n", tui.Key(fmt.Sprintf("%-15s", name)), v)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	s, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if err := s.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := s.Save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%s %s updated\n", tui.Success("✓"), tui.Label(args[0]))
	return nil
}
