package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/envfile"
)

var listCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "Print the variables of a .env file as JSON",
	Long: `Print the variables of a .env file in file order, with the comments written
above each one. Secret-looking values are masked unless --reveal is given.

Examples:
  envtable list                   # ./.env
  envtable list .env.local --reveal`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var listReveal bool

func init() {
	listCmd.Flags().BoolVar(&listReveal, "reveal", false, "Show values unmasked")
	rootCmd.AddCommand(listCmd)
}

type listedVariable struct {
	Key      string   `json:"key"`
	Value    string   `json:"value"`
	Masked   bool     `json:"masked,omitempty"`
	Comments []string `json:"comments,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	path, err := fileArg(args)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer f.Close()

	env, err := envfile.ParseReader(f)
	if err != nil {
		return err
	}

	mask := !listReveal && loadSettings().MaskSecrets
	detector := envfile.NewMaskDetector()
	vars := make([]listedVariable, 0, env.Len())
	for _, v := range env.Variables {
		lv := listedVariable{Key: v.Key, Value: v.Value, Comments: v.PrecedingComments}
		if mask && detector.ShouldMask(v.Key, v.Value) {
			lv.Value = envfile.MaskValue(v.Value)
			lv.Masked = true
		}
		vars = append(vars, lv)
	}

	output := map[string]interface{}{
		"path":      path,
		"count":     len(vars),
		"variables": vars,
	}

	enc := json.NewEncoder(stdout(cmd))
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(output)
}
