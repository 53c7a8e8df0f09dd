package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server (stdio) for AI/IDE integration",
	Long: `Run the Model Context Protocol server on stdio. Exposes list_variables
(secret-looking values masked), set_variable, delete_variable, move_variable
and format_file, plus audit_recent and audit_verify. Writes keep comments
attached to their variables and are recorded in the audit log.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	s := loadSettings()
	return mcpserver.Run(cmdContext(cmd), mcpserver.Options{
		Version:      rootCmd.Version,
		FormatOnSave: s.FormatOnSave,
		Audit:        s.Audit,
		Log:          cmdLogger(cmd),
	})
}
