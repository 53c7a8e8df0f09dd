package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/tui"
)

var auditCmd = &cobra.Command{
	Use:   "audit [file]",
	Short: "View and verify the audit log",
	Long: `Show the audit log kept next to a .env file, or verify its chain.

Every write made by envtable (saves, normalization, set, unset, mv, fmt and
MCP tool calls) appends one entry to .envtable/audit.logl. Each entry links
to the hash of the previous one, forming a tamper-evident chain.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

var (
	auditLastN  int
	auditVerify bool
)

func init() {
	auditCmd.Flags().IntVarP(&auditLastN, "last", "n", 10, "Number of entries to show")
	auditCmd.Flags().BoolVar(&auditVerify, "verify", false, "Verify chain integrity instead of listing")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	path, err := fileArg(args)
	if err != nil {
		return err
	}
	log := audit.ForFile(path)
	if auditVerify {
		return runAuditVerify(cmd, log)
	}
	return runAuditShow(cmd, log)
}

func runAuditShow(cmd *cobra.Command, log *audit.Log) error {
	out := stdout(cmd)
	entries, err := log.Show(auditLastN)
	if err != nil {
		if errors.Is(err, audit.ErrNoAuditLog) {
			fmt.Fprintln(out, "No audit log found. Entries are written when envtable saves a file.")
			return nil
		}
		return fmt.Errorf("read audit log: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries in audit log.")
		return nil
	}

	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(b))
	return nil
}

func runAuditVerify(cmd *cobra.Command, log *audit.Log) error {
	out := stdout(cmd)
	result, err := log.Verify()
	if err != nil {
		if errors.Is(err, audit.ErrNoAuditLog) {
			fmt.Fprintln(out, "No audit log found.")
			return nil
		}
		return fmt.Errorf("verify audit log: %w", err)
	}

	fmt.Fprintf(out, "Audit log verified: %d entries\n", result.TotalEntries)
	if result.OK() {
		fmt.Fprintln(out, "Chain integrity:", tui.Success("OK"))
		return nil
	}

	fmt.Fprintf(out, "Chain breaks detected at lines: %v\n", result.Breaks)
	fmt.Fprintln(out, tui.Warning("Warning: Log may have been tampered with."))
	return nil
}
