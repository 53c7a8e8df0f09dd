package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/config"
	"github.com/xmazu/envtable/internal/document"
	"github.com/xmazu/envtable/internal/host"
	"github.com/xmazu/envtable/internal/logger"
	"github.com/xmazu/envtable/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:           "envtable [file]",
	Short:         "Structured editor for .env files",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `envtable opens a .env file as an editable table. Rows keep the comments
written above them, so renaming, reordering and deleting variables never loses
documentation. Every edit is written back in canonical form: one KEY="value"
line per variable, comments kept above their variable.

EXAMPLES:

  envtable                 # edit ./.env
  envtable .env.local      # edit another file
  envtable --raw           # start in the plain text view
  envtable set PORT 8080
  envtable fmt --check

Settings live in ~/.config/envtable/config.yaml (see envtable config).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

var (
	debugLog   bool
	editRaw    bool
	editReveal bool
)

func init() {
	// Assigned here rather than in the literal: setupLogger refers to
	// rootCmd, which would otherwise be an initialization cycle.
	rootCmd.PersistentPreRunE = setupLogger
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Log at debug level")
	rootCmd.Flags().BoolVar(&editRaw, "raw", false, "Start in the plain text view")
	rootCmd.Flags().BoolVar(&editReveal, "reveal", false, "Show secret-looking values unmasked")
	rootCmd.SetVersionTemplate("envtable version {{.Version}}\n")
}

// SetVersion sets the version string shown by --version (e.g. from ldflags).
func SetVersion(v string) { rootCmd.Version = v }

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger attaches a logger to the command context. The editor owns
// the terminal, so it logs to a file; other commands log to stderr.
func setupLogger(cmd *cobra.Command, args []string) error {
	s := loadSettings()
	level := logger.ParseLevel(s.LogLevel)
	if debugLog {
		level = logger.LevelDebug
	}

	var log logr.Logger
	if cmd == rootCmd {
		l, closeLog, err := logger.ToFile(config.LogPath(), level)
		if err != nil {
			fmt.Fprintln(os.Stderr, tui.Warning("logging disabled: "+err.Error()))
			l = logr.Discard()
		} else {
			cobra.OnFinalize(func() { _ = closeLog() })
		}
		log = l
	} else {
		log = logger.Get(level)
	}
	log = logger.WithValues(log, logger.RootCommandKey, rootCmd.Name(), logger.SubCommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithLogger(ctx, log))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	path, err := fileArg(args)
	if err != nil {
		return err
	}
	s := loadSettings()
	log := cmdLogger(cmd).WithValues(logger.FileKey, filepath.Base(path))

	doc, err := document.Open(path)
	if err != nil {
		return err
	}

	view := host.PresentationStructured
	if editRaw || s.View == config.ViewRaw {
		view = host.PresentationRaw
	}
	var auditLog *audit.Log
	if s.Audit {
		auditLog = audit.ForFile(path)
	}

	log.Info("opening editor", "view", view.String())
	return tui.Run(cmdContext(cmd), doc, tui.RunConfig{
		Options: tui.Options{
			MaskSecrets: s.MaskSecrets && !editReveal,
			View:        view,
		},
		FormatOnSave:  s.FormatOnSave,
		WatchDebounce: s.WatchDebounce,
		Log:           log,
		Audit:         auditLog,
		SessionID:     audit.NewSessionID(),
	})
}

// fileArg resolves the optional file argument, defaulting to ./.env.
func fileArg(args []string) (string, error) {
	name := ".env"
	if len(args) > 0 && args[0] != "" {
		name = args[0]
	}
	path, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory", name)
	}
	return path, nil
}

// loadSettings falls back to defaults when the settings file is unreadable.
func loadSettings() *config.Settings {
	s, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.Warning(err.Error()))
		d := config.DefaultSettings()
		return &d
	}
	return s
}

func cmdContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func cmdLogger(cmd *cobra.Command) logr.Logger {
	return logger.FromContext(cmdContext(cmd))
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd != nil {
		return cmd.OutOrStdout()
	}
	return os.Stdout
}

func recordAudit(cmd *cobra.Command, path string, op audit.Op, keys ...string) {
	if !loadSettings().Audit {
		return
	}
	err := audit.ForFile(path).Append(op,
		audit.WithFile(filepath.Base(path)),
		audit.WithScope(keys),
		audit.WithSessionID(audit.NewSessionID()),
	)
	if err != nil {
		cmdLogger(cmd).Error(err, "audit append failed", "op", string(op))
	}
}
