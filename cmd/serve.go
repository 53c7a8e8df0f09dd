package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/document"
	"github.com/xmazu/envtable/internal/host"
	"github.com/xmazu/envtable/internal/logger"
	"github.com/xmazu/envtable/internal/protocol"
	"github.com/xmazu/envtable/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve a .env file to an external view over stdio",
	Long: `Run the document side of the editor on stdio so another program can act as
the view. Messages are JSON, one per line.

  host -> view   {"type":"update","data":{"variables":[...]}}
  view -> host   {"type":"save","parsed":{"variables":[...]}}
                 {"type":"copy","value":"..."}
                 {"type":"toggleView"}
                 {"type":"log","level":"log|warn|error","message":"...","args":[...]}

Every save is written to disk. Changes made to the file by other programs are
pushed as updates. Logs go to stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

var serveNoWatch bool

func init() {
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not watch the file for outside changes")
	rootCmd.AddCommand(serveCmd)
}

type serveOptions struct {
	formatOnSave bool
	watch        bool
	debounce     time.Duration
	audit        bool
	log          logr.Logger
}

func runServe(cmd *cobra.Command, args []string) error {
	path, err := fileArg(args)
	if err != nil {
		return err
	}
	s := loadSettings()
	err = serve(cmdContext(cmd), path, os.Stdin, stdout(cmd), serveOptions{
		formatOnSave: s.FormatOnSave,
		watch:        !serveNoWatch,
		debounce:     s.WatchDebounce,
		audit:        s.Audit,
		log:          cmdLogger(cmd),
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serve runs a host for path until in is exhausted or ctx is done.
func serve(ctx context.Context, path string, in io.Reader, out io.Writer, opts serveOptions) error {
	log := opts.log.WithValues(logger.FileKey, path)
	doc, err := document.Open(path)
	if err != nil {
		return err
	}

	enc := protocol.NewEncoder(out)
	view := session.PostFunc(func(msg protocol.Message) bool {
		if err := enc.Encode(msg); err != nil {
			log.Error(err, "send to view failed")
			return false
		}
		return true
	})

	hostOpts := []host.Option{
		host.WithLogger(log),
		host.WithAutoPersist(true),
		host.WithFormatOnSave(opts.formatOnSave),
		host.WithFile(path),
	}
	if opts.audit {
		hostOpts = append(hostOpts, host.WithAudit(audit.ForFile(path), audit.NewSessionID()))
	}
	h := host.New(doc, hostOpts...)

	ctx, cancel := context.WithCancel(logger.WithLogger(ctx, opts.log))
	defer cancel()

	var changes <-chan struct{}
	if opts.watch {
		changes, err = doc.Watch(ctx, opts.debounce)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
	}

	hostEnd, viewEnd := protocol.Pipe()
	detach := h.Attach(view)
	defer detach()

	go readMessages(protocol.NewDecoder(in), viewEnd, log)

	return h.Run(ctx, hostEnd, changes)
}

// readMessages forwards decoded lines to the host and closes the pipe at
// end of input.
func readMessages(dec *protocol.Decoder, to *protocol.Endpoint, log logr.Logger) {
	defer to.Close()
	for {
		msg, err := dec.Decode()
		switch {
		case errors.Is(err, io.EOF):
			return
		case errors.Is(err, protocol.ErrMalformed), errors.Is(err, protocol.ErrUnknownMessage):
			log.Info("skipping message", "error", err.Error())
			continue
		case err != nil:
			log.Error(err, "read from view failed")
			return
		}
		if !to.Send(msg) {
			return
		}
	}
}
