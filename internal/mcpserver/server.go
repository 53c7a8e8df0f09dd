package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/edit"
	"github.com/xmazu/envtable/internal/envfile"
	"github.com/xmazu/envtable/internal/workspace"
)

type Options struct {
	Version      string
	FormatOnSave bool
	Audit        bool
	Log          logr.Logger
}

type tools struct {
	opts      Options
	sessionID string
}

type fileArgs struct {
	Path    string `json:"path" jsonschema:"path to the env file (default: nearest .env at or above workdir)"`
	Workdir string `json:"workdir" jsonschema:"directory to resolve path from (default: current)"`
}

type listArgs struct {
	Path    string `json:"path" jsonschema:"path to the env file (default: nearest .env at or above workdir)"`
	Workdir string `json:"workdir" jsonschema:"directory to resolve path from (default: current)"`
	Reveal  bool   `json:"reveal" jsonschema:"return real values instead of masked secrets"`
}

type setArgs struct {
	Path    string `json:"path" jsonschema:"path to the env file (default: nearest .env at or above workdir)"`
	Workdir string `json:"workdir" jsonschema:"directory to resolve path from (default: current)"`
	Key     string `json:"key" jsonschema:"variable name (e.g. DATABASE_URL)"`
	Value   string `json:"value" jsonschema:"value to store, single line"`
}

type keyArgs struct {
	Path    string `json:"path" jsonschema:"path to the env file (default: nearest .env at or above workdir)"`
	Workdir string `json:"workdir" jsonschema:"directory to resolve path from (default: current)"`
	Key     string `json:"key" jsonschema:"variable name"`
}

type moveArgs struct {
	Path     string `json:"path" jsonschema:"path to the env file (default: nearest .env at or above workdir)"`
	Workdir  string `json:"workdir" jsonschema:"directory to resolve path from (default: current)"`
	Key      string `json:"key" jsonschema:"variable name"`
	Position int    `json:"position" jsonschema:"zero-based row the variable should end up at"`
}

type formatArgs struct {
	Path    string `json:"path" jsonschema:"path to the env file (default: nearest .env at or above workdir)"`
	Workdir string `json:"workdir" jsonschema:"directory to resolve path from (default: current)"`
	Check   bool   `json:"check" jsonschema:"only report whether the file is canonical, do not write"`
}

type auditArgs struct {
	Path    string `json:"path" jsonschema:"path to the env file (default: nearest .env at or above workdir)"`
	Workdir string `json:"workdir" jsonschema:"directory to resolve path from (default: current)"`
	Count   int    `json:"count" jsonschema:"number of entries to return (default: 10)"`
}

func NewServer(opts Options) *mcpsdk.Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	t := &tools{opts: opts, sessionID: audit.NewSessionID()}

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "envtable",
		Version: opts.Version,
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list_variables",
		Description: "List the variables of a .env file in file order, with their preceding comments. Secret-looking values are masked unless reveal is set.",
	}, t.listVariables)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "set_variable",
		Description: "Set a variable in a .env file. Updates the value in place when the key exists, otherwise adds it as the first row. The file is rewritten in canonical form.",
	}, t.setVariable)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "delete_variable",
		Description: "Delete a variable and its preceding comments from a .env file.",
	}, t.deleteVariable)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "move_variable",
		Description: "Move a variable, with its comments, to another row of a .env file.",
	}, t.moveVariable)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "format_file",
		Description: "Rewrite a .env file in canonical form: comments kept above their variable, every value double-quoted, blank and unreadable lines removed.",
	}, t.formatFile)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "audit_recent",
		Description: "Show recent audit log entries for the directory of a .env file.",
	}, t.auditRecent)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "audit_verify",
		Description: "Verify the hash chain of the audit log next to a .env file and report any breaks.",
	}, t.auditVerify)

	return server
}

func Run(ctx context.Context, opts Options) error {
	return NewServer(opts).Run(ctx, &mcpsdk.StdioTransport{})
}

func (t *tools) open(path, workdir string) (*edit.Editor, error) {
	path, err := workspace.ResolveEnvPath(path, workdir)
	if err != nil {
		return nil, err
	}
	return edit.Open(path, edit.Options{FormatOnSave: t.opts.FormatOnSave, Log: t.opts.Log})
}

func (t *tools) commit(e *edit.Editor, tool string, keys ...string) error {
	if err := e.Commit(); err != nil {
		return err
	}
	if !t.opts.Audit {
		return nil
	}
	err := audit.ForFile(e.Path()).Append(audit.OpMCPCall,
		audit.WithTool(tool),
		audit.WithScope(keys),
		audit.WithSessionID(t.sessionID),
		audit.WithFile(e.Path()),
	)
	if err != nil {
		t.opts.Log.Error(err, "audit append failed", "tool", tool)
	}
	return nil
}

type variableView struct {
	Key      string   `json:"key"`
	Value    string   `json:"value"`
	Masked   bool     `json:"masked,omitempty"`
	Comments []string `json:"comments,omitempty"`
}

func (t *tools) listVariables(ctx context.Context, req *mcpsdk.CallToolRequest, args listArgs) (*mcpsdk.CallToolResult, any, error) {
	e, err := t.open(args.Path, args.Workdir)
	if err != nil {
		return failure(err), nil, nil
	}
	defer e.Close()

	detector := envfile.NewMaskDetector()
	vars := make([]variableView, 0, e.Env().Len())
	for _, v := range e.Env().Variables {
		view := variableView{Key: v.Key, Value: v.Value, Comments: v.PrecedingComments}
		if !args.Reveal && detector.ShouldMask(v.Key, v.Value) {
			view.Value = envfile.MaskValue(v.Value)
			view.Masked = true
		}
		vars = append(vars, view)
	}
	return successResult(map[string]any{"path": e.Path(), "variables": vars}), nil, nil
}

func (t *tools) setVariable(ctx context.Context, req *mcpsdk.CallToolRequest, args setArgs) (*mcpsdk.CallToolResult, any, error) {
	if args.Key == "" {
		return errorResult("key is required"), nil, nil
	}
	e, err := t.open(args.Path, args.Workdir)
	if err != nil {
		return failure(err), nil, nil
	}
	defer e.Close()

	created, err := e.Set(args.Key, args.Value)
	if err != nil {
		return failure(err), nil, nil
	}
	if err := t.commit(e, "set_variable", args.Key); err != nil {
		return failure(err), nil, nil
	}
	return successResult(map[string]any{"ok": true, "created": created, "key": args.Key, "path": e.Path()}), nil, nil
}

func (t *tools) deleteVariable(ctx context.Context, req *mcpsdk.CallToolRequest, args keyArgs) (*mcpsdk.CallToolResult, any, error) {
	if args.Key == "" {
		return errorResult("key is required"), nil, nil
	}
	e, err := t.open(args.Path, args.Workdir)
	if err != nil {
		return failure(err), nil, nil
	}
	defer e.Close()

	if err := e.Unset(args.Key); err != nil {
		if errors.Is(err, edit.ErrKeyNotFound) {
			return errorResult(fmt.Sprintf("key %q not found in %s", args.Key, e.Path())), nil, nil
		}
		return failure(err), nil, nil
	}
	if err := t.commit(e, "delete_variable", args.Key); err != nil {
		return failure(err), nil, nil
	}
	return successResult(map[string]any{"ok": true, "deleted": true, "key": args.Key, "path": e.Path()}), nil, nil
}

func (t *tools) moveVariable(ctx context.Context, req *mcpsdk.CallToolRequest, args moveArgs) (*mcpsdk.CallToolResult, any, error) {
	if args.Key == "" {
		return errorResult("key is required"), nil, nil
	}
	e, err := t.open(args.Path, args.Workdir)
	if err != nil {
		return failure(err), nil, nil
	}
	defer e.Close()

	if err := e.Move(args.Key, args.Position); err != nil {
		return failure(err), nil, nil
	}
	if err := t.commit(e, "move_variable", args.Key); err != nil {
		return failure(err), nil, nil
	}
	return successResult(map[string]any{"ok": true, "keys": e.Env().Keys(), "path": e.Path()}), nil, nil
}

func (t *tools) formatFile(ctx context.Context, req *mcpsdk.CallToolRequest, args formatArgs) (*mcpsdk.CallToolResult, any, error) {
	e, err := t.open(args.Path, args.Workdir)
	if err != nil {
		return failure(err), nil, nil
	}
	defer e.Close()

	if args.Check {
		_, changed, err := envfile.Normalize(e.Text())
		if err != nil {
			return failure(err), nil, nil
		}
		return successResult(map[string]any{"canonical": !changed, "path": e.Path()}), nil, nil
	}

	changed, err := e.Format()
	if err != nil {
		return failure(err), nil, nil
	}
	if changed {
		if err := t.commit(e, "format_file"); err != nil {
			return failure(err), nil, nil
		}
	}
	return successResult(map[string]any{"ok": true, "changed": changed, "path": e.Path()}), nil, nil
}

func (t *tools) auditLog(path, workdir string) (*audit.Log, error) {
	path, err := workspace.ResolveEnvPath(path, workdir)
	if err != nil {
		return nil, err
	}
	return audit.ForFile(path), nil
}

func (t *tools) auditRecent(ctx context.Context, req *mcpsdk.CallToolRequest, args auditArgs) (*mcpsdk.CallToolResult, any, error) {
	count := args.Count
	if count <= 0 {
		count = 10
	}
	log, err := t.auditLog(args.Path, args.Workdir)
	if err != nil {
		return failure(err), nil, nil
	}
	entries, err := log.Show(count)
	if err != nil {
		if errors.Is(err, audit.ErrNoAuditLog) {
			return successResult(map[string]any{"entries": []any{}, "message": "No audit log found"}), nil, nil
		}
		return failure(err), nil, nil
	}
	return successResult(map[string]any{"entries": entries}), nil, nil
}

func (t *tools) auditVerify(ctx context.Context, req *mcpsdk.CallToolRequest, args fileArgs) (*mcpsdk.CallToolResult, any, error) {
	log, err := t.auditLog(args.Path, args.Workdir)
	if err != nil {
		return failure(err), nil, nil
	}
	result, err := log.Verify()
	if err != nil {
		if errors.Is(err, audit.ErrNoAuditLog) {
			return successResult(map[string]any{"verified": false, "message": "No audit log found"}), nil, nil
		}
		return failure(err), nil, nil
	}

	msg := "Audit log chain integrity verified"
	if !result.OK() {
		msg = "Chain breaks detected - log may have been tampered with"
	}
	return successResult(map[string]any{
		"verified":      result.OK(),
		"total_entries": result.TotalEntries,
		"breaks":        result.Breaks,
		"message":       msg,
	}), nil, nil
}
