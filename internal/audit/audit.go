// Package audit keeps a hash-chained record of edits persisted to env files.
package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	auditDir  = ".envtable"
	auditFile = "audit.logl"
)

var ErrNoAuditLog = errors.New("no audit log found")

type Op string

const (
	OpSave      Op = "save"
	OpNormalize Op = "normalize"
	OpSet       Op = "set"
	OpUnset     Op = "unset"
	OpMove      Op = "move"
	OpFormat    Op = "format"
	OpMCPCall   Op = "mcp_call"
)

type Entry struct {
	Timestamp time.Time `json:"ts"`
	Op        Op        `json:"op"`
	File      string    `json:"file,omitempty"`
	Scope     []string  `json:"scope,omitempty"`
	SessionID string    `json:"sid,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	PrevHash  string    `json:"prev_hash"`
}

type Option func(*Entry)

func WithFile(name string) Option {
	return func(e *Entry) { e.File = name }
}

func WithScope(keys []string) Option {
	return func(e *Entry) { e.Scope = keys }
}

func WithSessionID(id string) Option {
	return func(e *Entry) { e.SessionID = id }
}

func WithTool(name string) Option {
	return func(e *Entry) { e.Tool = name }
}

// NewSessionID returns an identifier grouping the entries of one editing
// session.
func NewSessionID() string {
	return uuid.NewString()
}

// Log is the audit log of one directory. A nil *Log discards entries.
type Log struct {
	path string
	mu   sync.Mutex
}

// Open returns the log kept next to the env files in dir.
func Open(dir string) *Log {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return &Log{path: filepath.Join(dir, auditDir, auditFile)}
}

// ForFile returns the log for the directory containing envPath.
func ForFile(envPath string) *Log {
	abs, err := filepath.Abs(envPath)
	if err != nil {
		abs = envPath
	}
	return Open(filepath.Dir(abs))
}

func (l *Log) Path() string {
	return l.path
}

func (l *Log) Append(op Op, opts ...Option) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("ensure audit dir: %w", err)
	}

	lines, err := l.readLines()
	if err != nil && !errors.Is(err, ErrNoAuditLog) {
		return err
	}

	entry := &Entry{
		Timestamp: time.Now().UTC(),
		Op:        op,
	}
	if len(lines) > 0 {
		entry.PrevHash = hashLine(lines[len(lines)-1])
	}
	for _, opt := range opts {
		opt(entry)
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, string(b)); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Show returns the last n entries (all when n <= 0). Unreadable lines are
// skipped.
func (l *Log) Show(n int) ([]Entry, error) {
	lines, err := l.readLines()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	var entries []Entry
	for _, line := range lines {
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type VerifyResult struct {
	TotalEntries int
	Breaks       []int // 1-based line numbers whose prev_hash does not match
}

func (r *VerifyResult) OK() bool {
	return len(r.Breaks) == 0
}

func (l *Log) Verify() (*VerifyResult, error) {
	lines, err := l.readLines()
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{TotalEntries: len(lines)}
	prev := ""
	for i, line := range lines {
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil || e.PrevHash != prev {
			result.Breaks = append(result.Breaks, i+1)
		}
		prev = hashLine(line)
	}
	return result, nil
}

func (l *Log) readLines() ([]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoAuditLog
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return lines, nil
}

func hashLine(line string) string {
	sum := sha256.Sum256([]byte(line))
	return hex.EncodeToString(sum[:])
}
