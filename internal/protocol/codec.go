package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/xmazu/envtable/internal/envfile"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrMalformed      = errors.New("malformed message")
)

// wireMessage is the JSON-lines form. Field names follow the webview
// protocol the format originated in.
type wireMessage struct {
	Type    Kind               `json:"type"`
	Data    *envfile.ParsedEnv `json:"data,omitempty"`
	Parsed  *envfile.ParsedEnv `json:"parsed,omitempty"`
	Value   *string            `json:"value,omitempty"`
	Level   LogLevel           `json:"level,omitempty"`
	Message string             `json:"message,omitempty"`
	Args    []any              `json:"args,omitempty"`
}

func Marshal(msg Message) ([]byte, error) {
	var w wireMessage
	switch m := msg.(type) {
	case Update:
		w = wireMessage{Type: KindUpdate, Data: m.Env}
	case Save:
		w = wireMessage{Type: KindSave, Parsed: m.Env}
	case Copy:
		v := m.Value
		w = wireMessage{Type: KindCopy, Value: &v}
	case ToggleView:
		w = wireMessage{Type: KindToggleView}
	case Log:
		w = wireMessage{Type: KindLog, Level: m.Level, Message: m.Message, Args: m.Args}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessage, msg)
	}
	return json.Marshal(w)
}

func Unmarshal(data []byte) (Message, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch w.Type {
	case KindUpdate:
		return Update{Env: w.Data}, nil
	case KindSave:
		return Save{Env: w.Parsed}, nil
	case KindCopy:
		var v string
		if w.Value != nil {
			v = *w.Value
		}
		return Copy{Value: v}, nil
	case KindToggleView:
		return ToggleView{}, nil
	case KindLog:
		level := w.Level
		if level == "" {
			level = LevelLog
		}
		return Log{Level: level, Message: w.Message, Args: w.Args}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, w.Type)
	}
}

// Encoder writes one JSON message per line.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(msg Message) error {
	b, err := Marshal(msg)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err := e.w.Write(b); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Decoder reads JSON-lines messages. Blank lines are skipped.
type Decoder struct {
	scanner *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	const maxCapacity = 4 * 1024 * 1024
	scanner.Buffer(make([]byte, 0, 64*1024), maxCapacity)
	return &Decoder{scanner: scanner}
}

// Decode returns io.EOF when the stream ends. A bad line yields an error
// wrapping ErrMalformed or ErrUnknownMessage and the next call moves on.
func (d *Decoder) Decode() (Message, error) {
	for d.scanner.Scan() {
		line := d.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		return Unmarshal(line)
	}
	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}
	return nil, io.EOF
}
