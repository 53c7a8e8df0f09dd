package envfile

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Variable
	}{
		{
			name:  "empty input",
			input: "",
			want:  []Variable{},
		},
		{
			name:  "unquoted value",
			input: "FOO=bar",
			want:  []Variable{{Key: "FOO", Value: "bar"}},
		},
		{
			name:  "comment attached to following variable",
			input: "# DB config\nDB_HOST=localhost\nDB_PASS=\"p@\\\"ss\"",
			want: []Variable{
				{Key: "DB_HOST", Value: "localhost", PrecedingComments: []string{"# DB config"}},
				{Key: "DB_PASS", Value: `p@"ss`},
			},
		},
		{
			name:  "consecutive comments accumulate in order",
			input: "# one\n  # two\nKEY=v",
			want: []Variable{
				{Key: "KEY", Value: "v", PrecedingComments: []string{"# one", "  # two"}},
			},
		},
		{
			name:  "blank line drops pending comments",
			input: "# orphan\n\nKEY=v",
			want:  []Variable{{Key: "KEY", Value: "v"}},
		},
		{
			name:  "trailing comments are dropped",
			input: "KEY=v\n# trailing",
			want:  []Variable{{Key: "KEY", Value: "v"}},
		},
		{
			name:  "invalid line drops pending comments",
			input: "# about junk\njunk line\nKEY=v",
			want:  []Variable{{Key: "KEY", Value: "v"}},
		},
		{
			name:  "empty key is accepted",
			input: "=value",
			want:  []Variable{{Key: "", Value: "value"}},
		},
		{
			name:  "hash before equals is not a variable",
			input: "A#B=c",
			want:  []Variable{},
		},
		{
			name:  "value keeps later equals and hashes",
			input: "URL=http://x/?a=b#frag",
			want:  []Variable{{Key: "URL", Value: "http://x/?a=b#frag"}},
		},
		{
			name:  "whitespace around key and value is trimmed",
			input: "  SPACED  =   ' padded '  ",
			want:  []Variable{{Key: "SPACED", Value: " padded "}},
		},
		{
			name:  "crlf line endings",
			input: "# c\r\nA=1\r\nB='2'\r\n",
			want: []Variable{
				{Key: "A", Value: "1", PrecedingComments: []string{"# c"}},
				{Key: "B", Value: "2"},
			},
		},
		{
			name:  "byte order mark before a comment",
			input: "\ufeff# database\nDB_HOST=localhost",
			want: []Variable{
				{Key: "DB_HOST", Value: "localhost", PrecedingComments: []string{"# database"}},
			},
		},
		{
			name:  "byte order mark before a variable",
			input: "\ufeffFOO=bar",
			want:  []Variable{{Key: "FOO", Value: "bar"}},
		},
		{
			name:  "duplicate keys are kept",
			input: "A=1\nA=2",
			want:  []Variable{{Key: "A", Value: "1"}, {Key: "A", Value: "2"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if diff := cmp.Diff(tt.want, got.Variables); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseReader(t *testing.T) {
	input := "# header\nA=1\r\n\n# lost\n\nB=\"two\"\n"

	got, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if diff := cmp.Diff(Parse(input), got); diff != "" {
		t.Errorf("ParseReader() differs from Parse() (-want +got):\n%s", diff)
	}
}

func TestParseReaderLongLine(t *testing.T) {
	long := strings.Repeat("x", 2<<20)
	got, err := ParseReader(strings.NewReader("# big\nCERT=" + long + "\nB=1"))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if got.Len() != 2 || got.Variables[0].Value != long {
		t.Errorf("ParseReader() lost the long value, got %d variables", got.Len())
	}
}

func TestNormalizeKeepsCommentAfterByteOrderMark(t *testing.T) {
	got, _, err := Normalize("\ufeff# database\nDB_HOST=localhost")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if want := "# database\nDB_HOST=\"localhost\""; got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
	if lines := InvalidLines("\ufeff# database"); len(lines) != 0 {
		t.Errorf("InvalidLines() = %v, want none", lines)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want LineType
	}{
		{"", LineTypeEmpty},
		{"   \t", LineTypeEmpty},
		{"# c", LineTypeComment},
		{"   #indented", LineTypeComment},
		{"A=1", LineTypeVariable},
		{"=1", LineTypeVariable},
		{"no equals", LineTypeInvalid},
		{"A#=1", LineTypeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Classify(tt.raw).Type; got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestInvalidLines(t *testing.T) {
	got := InvalidLines("A=1\nbroken\n\n# ok\nalso broken\r\nB=2")
	want := []int{2, 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("InvalidLines() mismatch (-want +got):\n%s", diff)
	}
}
