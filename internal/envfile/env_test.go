package envfile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsedEnvClone(t *testing.T) {
	orig := &ParsedEnv{Variables: []Variable{
		{Key: "A", Value: "1", PrecedingComments: []string{"# a"}},
		{Key: "B", Value: "2"},
	}}

	clone := orig.Clone()
	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("Clone() mismatch (-want +got):\n%s", diff)
	}

	clone.Variables[0].Key = "CHANGED"
	clone.Variables[0].PrecedingComments[0] = "# changed"
	if orig.Variables[0].Key != "A" || orig.Variables[0].PrecedingComments[0] != "# a" {
		t.Errorf("mutating clone changed original: %+v", orig.Variables[0])
	}

	if (*ParsedEnv)(nil).Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestParsedEnvLookup(t *testing.T) {
	env := Parse("A=1\nB=2\nA=3")

	if got := env.Index("A"); got != 0 {
		t.Errorf("Index(A) = %d, want 0", got)
	}
	if got := env.Index("missing"); got != -1 {
		t.Errorf("Index(missing) = %d, want -1", got)
	}
	if diff := cmp.Diff([]string{"A", "B", "A"}, env.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	var nilEnv *ParsedEnv
	if nilEnv.Len() != 0 || nilEnv.Index("A") != -1 || len(nilEnv.Keys()) != 0 {
		t.Error("nil model should behave as empty")
	}
}
