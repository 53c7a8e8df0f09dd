package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRunList(t *testing.T) {
	_, path := testEnv(t, "# api\nAPI_KEY=sk-abcdef123456\nPORT=3000\n")
	defer func() { listReveal = false }()

	type output struct {
		Path      string           `json:"path"`
		Count     int              `json:"count"`
		Variables []listedVariable `json:"variables"`
	}

	run := func(t *testing.T) output {
		t.Helper()
		c, buf := bufferedCmd()
		if err := runList(c, []string{path}); err != nil {
			t.Fatalf("runList() error = %v", err)
		}
		var out output
		if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		return out
	}

	t.Run("masks secrets", func(t *testing.T) {
		listReveal = false
		out := run(t)
		if out.Count != 2 {
			t.Fatalf("count = %d, want 2", out.Count)
		}
		api := out.Variables[0]
		if !api.Masked || api.Value == "sk-abcdef123456" {
			t.Errorf("API_KEY = %+v, want masked", api)
		}
		if len(api.Comments) != 1 || api.Comments[0] != "# api" {
			t.Errorf("comments = %q", api.Comments)
		}
		if out.Variables[1].Value != "3000" || out.Variables[1].Masked {
			t.Errorf("PORT = %+v", out.Variables[1])
		}
	})

	t.Run("reveal", func(t *testing.T) {
		listReveal = true
		out := run(t)
		if out.Variables[0].Value != "sk-abcdef123456" {
			t.Errorf("API_KEY value = %q", out.Variables[0].Value)
		}
	})

	t.Run("long lines and byte order mark", func(t *testing.T) {
		listReveal = true
		cert := strings.Repeat("A", 1<<20)
		_, bomPath := testEnv(t, "\ufeff# tls\nCERT="+cert+"\n")
		c, buf := bufferedCmd()
		if err := runList(c, []string{bomPath}); err != nil {
			t.Fatalf("runList() error = %v", err)
		}
		var out output
		if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if out.Count != 1 || out.Variables[0].Key != "CERT" || out.Variables[0].Value != cert {
			t.Errorf("list lost the long CERT value: count = %d", out.Count)
		}
		if len(out.Variables[0].Comments) != 1 {
			t.Errorf("comments = %q, want the first-line comment", out.Variables[0].Comments)
		}
	})
}
