package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xmazu/envtable/internal/workspace"
)

func TestRunLs(t *testing.T) {
	t.Setenv("ENVTABLE_CONFIG_DIR", t.TempDir())

	t.Run("lists .env files in tree", func(t *testing.T) {
		tmp := t.TempDir()
		files := map[string]string{".env": "A=1\nB=2\n", ".env.local": "A=1\n", "sub/.env": ""}
		for name, content := range files {
			p := filepath.Join(tmp, name)
			if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
				t.Fatalf("MkdirAll: %v", err)
			}
			if err := os.WriteFile(p, []byte(content), 0644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
		}

		c, buf := bufferedCmd()
		if err := runLs(c, []string{tmp}); err != nil {
			t.Fatalf("runLs(): %v", err)
		}
		out := buf.String()
		for _, want := range []string{".env", ".env.local", "sub", "2 variables", "1 variable", "0 variables"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("workspace root is detected", func(t *testing.T) {
		tmp := t.TempDir()
		if err := os.WriteFile(filepath.Join(tmp, "go.work"), nil, 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := os.WriteFile(filepath.Join(tmp, ".env"), nil, 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		sub := filepath.Join(tmp, "svc")
		if err := os.MkdirAll(sub, 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		prev, _ := os.Getwd()
		if err := os.Chdir(sub); err != nil {
			t.Fatalf("chdir: %v", err)
		}
		defer os.Chdir(prev)

		c, buf := bufferedCmd()
		if err := runLs(c, nil); err != nil {
			t.Fatalf("runLs(): %v", err)
		}
		if !strings.Contains(buf.String(), "Workspace:") || !strings.Contains(buf.String(), "go.work") {
			t.Errorf("output should name the workspace, got %q", buf.String())
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		c, buf := bufferedCmd()
		if err := runLs(c, []string{t.TempDir()}); err != nil {
			t.Fatalf("runLs(): %v", err)
		}
		if !strings.Contains(buf.String(), "No .env files found") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("invalid directory returns error", func(t *testing.T) {
		if err := runLs(nil, []string{"/nonexistent-path-12345"}); err == nil {
			t.Error("runLs(nonexistent) should error")
		}
	})
}

func TestIsEnvFilename(t *testing.T) {
	for _, tt := range []struct {
		name string
		want bool
	}{
		{".env", true},
		{".env.local", true},
		{".env.production", true},
		{".env.example", false}, // template only
		{"env", false},
		{".env.", false},
	} {
		if got := workspace.IsEnvFilename(tt.name); got != tt.want {
			t.Errorf("workspace.IsEnvFilename(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
