package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindEnvInParents(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	if err := os.WriteFile(envPath, []byte("KEY=value\n"), 0600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Run("finds .env in given dir", func(t *testing.T) {
		got, err := FindEnvInParents(tmpDir, 5)
		if err != nil {
			t.Fatalf("FindEnvInParents() error = %v", err)
		}
		if got != envPath {
			t.Errorf("FindEnvInParents() = %q, want %q", got, envPath)
		}
	})

	t.Run("finds .env in parent", func(t *testing.T) {
		sub := filepath.Join(tmpDir, "a", "b")
		if err := os.MkdirAll(sub, 0700); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		got, err := FindEnvInParents(sub, 5)
		if err != nil {
			t.Fatalf("FindEnvInParents() error = %v", err)
		}
		if got != envPath {
			t.Errorf("FindEnvInParents() = %q, want %q", got, envPath)
		}
	})

	t.Run("returns error when no .env in depth", func(t *testing.T) {
		deep := filepath.Join(tmpDir, "a", "b", "c")
		if err := os.MkdirAll(deep, 0700); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if _, err := FindEnvInParents(deep, 2); err == nil {
			t.Error("FindEnvInParents() should error when .env not found within depth")
		}
	})
}

func TestResolveEnvPath(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), nil, 0600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		workdir string
		want    string
	}{
		{"empty path searches workdir", "", tmpDir, filepath.Join(tmpDir, ".env")},
		{"relative path joins workdir", ".env.local", tmpDir, filepath.Join(tmpDir, ".env.local")},
		{"absolute path kept", "/etc/app.env", tmpDir, "/etc/app.env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveEnvPath(tt.path, tt.workdir)
			if err != nil {
				t.Fatalf("ResolveEnvPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveEnvPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
