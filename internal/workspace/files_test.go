package workspace

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListEnvFiles(t *testing.T) {
	tests := []struct {
		name     string
		entries  []string
		patterns []string
		want     []string
	}{
		{
			name:    "default patterns",
			entries: []string{".env", "apps/web/.env", "packages/db/.env", "packages/db/.env.local", "README.md"},
			want:    []string{".env", "apps/web/.env", "packages/db/.env", "packages/db/.env.local"},
		},
		{
			name:    "nothing to find",
			entries: []string{"main.go"},
		},
		{
			name:    "dependency and cache directories skipped",
			entries: []string{".env", "node_modules/.env", "apps/web/.turbo/.env", "vendor/x/.env"},
			want:    []string{".env"},
		},
		{
			name:     "custom patterns",
			entries:  []string{".env", "config/prod.env", "config/notes.txt"},
			patterns: []string{"config/*.env"},
			want:     []string{"config/prod.env"},
		},
		{
			name:    "templates skipped",
			entries: []string{".env.example", "api/.env.example"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			layout(t, tmp, tt.entries...)

			got, err := ListEnvFiles(tmp, tt.patterns)
			if err != nil {
				t.Fatalf("ListEnvFiles() error = %v", err)
			}
			var rel []string
			for _, p := range got {
				r, err := filepath.Rel(tmp, p)
				if err != nil {
					t.Fatalf("Rel() error = %v", err)
				}
				rel = append(rel, filepath.ToSlash(r))
			}
			sort.Strings(rel)
			if diff := cmp.Diff(tt.want, rel); diff != "" {
				t.Errorf("ListEnvFiles() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("invalid pattern", func(t *testing.T) {
		if _, err := ListEnvFiles(t.TempDir(), []string{"[unclosed"}); err == nil {
			t.Error("ListEnvFiles() should reject an invalid pattern")
		}
	})
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher(nil)
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}
	for rel, want := range map[string]bool{
		".env":              true,
		"a/b/.env.staging":  true,
		"a/.env.example":    false,
		"a/settings.env.go": false,
	} {
		if got := m.Match(rel); got != want {
			t.Errorf("Match(%q) = %v, want %v", rel, got, want)
		}
	}
}
