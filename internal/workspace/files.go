package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var DefaultExcludeDirs = []string{
	".git",
	"node_modules",
	".cache",
	".turbo",
	".next",
	"vendor",
}

var DefaultPatterns = []string{"**/.env", "**/.env.*"}

// IsEnvFilename reports whether a base name looks like an editable env
// file. Templates (.env.example) are excluded.
func IsEnvFilename(name string) bool {
	switch {
	case name == ".env":
		return true
	case name == ".env.example":
		return false
	case strings.HasPrefix(name, ".env.") && len(name) > 5:
		return true
	default:
		return strings.HasSuffix(name, ".env") && len(name) > 4
	}
}

// Matcher selects env files by doublestar patterns relative to a root.
type Matcher struct {
	patterns []string
}

func NewMatcher(patterns []string) (*Matcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	return &Matcher{patterns: patterns}, nil
}

// Match takes a slash-separated path relative to the root.
func (m *Matcher) Match(rel string) bool {
	if filepath.Base(rel) == ".env.example" {
		return false
	}
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// ListEnvFiles returns absolute paths of env files under root matching
// patterns, skipping dependency and cache directories.
func ListEnvFiles(root string, patterns []string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}
	m, err := NewMatcher(patterns)
	if err != nil {
		return nil, err
	}

	excludeSet := make(map[string]bool)
	for _, d := range DefaultExcludeDirs {
		excludeSet[d] = true
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && excludeSet[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if m.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
