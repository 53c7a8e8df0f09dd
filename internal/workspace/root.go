package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// MarkerFiles identify a project root, highest priority first.
var MarkerFiles = []string{
	"pnpm-workspace.yaml",
	"turbo.json",
	"lerna.json",
	"go.work",
	"settings.gradle",
	"settings.gradle.kts",
	".git",
}

// Root is the directory env files are discovered under.
type Root struct {
	Dir    string
	Marker string // empty when no marker was found
}

// FindRoot walks up from dir to the nearest directory holding a marker
// file. Without one, dir itself is the root.
func FindRoot(dir string) (Root, error) {
	original, err := filepath.Abs(dir)
	if err != nil {
		return Root{}, fmt.Errorf("resolve absolute path: %w", err)
	}

	for cur := original; ; {
		if marker := markerIn(cur); marker != "" {
			return Root{Dir: cur, Marker: marker}, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return Root{Dir: original}, nil
		}
		cur = parent
	}
}

func (r Root) IsWorkspace() bool {
	return r.Marker != ""
}

func (r Root) Describe() string {
	switch r.Marker {
	case "":
		return "directory"
	case ".git":
		return "git repository"
	default:
		return r.Marker
	}
}

func markerIn(dir string) string {
	for _, marker := range MarkerFiles {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return marker
		}
	}
	return ""
}
