package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const MaxEnvSearchDepth = 16

// FindEnvInParents returns the nearest .env at or above dir, looking at most
// maxDepth directories up. An empty dir means the working directory.
func FindEnvInParents(dir string, maxDepth int) (string, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}
	for i := 0; i < maxDepth; i++ {
		envPath := filepath.Join(dir, ".env")
		if info, err := os.Stat(envPath); err == nil && !info.IsDir() {
			return envPath, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no .env found in current or parent directories (searched up to %d levels)", maxDepth)
}

// ResolveEnvPath turns a user-supplied file argument into an absolute path.
// An empty path finds the nearest .env above workdir; a relative path is
// taken relative to workdir.
func ResolveEnvPath(path, workdir string) (string, error) {
	if path == "" {
		return FindEnvInParents(workdir, MaxEnvSearchDepth)
	}
	if !filepath.IsAbs(path) && workdir != "" {
		path = filepath.Join(workdir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return abs, nil
}
