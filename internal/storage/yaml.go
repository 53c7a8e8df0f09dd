package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLFile is a typed YAML document on disk.
type YAMLFile[T any] struct {
	path string
}

func NewYAMLFile[T any](path string) *YAMLFile[T] {
	return &YAMLFile[T]{path: path}
}

func (y *YAMLFile[T]) Path() string {
	return y.path
}

func (y *YAMLFile[T]) Exists() bool {
	_, err := os.Stat(y.path)
	return err == nil
}

// LoadInto decodes the file over dest, so fields absent from the file keep
// the values dest already had. A missing file leaves dest untouched.
func (y *YAMLFile[T]) LoadInto(dest *T) error {
	data, err := os.ReadFile(y.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read file: %w", err)
	}

	if err := yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func (y *YAMLFile[T]) Save(data *T) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return WriteFileAtomic(y.path, out, 0600)
}
