package chart

import (
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// DefaultExtension is appended to output names without one
const DefaultExtension = ".svg"

// OutputPath joins dir and name, adding DefaultExtension when name has none
func OutputPath(dir, name string) string {
	if filepath.Ext(name) == "" {
		name += DefaultExtension
	}
	if dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// Save writes data to path atomically, creating the parent directory
func Save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0644)
}
