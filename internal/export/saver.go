package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// Saver hands a finished blob to its destination.
type Saver interface {
	Save(blob []byte, filename string) (string, error)
}

// DirSaver writes blobs into a directory, creating it if needed.
type DirSaver struct {
	Dir string
}

// Save implements Saver and returns the written path.
func (s DirSaver) Save(blob []byte, filename string) (string, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid output file name: %q", filename)
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	dest := filepath.Join(dir, filename)
	if err := os.WriteFile(dest, blob, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return dest, nil
}
