package experiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManifestExt is the extension of experiment manifests
const ManifestExt = ".yaml"

var (
	// ErrNotFound is returned when an experiment has no manifest in the chaos directory
	ErrNotFound = errors.New("experiment not found")

	// ErrInvalidManifest is returned when a manifest cannot be read or lacks metadata.name
	ErrInvalidManifest = errors.New("invalid experiment manifest")
)

// List returns the experiment names in dir, sorted by file name,
// with the manifest extension stripped. A missing directory is an error.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	// os.ReadDir returns entries sorted by filename
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ManifestExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ManifestExt))
	}

	return names, nil
}

// Find returns the manifest path of the named experiment
func Find(dir, name string) (string, error) {
	names, err := List(dir)
	if err != nil {
		return "", err
	}

	for _, n := range names {
		if n == name {
			return filepath.Join(dir, name+ManifestExt), nil
		}
	}

	return "", fmt.Errorf("%w: %s%s not found in %s directory", ErrNotFound, name, ManifestExt, dir)
}
