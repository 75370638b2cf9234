package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// Root indicators, checked in every directory from the start upwards.
const (
	ConfigFile = "jotter.yaml"
	DataDir    = ".jotter"
)

// FindRoot looks upwards from startDir for a directory holding jotter.yaml
// or a .jotter directory and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFile) || hasFile(dir, DataDir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("root not found from %s", abs)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
