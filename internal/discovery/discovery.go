package discovery

import (
	"fmt"
	"os"
	"path/filepath"
)

const DirName = ".watchbuddy"

// FindDataDir walks up from startDir looking for a .watchbuddy directory.
func FindDataDir(startDir string) (string, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", false, nil
}

func GlobalDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DirName)
}

// ResolveDataDir returns the nearest project data dir, or the global one when
// none exists between startDir and the filesystem root.
func ResolveDataDir(startDir string) (string, error) {
	dir, found, err := FindDataDir(startDir)
	if err != nil {
		return "", err
	}
	if found {
		return dir, nil
	}
	return GlobalDataDir(), nil
}
