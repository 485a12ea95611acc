package coltable

import (
	"fmt"
	"os"
	"path/filepath"
)

const coltableDir = ".coltable"

// GetColtableDir returns the path to the Coltable directory in the user's
// home directory. Configuration and on-disk data both live under it.
func GetColtableDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, coltableDir), nil
}
