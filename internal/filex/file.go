package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path, if any.
// Paths without a directory component and SQLite in-memory names are left
// alone.
func EnsureParentDir(path string) (string, error) {
	if path == "" || path == ":memory:" || filepath.Dir(path) == "." {
		return ".", nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
