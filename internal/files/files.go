// Package files holds small filesystem helpers shared by the hub packages.
package files

import (
	"os"

	"github.com/pkg/errors"
)

// Exists returns whether the given path exists (file or directory).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MkdirAll creates dir and any missing parents with the given permission.
func MkdirAll(dir string, perm os.FileMode) error {
	if err := os.MkdirAll(dir, perm); err != nil {
		return errors.Wrapf(err, "failed to create directory %q", dir)
	}
	return nil
}
