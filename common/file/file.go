// Package file holds helpers writing report and config output to disk
package file

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	// DefaultPermissionOctal is used for created output files
	DefaultPermissionOctal os.FileMode = 0o644
	dirPermissionOctal     os.FileMode = 0o755
)

var errEmptyPath = errors.New("file path is empty")

// Writer creates or truncates the file at path, creating any missing parent
// directories. The caller closes the file.
func Writer(path string) (*os.File, error) {
	if path == "" {
		return nil, errEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissionOctal); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultPermissionOctal)
}

// Write writes data to path, creating any missing parent directories
func Write(path string, data []byte) error {
	f, err := Writer(path)
	if err != nil {
		return err
	}
	if _, err = f.Write(data); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}
