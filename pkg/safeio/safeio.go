// Package safeio wraps billy filesystems with path hygiene and
// permission-preserving writes.
package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// CleanUserPath cleans a user-provided path and rejects traversal attempts.
// Returns paths with forward slashes for cross-platform consistency.
func CleanUserPath(p string) (string, error) {
	c := filepath.Clean(p)
	for _, seg := range strings.Split(filepath.ToSlash(c), "/") {
		if seg == ".." {
			return "", errors.New("path traversal detected")
		}
	}
	return filepath.ToSlash(c), nil
}

// ReadFile reads a cleaned, filesystem-relative path.
func ReadFile(fs billy.Filesystem, path string) ([]byte, error) {
	clean, err := CleanUserPath(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return util.ReadFile(fs, clean)
}

// Exists reports whether path names a regular file in fs.
func Exists(fs billy.Filesystem, path string) bool {
	clean, err := CleanUserPath(path)
	if err != nil {
		return false
	}
	st, err := fs.Stat(clean)
	return err == nil && !st.IsDir()
}

// WriteFilePreservePerms writes data to path preserving existing file mode when possible.
// When the file does not exist, it uses a sane default of 0644.
func WriteFilePreservePerms(fs billy.Filesystem, path string, data []byte) error {
	clean, err := CleanUserPath(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	var mode os.FileMode = 0o644
	if st, err := fs.Stat(clean); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	return util.WriteFile(fs, clean, data, mode)
}
