package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-git/go-billy/v5"

	"github.com/hydephp/distcheck/pkg/safeio"
)

// ErrDependencyNotLocked is returned when the lock file has no entry for
// the requested dependency.
var ErrDependencyNotLocked = errors.New("dependency not found in lock file")

type lockEntry struct {
	Version string `json:"version"`
}

// npm lockfile v1 only has "dependencies", v3 only "packages", v2 both.
type lockFile struct {
	LockfileVersion int                  `json:"lockfileVersion"`
	Dependencies    map[string]lockEntry `json:"dependencies"`
	Packages        map[string]lockEntry `json:"packages"`
}

// LockedVersion parses an npm lock file and returns the version locked for
// dependency.
func LockedVersion(data []byte, dependency string) (string, error) {
	var lock lockFile
	if err := json.Unmarshal(data, &lock); err != nil {
		return "", fmt.Errorf("failed to parse lock file: %w", err)
	}
	if e, ok := lock.Dependencies[dependency]; ok && e.Version != "" {
		return e.Version, nil
	}
	if e, ok := lock.Packages["node_modules/"+dependency]; ok && e.Version != "" {
		return e.Version, nil
	}
	return "", fmt.Errorf("%w: %s", ErrDependencyNotLocked, dependency)
}

// ReadLockedVersion reads file from fs and returns the version locked for
// dependency.
func ReadLockedVersion(fs billy.Filesystem, file, dependency string) (string, error) {
	data, err := safeio.ReadFile(fs, file)
	if err != nil {
		return "", fmt.Errorf("failed to read lock file %s: %w", file, err)
	}
	version, err := LockedVersion(data, dependency)
	if err != nil {
		return "", fmt.Errorf("lock file %s: %w", file, err)
	}
	return version, nil
}
