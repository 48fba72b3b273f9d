package distcheck

import (
	"fmt"
	"strings"

	"github.com/hydephp/distcheck/pkg/logger"
	"github.com/hydephp/distcheck/pkg/manifest"
	"github.com/hydephp/distcheck/pkg/safeio"
)

// RootResult is the outcome of the monorepo lock-file cross-check.
type RootResult struct {
	Monorepo   bool   `json:"monorepo"`
	Skipped    bool   `json:"skipped,omitempty"`
	LockFile   string `json:"lock_file,omitempty"`
	Manifest   string `json:"manifest,omitempty"`
	Dependency string `json:"dependency,omitempty"`
	Locked     string `json:"locked,omitempty"`
	Found      string `json:"found,omitempty"`
}

// Verified reports whether the check ran and the versions agree.
func (r *RootResult) Verified() bool {
	return r != nil && r.Monorepo && !r.Skipped && r.Locked == r.Found
}

// Failed reports whether the check ran and found drift.
func (r *RootResult) Failed() bool {
	return r != nil && r.Monorepo && !r.Skipped && r.Locked != r.Found
}

// isMonorepo reports whether the marker file under the root contains the
// configured marker.
func (c *Checker) isMonorepo() bool {
	rc := c.cfg.RootCheck
	data, err := safeio.ReadFile(c.rootFS, rc.MarkerFile)
	if err != nil {
		c.log.Debug("Monorepo marker file not readable", logger.String("file", rc.MarkerFile), logger.Err(err))
		return false
	}
	return strings.Contains(string(data), rc.Marker)
}

// checkRoot compares the dependency's locked version in the root lock file
// with the version in the dependency's own manifest. It returns nil when
// the check does not apply.
func (c *Checker) checkRoot(skip bool) (*RootResult, error) {
	rc := c.cfg.RootCheck
	if c.rootFS == nil || !rc.Enabled {
		return nil, nil
	}
	if !c.isMonorepo() {
		c.log.Debug("Not running inside the monorepo, root lock check not applicable")
		return &RootResult{}, nil
	}

	res := &RootResult{
		Monorepo:   true,
		LockFile:   rc.LockFile,
		Manifest:   rc.DependencyManifest,
		Dependency: rc.Dependency,
	}
	if skip {
		c.log.Debug("Skipping root package lock check")
		res.Skipped = true
		return res, nil
	}

	c.log.Info("Verifying root package lock...")

	locked, err := manifest.ReadLockedVersion(c.rootFS, rc.LockFile, rc.Dependency)
	if err != nil {
		return res, classify(err)
	}
	found, err := c.registry.ReadVersion(c.rootFS, rc.DependencyManifest)
	if err != nil {
		return res, classify(err)
	}
	res.Locked = locked
	res.Found = found

	if locked != found {
		c.log.Error(fmt.Sprintf("Version mismatch in root %s and %s:", rc.LockFile, rc.DependencyManifest))
		c.log.Warn(fmt.Sprintf("Expected %s to have version '%s', but found '%s'", rc.Dependency, locked, found))
		c.log.Warn(fmt.Sprintf("Please run 'npm update %s'", rc.Dependency))
		return res, nil
	}

	c.log.Info("Root package lock verified. All looks good!")
	c.log.Line("")
	return res, nil
}
