package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydephp/distcheck/pkg/exitcode"
)

func TestCheck_Verified(t *testing.T) {
	pkg, _ := newPackage(t, "3.2.1", "3.2.1", "3.2.1")

	_, stderr, err := execRoot(t, []string{"--dir", pkg})
	require.NoError(t, err)
	assert.Contains(t, stderr, "Found version '3.2.1' in package.json")
	assert.Contains(t, stderr, "Build files verified. All looks good!")
}

func TestCheck_WorkedExample(t *testing.T) {
	pkg, _ := newPackage(t, "3.2.1", "3.2.0", "3.2.1")

	_, stderr, err := execRoot(t, []string{"--dir", pkg})
	require.Error(t, err)
	assert.Equal(t, exitcode.Mismatch, exitcode.From(err))
	assert.Contains(t, stderr, "Expected hyde.css to have version '3.2.1', but found '3.2.0'")
	assert.Contains(t, stderr, "Exiting with errors.")

	_, stderr, err = execRoot(t, []string{"--dir", pkg, "--fix"})
	require.NoError(t, err, stderr)
	assert.True(t, strings.HasPrefix(readFile(t, pkg, "dist/hyde.css"), "/*! HydeFront v3.2.1 | MIT License | https://hydephp.com*/\n"))

	_, _, err = execRoot(t, []string{"--dir", pkg})
	assert.NoError(t, err)
}

func TestCheck_MalformedAsset(t *testing.T) {
	pkg, _ := newPackage(t, "3.2.1", "3.2.1", "3.2.1")
	writeFile(t, pkg, "dist/app.css", "body{}\n")

	_, _, err := execRoot(t, []string{"--dir", pkg})
	require.Error(t, err)
	assert.Equal(t, exitcode.MalformedAsset, exitcode.From(err))
}

func TestCheck_InjectVersion(t *testing.T) {
	pkg, _ := newPackage(t, "3.2.1", "3.2.1", "3.2.1")
	writeFile(t, pkg, "dist/hyde.css", ".prose{}\n")

	_, stderr, err := execRoot(t, []string{"--dir", pkg, "--inject-version"})
	require.NoError(t, err, stderr)
	assert.Equal(t, "/*! HydeFront v3.2.1 | MIT License | https://hydephp.com*/\n.prose{}\n", readFile(t, pkg, "dist/hyde.css"))

	_, stderr, err = execRoot(t, []string{"--dir", pkg, "--inject-version"})
	require.Error(t, err)
	assert.Equal(t, exitcode.Mismatch, exitcode.From(err))
	assert.Contains(t, stderr, "Version already injected in dist/hyde.css")
}

func TestCheck_FixAndInjectExclusive(t *testing.T) {
	pkg, _ := newPackage(t, "3.2.1", "3.2.1", "3.2.1")
	_, _, err := execRoot(t, []string{"--dir", pkg, "--fix", "--inject-version"})
	require.Error(t, err)
	assert.Equal(t, exitcode.ConfigError, exitcode.From(err))
}

func TestCheck_RootVersionCheck(t *testing.T) {
	pkg, root := newPackage(t, "3.2.1", "3.2.1", "3.2.1")
	writeFile(t, root, "composer.json", `{"name":"hyde/monorepo"}`)
	writeFile(t, root, "package-lock.json", `{"lockfileVersion":2,"dependencies":{"hydefront":{"version":"3.2.0"}}}`)
	writeFile(t, root, "packages/hydefront/package.json", `{"name":"hydefront","version":"3.2.1"}`)

	_, stderr, err := execRoot(t, []string{"--dir", pkg})
	require.Error(t, err)
	assert.Equal(t, exitcode.Mismatch, exitcode.From(err))
	assert.Contains(t, stderr, "Please run 'npm update hydefront'")

	_, stderr, err = execRoot(t, []string{"--dir", pkg, "--skip-root-version-check"})
	require.NoError(t, err, stderr)
	assert.NotContains(t, stderr, "Verifying root package lock...")
}

func TestCheck_ConfigFile(t *testing.T) {
	pkg, _ := newPackage(t, "1.0.0", "1.0.0", "1.0.0")
	writeFile(t, pkg, "build/site.css", "/*! Acme v1.0.0 | MIT */\n")
	writeFile(t, pkg, ".distcheck.yaml", "product: Acme\nassets:\n  - \"build/*.css\"\n")

	_, stderr, err := execRoot(t, []string{"--dir", pkg})
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "Found version '1.0.0' in build/site.css")
	assert.NotContains(t, stderr, "dist/hyde.css")
}

func TestCheck_InvalidConfig(t *testing.T) {
	pkg, _ := newPackage(t, "1.0.0", "1.0.0", "1.0.0")
	writeFile(t, pkg, ".distcheck.yaml", "fix:\n  scope: sometimes\n")

	_, _, err := execRoot(t, []string{"--dir", pkg})
	require.Error(t, err)
	assert.Equal(t, exitcode.ConfigError, exitcode.From(err))
}

func TestCheck_FlagsOverrideConfig(t *testing.T) {
	pkg, _ := newPackage(t, "1.0.0", "0.9.0", "1.0.0")

	_, stderr, err := execRoot(t, []string{"--dir", pkg, "--asset", "dist/app.css"})
	require.NoError(t, err, stderr)
	assert.NotContains(t, stderr, "dist/hyde.css")
}

func TestCheck_MissingDir(t *testing.T) {
	_, _, err := execRoot(t, []string{"--dir", "/does/not/exist"})
	require.Error(t, err)
	assert.Equal(t, exitcode.FileSystemErr, exitcode.From(err))
}

func TestCheck_DirtyWorktreeGuardOutsideRepo(t *testing.T) {
	pkg, _ := newPackage(t, "3.2.1", "3.2.0", "3.2.1")
	writeFile(t, pkg, ".distcheck.yaml", "guards:\n  disallow_dirty_worktree: true\n")

	// not a git repository, so the guard passes
	_, stderr, err := execRoot(t, []string{"--dir", pkg, "--fix"})
	require.NoError(t, err, stderr)
}

func TestCheck_SummaryTable(t *testing.T) {
	pkg, _ := newPackage(t, "3.2.1", "3.2.0", "3.2.1")

	stdout, _, err := execRoot(t, []string{"--dir", pkg, "--summary"})
	require.Error(t, err)
	assert.Contains(t, stdout, "dist/hyde.css")
	assert.Contains(t, stdout, "Mismatch")
	assert.Contains(t, stdout, "expected '3.2.1', found '3.2.0'")
}

func TestCheck_SummaryJSON(t *testing.T) {
	pkg, _ := newPackage(t, "3.2.1", "3.2.0", "3.2.1")

	stdout, stderr, err := execRoot(t, []string{"--dir", pkg, "--summary", "--json"})
	require.Error(t, err)

	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep), stdout)
	assert.Equal(t, "3.2.1", rep["version"])
	assert.EqualValues(t, 1, rep["exit_code"])

	// JSON logs: one object per line
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		var entry map[string]any
		assert.NoError(t, json.Unmarshal([]byte(line), &entry), line)
	}
}
