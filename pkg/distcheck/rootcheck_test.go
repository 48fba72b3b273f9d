package distcheck

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydephp/distcheck/pkg/exitcode"
)

func newMonorepo(t *testing.T, locked, pkg string) billy.Filesystem {
	t.Helper()
	root := memfs.New()
	write(t, root, "composer.json", `{"name":"hyde/monorepo","require":{"php":"^8.1"}}`)
	write(t, root, "package-lock.json", `{"name":"monorepo","lockfileVersion":2,"dependencies":{"hydefront":{"version":"`+locked+`"}}}`)
	write(t, root, "packages/hydefront/package.json", `{"name":"hydefront","version":"`+pkg+`"}`)
	return root
}

func TestRootCheck_Mismatch(t *testing.T) {
	f := newFixture(t, "3.2.1", "3.2.1", "3.2.1")
	root := newMonorepo(t, "3.2.0", "3.2.1")

	rep, err := f.checker(WithRootFS(root)).Verify(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, exitcode.Mismatch, rep.ExitCode)
	require.NotNil(t, rep.Root)
	assert.True(t, rep.Root.Failed())
	assert.Equal(t, "3.2.0", rep.Root.Locked)
	assert.Equal(t, "3.2.1", rep.Root.Found)
	// asset checks do not run after a root failure
	assert.Empty(t, rep.Assets)

	out := f.out.String()
	assert.Contains(t, out, "Verifying root package lock...")
	assert.Contains(t, out, "Version mismatch in root package-lock.json and packages/hydefront/package.json:")
	assert.Contains(t, out, "Expected hydefront to have version '3.2.0', but found '3.2.1'")
	assert.Contains(t, out, "Please run 'npm update hydefront'")
	assert.NotContains(t, out, "Verifying build files...")
}

func TestRootCheck_Verified(t *testing.T) {
	f := newFixture(t, "3.2.1", "3.2.1", "3.2.1")
	root := newMonorepo(t, "3.2.1", "3.2.1")

	rep, err := f.checker(WithRootFS(root)).Verify(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.True(t, rep.Root.Verified())
	assert.Contains(t, f.out.String(), "Root package lock verified. All looks good!")
	assert.Contains(t, f.out.String(), "Build files verified. All looks good!")
	assert.Contains(t, rep.Summary(), "Root lock (hydefront): verified")
}

func TestRootCheck_Skipped(t *testing.T) {
	f := newFixture(t, "3.2.1", "3.2.1", "3.2.1")
	root := newMonorepo(t, "1.0.0", "3.2.1")

	rep, err := f.checker(WithRootFS(root)).Verify(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.True(t, rep.Root.Skipped)
	assert.False(t, rep.Root.Failed())
	assert.NotContains(t, f.out.String(), "Verifying root package lock...")
}

func TestRootCheck_NotMonorepo(t *testing.T) {
	f := newFixture(t, "3.2.1", "3.2.1", "3.2.1")
	root := memfs.New()
	write(t, root, "composer.json", `{"name":"hyde/hyde"}`)

	rep, err := f.checker(WithRootFS(root)).Verify(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.False(t, rep.Root.Monorepo)

	rep, err = f.checker(WithRootFS(memfs.New())).Verify(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, rep.Root.Monorepo)
}

func TestRootCheck_Disabled(t *testing.T) {
	f := newFixture(t, "3.2.1", "3.2.1", "3.2.1")
	f.cfg.RootCheck.Enabled = false

	rep, err := f.checker(WithRootFS(newMonorepo(t, "0.0.1", "3.2.1"))).Verify(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.Nil(t, rep.Root)
}

func TestRootCheck_LockfileV3(t *testing.T) {
	f := newFixture(t, "3.2.1", "3.2.1", "3.2.1")
	root := memfs.New()
	write(t, root, "composer.json", `{"name":"hyde/monorepo"}`)
	write(t, root, "package-lock.json", `{"lockfileVersion":3,"packages":{"node_modules/hydefront":{"version":"3.2.1"}}}`)
	write(t, root, "packages/hydefront/package.json", `{"version":"3.2.1"}`)

	rep, err := f.checker(WithRootFS(root)).Verify(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, rep.Root.Verified())
}

func TestRootCheck_Errors(t *testing.T) {
	t.Run("missing_lock", func(t *testing.T) {
		f := newFixture(t, "3.2.1", "3.2.1", "3.2.1")
		root := newMonorepo(t, "3.2.1", "3.2.1")
		require.NoError(t, root.Remove("package-lock.json"))

		_, err := f.checker(WithRootFS(root)).Verify(context.Background(), false)
		assert.Equal(t, exitcode.FileSystemErr, exitcode.From(err))
	})

	t.Run("dependency_not_locked", func(t *testing.T) {
		f := newFixture(t, "3.2.1", "3.2.1", "3.2.1")
		root := newMonorepo(t, "3.2.1", "3.2.1")
		write(t, root, "package-lock.json", `{"lockfileVersion":2,"dependencies":{}}`)

		_, err := f.checker(WithRootFS(root)).Verify(context.Background(), false)
		assert.Equal(t, exitcode.ConfigError, exitcode.From(err))
	})
}
