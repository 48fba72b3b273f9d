// Package distcheck verifies that the version banner of each generated
// stylesheet matches the version in the package manifest, and optionally
// rewrites or injects those banners.
package distcheck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/go-git/go-billy/v5"

	"github.com/hydephp/distcheck/pkg/config"
	"github.com/hydephp/distcheck/pkg/exitcode"
	"github.com/hydephp/distcheck/pkg/header"
	"github.com/hydephp/distcheck/pkg/logger"
	"github.com/hydephp/distcheck/pkg/manifest"
	"github.com/hydephp/distcheck/pkg/safeio"
	"github.com/hydephp/distcheck/pkg/versioning"
)

// Options selects what a Run does.
type Options struct {
	// Fix rewrites mismatched banners and then verifies again.
	Fix bool
	// InjectVersion prepends a banner to the inject target and stops.
	InjectVersion bool
	// SkipRootCheck disables the monorepo lock-file cross-check.
	SkipRootCheck bool
}

// Guard is consulted before any file is written.
type Guard func() error

// Checker runs version checks against one package directory.
type Checker struct {
	fs       billy.Filesystem
	rootFS   billy.Filesystem
	cfg      *config.Config
	log      *logger.Logger
	registry *manifest.Registry
	guard    Guard
}

// Option customizes a Checker.
type Option func(*Checker)

// WithRootFS sets the filesystem rooted at the monorepo root. Without it
// the root lock check never runs.
func WithRootFS(rootFS billy.Filesystem) Option {
	return func(c *Checker) { c.rootFS = rootFS }
}

// WithGuard installs a write precondition such as a clean-worktree check.
func WithGuard(g Guard) Option {
	return func(c *Checker) { c.guard = g }
}

// WithRegistry replaces the manifest reader registry.
func WithRegistry(r *manifest.Registry) Option {
	return func(c *Checker) { c.registry = r }
}

// New creates a Checker over the package filesystem fs.
func New(fs billy.Filesystem, cfg *config.Config, log *logger.Logger, opts ...Option) *Checker {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Default()
	}
	c := &Checker{
		fs:       fs,
		cfg:      cfg,
		log:      log,
		registry: manifest.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the root check, then injection or verification (with an
// optional fix pass). Version drift is reported through Report.ExitCode;
// a returned error is fatal and carries its exit code.
func (c *Checker) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{Mode: ModeVerify, Manifest: c.cfg.Manifest}
	if opts.InjectVersion {
		report.Mode = ModeInject
	} else if opts.Fix {
		report.Mode = ModeFix
	}

	root, err := c.checkRoot(opts.SkipRootCheck)
	report.Root = root
	if err != nil {
		return report, err
	}
	if root.Failed() {
		report.ExitCode = exitcode.Mismatch
		report.Message = "root lock file out of date"
		return report, nil
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	version, err := c.manifestVersion()
	if err != nil {
		return report, err
	}
	report.Version = version

	if opts.InjectVersion {
		return report, c.inject(report)
	}

	assets, err := ResolveAssets(c.fs, c.cfg.Assets)
	if err != nil {
		return report, exitcode.Wrap(exitcode.ConfigError, err)
	}

	c.log.Info("Verifying build files...")
	c.log.Line(fmt.Sprintf("Found version '%s' in %s", version, c.cfg.Manifest))

	results, err := c.scan(assets, version, true)
	report.Assets = results
	if err != nil {
		return report, err
	}

	if opts.Fix {
		if err := c.fix(ctx, report); err != nil {
			return report, err
		}
		// Re-read from disk so the exit code reflects what was written.
		results, err = c.scan(assets, version, false)
		report.Assets = results
		if err != nil {
			return report, err
		}
	}

	c.compare(report)
	return report, nil
}

// Verify is Run without fix or injection.
func (c *Checker) Verify(ctx context.Context, skipRootCheck bool) (*Report, error) {
	return c.Run(ctx, Options{SkipRootCheck: skipRootCheck})
}

// Fix is Run with the fix pass enabled.
func (c *Checker) Fix(ctx context.Context, skipRootCheck bool) (*Report, error) {
	return c.Run(ctx, Options{Fix: true, SkipRootCheck: skipRootCheck})
}

// Inject is Run in injection mode.
func (c *Checker) Inject(ctx context.Context, skipRootCheck bool) (*Report, error) {
	return c.Run(ctx, Options{InjectVersion: true, SkipRootCheck: skipRootCheck})
}

func (c *Checker) manifestVersion() (string, error) {
	version, err := c.registry.ReadVersion(c.fs, c.cfg.Manifest)
	if err != nil {
		return "", classify(err)
	}
	if err := versioning.Validate(c.cfg.Scheme(), version); err != nil {
		c.log.Warn("Manifest version does not follow the configured scheme",
			logger.String("scheme", string(c.cfg.Scheme())), logger.Err(err))
	}
	return version, nil
}

// scan reads each asset's banner version. A malformed asset aborts the
// scan with an exit-code-carrying *header.MalformedAssetError.
func (c *Checker) scan(assets []string, version string, announce bool) ([]AssetResult, error) {
	results := make([]AssetResult, 0, len(assets))
	for _, asset := range assets {
		data, err := safeio.ReadFile(c.fs, asset)
		if err != nil {
			return results, classify(fmt.Errorf("failed to read asset %s: %w", asset, err))
		}
		found, err := header.Extract(string(data), c.cfg.Product)
		if err != nil {
			var mal *header.MalformedAssetError
			if errors.As(err, &mal) {
				mal.Path = asset
				results = append(results, AssetResult{Path: asset, Expected: version, Status: StatusMalformed, Reason: mal.Reason})
			}
			return results, exitcode.Wrap(exitcode.MalformedAsset, err)
		}
		if announce {
			c.log.Line(fmt.Sprintf("Found version '%s' in %s", found, asset))
		}

		res := AssetResult{Path: asset, Expected: version, Found: found, Status: StatusMatch}
		if found != version {
			res.Status = StatusMismatch
			res.Drift = versioning.Drift(version, found)
		}
		results = append(results, res)
	}
	return results, nil
}

func (c *Checker) fix(ctx context.Context, report *Report) error {
	c.log.Info("Fixing build files...")

	mismatches := report.Mismatches()
	if len(mismatches) == 0 {
		c.log.Warn("Nothing to fix!")
		return nil
	}
	if err := c.checkGuard(); err != nil {
		return err
	}

	scope := c.cfg.Scope()
	for _, a := range mismatches {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.log.Line(fmt.Sprintf(" > Updating %s...", a.Path))

		data, err := safeio.ReadFile(c.fs, a.Path)
		if err != nil {
			return classify(fmt.Errorf("failed to read asset %s: %w", a.Path, err))
		}
		out, changed, err := header.Replace(string(data), c.cfg.Product, a.Found, report.Version, scope)
		if err != nil {
			return exitcode.Wrap(exitcode.MalformedAsset, err)
		}
		if !changed {
			c.log.Debug("Replacement left asset unchanged", logger.String("file", a.Path))
			continue
		}
		if err := safeio.WriteFilePreservePerms(c.fs, a.Path, []byte(out)); err != nil {
			return exitcode.Wrap(exitcode.FileSystemErr, fmt.Errorf("failed to write asset %s: %w", a.Path, err))
		}
		report.Changes = append(report.Changes, FileChange{File: a.Path, OldVersion: a.Found, NewVersion: report.Version})
	}

	if len(report.Changes) > 0 {
		c.log.Info("Build files fixed", logger.Int("files", len(report.Changes)), logger.String("scope", string(scope)))
	} else {
		c.log.Warn("Nothing to fix!")
	}
	return nil
}

// compare logs mismatch details for the final asset results and sets the
// exit code.
func (c *Checker) compare(report *Report) {
	for _, a := range report.Mismatches() {
		c.log.Error(fmt.Sprintf("Version mismatch in %s and %s:", report.Manifest, a.Path))
		fields := []logger.Field{}
		if a.Drift != "" {
			fields = append(fields, logger.String("drift", a.Drift))
		}
		c.log.Warn(fmt.Sprintf("Expected %s to have version '%s', but found '%s'", path.Base(a.Path), a.Expected, a.Found), fields...)
		report.ExitCode = exitcode.Mismatch
	}

	if report.ExitCode != exitcode.Success {
		report.Message = "Exiting with errors."
		c.log.Error(report.Message)
		return
	}
	report.Message = "Build files verified. All looks good!"
	c.log.Info(report.Message)
}

func (c *Checker) inject(report *Report) error {
	target := c.cfg.InjectPath()
	data, err := safeio.ReadFile(c.fs, target)
	if err != nil {
		return classify(fmt.Errorf("failed to read inject target %s: %w", target, err))
	}
	text := string(data)

	if header.HasMarker(text, c.cfg.Product) {
		report.ExitCode = exitcode.Mismatch
		report.Message = fmt.Sprintf("Version already injected in %s", target)
		c.log.Error(report.Message)
		return nil
	}

	banner, err := header.Render(c.cfg.Header.Template, header.Data{
		Product: c.cfg.Product,
		Version: report.Version,
		License: c.cfg.Header.License,
		URL:     c.cfg.Header.URL,
	})
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}

	if err := c.checkGuard(); err != nil {
		return err
	}
	if err := safeio.WriteFilePreservePerms(c.fs, target, []byte(header.Inject(text, banner))); err != nil {
		return exitcode.Wrap(exitcode.FileSystemErr, fmt.Errorf("failed to write inject target %s: %w", target, err))
	}

	report.Changes = append(report.Changes, FileChange{File: target, NewVersion: report.Version})
	report.Message = fmt.Sprintf("Injected version '%s' into %s", report.Version, target)
	c.log.Info(report.Message)
	return nil
}

func (c *Checker) checkGuard() error {
	if c.guard == nil {
		return nil
	}
	if err := c.guard(); err != nil {
		return exitcode.Wrap(exitcode.Mismatch, fmt.Errorf("guard check failed: %w", err))
	}
	return nil
}

// classify attaches an exit code to I/O and parse failures: missing or
// unreadable files map to FileSystemErr, everything else to ConfigError.
func classify(err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return exitcode.Wrap(exitcode.FileSystemErr, err)
	}
	return exitcode.Wrap(exitcode.ConfigError, err)
}
