package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/hydephp/distcheck/internal/gitctx"
	"github.com/hydephp/distcheck/pkg/config"
	"github.com/hydephp/distcheck/pkg/distcheck"
	"github.com/hydephp/distcheck/pkg/exitcode"
	"github.com/hydephp/distcheck/pkg/logger"
)

func addCheckFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("fix", false, "Rewrite mismatched stylesheet banners to the manifest version")
	f.Bool("inject-version", false, "Prepend a version banner to the inject target")
	f.Bool("skip-root-version-check", false, "Skip the monorepo package-lock cross-check")
	f.String("dir", ".", "Package directory containing the manifest and assets")
	f.String("config", "", "Config file (default: <dir>/.distcheck.yaml)")
	f.String("product", "", "Product name in the banner (default HydeFront)")
	f.String("manifest", "", "Manifest file relative to --dir (default package.json)")
	f.StringSlice("asset", nil, "Asset path or glob relative to --dir (repeatable)")
	f.String("fix-scope", "header", "Fix scope: header (banner only) or global (every occurrence)")
	f.Bool("summary", false, "Print a summary table (or the JSON report with --json) to stdout")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	fix, _ := cmd.Flags().GetBool("fix")
	inject, _ := cmd.Flags().GetBool("inject-version")
	skipRoot, _ := cmd.Flags().GetBool("skip-root-version-check")
	dir, _ := cmd.Flags().GetString("dir")
	cfgFile, _ := cmd.Flags().GetString("config")
	summary, _ := cmd.Flags().GetBool("summary")
	jsonOut, _ := cmd.Flags().GetBool("json")

	if fix && inject {
		return exitcode.Wrap(exitcode.ConfigError, errors.New("--fix and --inject-version cannot be combined"))
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return exitcode.Wrap(exitcode.FileSystemErr, fmt.Errorf("failed to resolve %s: %w", dir, err))
	}
	if st, err := os.Stat(absDir); err != nil || !st.IsDir() {
		return exitcode.Wrap(exitcode.FileSystemErr, fmt.Errorf("package directory %s not found", absDir))
	}

	cfg, err := config.Load(config.Options{Dir: absDir, File: cfgFile, Flags: cmd.Flags()})
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}
	if cfg.File != "" {
		logger.Debug("Loaded config", logger.String("file", cfg.File))
	}

	var opts []distcheck.Option
	if cfg.RootCheck.Enabled {
		opts = append(opts, distcheck.WithRootFS(osfs.New(cfg.RootDir(absDir))))
	}
	if cfg.Guards.DisallowDirtyWorktree {
		opts = append(opts, distcheck.WithGuard(func() error {
			return gitctx.RequireClean(absDir)
		}))
	}

	checker := distcheck.New(osfs.New(absDir), cfg, logger.Default(), opts...)
	report, runErr := checker.Run(cmd.Context(), distcheck.Options{
		Fix:           fix,
		InjectVersion: inject,
		SkipRootCheck: skipRoot,
	})

	if summary && report != nil {
		if err := writeReport(cmd.OutOrStdout(), report, jsonOut); err != nil {
			return exitcode.Wrap(exitcode.FileSystemErr, err)
		}
	}
	if runErr != nil {
		return runErr
	}
	return report.Err()
}

func writeReport(w io.Writer, report *distcheck.Report, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprint(w, report.Summary())
	return err
}
