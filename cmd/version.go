/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/hydephp/distcheck/internal/gitctx"
	"github.com/hydephp/distcheck/pkg/buildinfo"
)

// newVersionCommand creates the version command
func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show distcheck version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show git information for the current directory")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	out := cmd.OutOrStdout()
	version := buildinfo.Version()

	var status *gitctx.WorktreeStatus
	if extended {
		// Outside a repository the git fields are simply omitted.
		status, _ = gitctx.Collect(".")
	}

	if jsonOutput {
		versionInfo := map[string]interface{}{
			"version":   version,
			"goVersion": runtime.Version(),
			"platform":  runtime.GOOS,
			"arch":      runtime.GOARCH,
		}
		if status != nil {
			versionInfo["gitCommit"] = shortSHA(status.GitSHA)
			versionInfo["gitBranch"] = status.Branch
			versionInfo["gitDirty"] = status.Dirty()
		}
		jsonData, err := json.MarshalIndent(versionInfo, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		fmt.Fprintln(out, string(jsonData))
		return nil
	}

	fmt.Fprintf(out, "distcheck %s\n", version)
	fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if status != nil {
		fmt.Fprintf(out, "Git commit: %s\n", shortSHA(status.GitSHA))
		if status.Branch != "" {
			fmt.Fprintf(out, "Git branch: %s\n", status.Branch)
		}
		if status.Dirty() {
			fmt.Fprintf(out, "Git status: dirty (uncommitted changes)\n")
		} else {
			fmt.Fprintf(out, "Git status: clean\n")
		}
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) >= 8 {
		return sha[:8]
	}
	if sha == "" {
		return "unknown"
	}
	return sha
}
