/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/hydephp/distcheck/pkg/buildinfo"
	"github.com/hydephp/distcheck/pkg/exitcode"
	"github.com/hydephp/distcheck/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distcheck",
		Short: "Verify that built stylesheets carry the package version",
		Long: `distcheck verifies that the version banner at the top of each generated
stylesheet matches the version in the package manifest.

Examples:
   distcheck                            # Verify dist/hyde.css and dist/app.css against package.json
   distcheck --fix                      # Rewrite mismatched banners, then verify again
   distcheck --inject-version           # Prepend a banner to a freshly built dist/hyde.css
   distcheck --skip-root-version-check  # Skip the monorepo package-lock cross-check
   distcheck version                    # Show version`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
		RunE: runCheck,
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs and reports in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	addCheckFlags(cmd)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitcode.Wrap(exitcode.ConfigError, err)
	})

	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("distcheck {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func init() {
	registerSubcommands(rootCmd)
}

// Execute runs the root command and exits with the code carried by its
// error. Failures the checker already reported are not logged twice.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var coded *exitcode.Error
	if !errors.As(err, &coded) || coded.Err != nil {
		logger.Error("Command execution failed", logger.Err(err))
	}
	os.Exit(exitcode.From(err))
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor && os.Getenv("NO_COLOR") == "",
		JSON:      jsonLogs,
		Component: "distcheck",
		Output:    cmd.ErrOrStderr(),
	}

	if err := logger.Initialize(config); err != nil {
		// Fallback to stderr
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}
