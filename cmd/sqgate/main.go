package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ludo-technologies/sqgate/internal/constants"
	"github.com/ludo-technologies/sqgate/internal/version"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqgate",
		Short: "sqgate - quality gate evaluation for SonarQube projects",
		Long: `sqgate resolves the quality gate that applies to a SonarQube or SonarCloud
project, evaluates its live status and explains every failing condition.`,
		Version:       Version,
		SilenceErrors: true, // main prints errors once
	}

	// Add subcommands
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(gatesCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Handle custom exit codes from check command
		var exitErr *CheckExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			// Silently exit with the specified code (output already printed)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(constants.ExitCodeError)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "sqgate version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
