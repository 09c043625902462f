package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ludo-technologies/sqgate/app"
	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/internal/constants"
	"github.com/ludo-technologies/sqgate/service"
	"github.com/spf13/cobra"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

type checkOptions struct {
	conn        connectionFlags
	verbose     bool
	json        bool
	metricsFile string
}

func checkCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fail the build when the project's quality gate fails",
		Long: `Evaluate the project's quality gate for CI/CD integration.

Exit codes:
  0 - Quality gate passed
  1 - Quality gate failed
  2 - Evaluation error (bad request, unreachable server, unknown gate, etc.)

Examples:
  # Check the main branch
  sqgate check --project my-project

  # Check a pull request branch with detailed output
  sqgate check -p my-project -b feature/login --verbose

  # JSON output for machine parsing
  sqgate check -p my-project --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	addConnectionFlags(cmd, &opts.conn)
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show detailed output")
	cmd.Flags().BoolVar(&opts.json, "json", false,
		"Output results as JSON")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "",
		"Also write gate results to this Prometheus textfile")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	req, err := buildRequest(&opts.conn)
	if err != nil {
		return errorExit(err)
	}
	if opts.metricsFile != "" {
		req.MetricsFile = opts.metricsFile
	}
	if err := service.NewConfigurationLoader().ValidateConfig(req); err != nil {
		return errorExit(err)
	}

	pm := service.NewProgressManager(!opts.json)
	defer pm.Close()

	sess, err := newSession(req, pm)
	if err != nil {
		return errorExit(err)
	}
	defer sess.Close()

	uc, err := app.NewReportUseCaseBuilder().
		WithService(sess.service).
		WithLogger(sess.logger).
		Build()
	if err != nil {
		return errorExit(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := uc.Check(ctx, *req)
	if err != nil {
		return errorExit(withHint(err))
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return outputCheckJSON(out, result)
	}
	return outputCheckText(out, result, opts.verbose)
}

func errorExit(err error) error {
	return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
}

func outputCheckText(out io.Writer, result *domain.CheckResult, verbose bool) error {
	target := result.ProjectKey
	if result.Branch != "" {
		target += "@" + result.Branch
	}

	if result.Passed {
		fmt.Fprintf(out, "PASS: Quality gate %q passed for %s\n", result.QualityGate, target)
		if verbose {
			fmt.Fprintf(out, "  Conditions: %d\n", result.Summary.TotalConditions)
			fmt.Fprintf(out, "  Duration: %dms\n", result.Duration)
		}
		return nil
	}

	fmt.Fprintf(out, "FAIL: Quality gate %q failed for %s\n", result.QualityGate, target)
	fmt.Fprintf(out, "  Failed conditions: %d\n", len(result.Violations))

	for _, v := range result.Violations {
		fmt.Fprintf(out, "  [ERROR] %s\n", v.Message)
		if verbose {
			fmt.Fprintf(out, "         metric %s: actual %s, threshold %s %s\n", v.Metric, v.Actual, v.Comparator, v.Threshold)
		}
	}

	if verbose {
		fmt.Fprintf(out, "\nSummary:\n")
		fmt.Fprintf(out, "  Conditions: %d\n", result.Summary.TotalConditions)
		fmt.Fprintf(out, "  Passed: %d\n", result.Summary.PassedConditions)
		fmt.Fprintf(out, "  Failed: %d\n", result.Summary.FailedConditions)
		fmt.Fprintf(out, "  Duration: %dms\n", result.Duration)
	}

	return &CheckExitError{Code: constants.ExitCodeFailed, Message: ""}
}

func outputCheckJSON(out io.Writer, result *domain.CheckResult) error {
	if err := service.WriteJSON(out, result); err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: fmt.Sprintf("failed to encode JSON: %v", err)}
	}

	if !result.Passed {
		return &CheckExitError{Code: constants.ExitCodeFailed, Message: ""}
	}
	return nil
}
