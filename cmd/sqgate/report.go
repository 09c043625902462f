package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ludo-technologies/sqgate/app"
	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/service"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	conn        connectionFlags
	formats     []string
	outputDir   string
	showPassing bool
	noProgress  bool
	metricsFile string
}

func reportCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Evaluate the project's quality gate and write a report",
		Long: `Resolve the quality gate that applies to the project, fetch its live status
and explain every failing condition.

Examples:
  # Text report on stdout
  sqgate report --project my-project

  # Evaluate a branch on SonarCloud
  sqgate report --server https://sonarcloud.io --project my-project --branch develop

  # Several formats written to a directory
  sqgate report -p my-project -f json,html -o reports/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	addConnectionFlags(cmd, &opts.conn)
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", nil,
		"Output formats (comma-separated): text, json, yaml, csv, html")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "",
		"Write one report file per format into this directory")
	cmd.Flags().BoolVar(&opts.showPassing, "show-passing", false,
		"Include passing conditions in text output")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false,
		"Disable progress bars")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "",
		"Also write gate results to this Prometheus textfile")

	return cmd
}

func runReport(cmd *cobra.Command, opts *reportOptions) error {
	req, err := buildRequest(&opts.conn)
	if err != nil {
		return err
	}

	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
	if len(formats) > 0 {
		req.OutputFormats = formats
	}
	if opts.outputDir != "" {
		req.OutputDirectory = opts.outputDir
	}
	if opts.showPassing {
		req.ShowPassing = true
	}
	if opts.metricsFile != "" {
		req.MetricsFile = opts.metricsFile
	}
	req.OutputWriter = cmd.OutOrStdout()

	if err := service.NewConfigurationLoader().ValidateConfig(req); err != nil {
		return err
	}

	pm := service.NewProgressManager(!opts.noProgress && !writesMachineOutputToStdout(req))
	defer pm.Close()

	sess, err := newSession(req, pm)
	if err != nil {
		return err
	}
	defer sess.Close()

	writer := service.NewReportWriter(
		service.NewOutputFormatterWithPassing(req.ShowPassing),
		service.NewParallelExecutorWithProgress(pm),
	)
	uc, err := app.NewReportUseCaseBuilder().
		WithService(sess.service).
		WithReportWriter(writer).
		WithLogger(sess.logger).
		Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, paths, err := uc.Execute(ctx, *req)
	if err != nil {
		return withHint(err)
	}

	for _, p := range paths {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written: %s\n", p)
	}
	if len(paths) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Quality gate %s: %s\n", report.QualityGate.Name, report.Status.Status)
	}
	return nil
}

// writesMachineOutputToStdout reports whether stdout carries a format other than text
func writesMachineOutputToStdout(req *domain.ReportRequest) bool {
	if req.OutputDirectory != "" {
		return false
	}
	for _, f := range req.OutputFormats {
		if f != domain.OutputFormatText {
			return true
		}
	}
	return false
}
