package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ludo-technologies/sqgate/app"
	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/service"
	"github.com/spf13/cobra"
)

type gatesOptions struct {
	conn   connectionFlags
	format string
}

func gatesCmd() *cobra.Command {
	opts := &gatesOptions{}

	cmd := &cobra.Command{
		Use:   "gates",
		Short: "List the quality gates defined on the server",
		Long: `List every quality gate with its conditions and mark the default gate.

Examples:
  sqgate gates --project my-project
  sqgate gates -p my-project --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGates(cmd, opts)
		},
	}

	addConnectionFlags(cmd, &opts.conn)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text",
		"Output format: text, json, yaml, csv")

	return cmd
}

func runGates(cmd *cobra.Command, opts *gatesOptions) error {
	formats, err := parseFormats([]string{opts.format})
	if err != nil {
		return err
	}
	if len(formats) != 1 || formats[0] == domain.OutputFormatHTML {
		return domain.NewUnsupportedFormatError(opts.format)
	}

	req, err := buildRequest(&opts.conn)
	if err != nil {
		return err
	}
	if err := service.NewConfigurationLoader().ValidateConfig(req); err != nil {
		return err
	}

	pm := service.NewProgressManager(formats[0] == domain.OutputFormatText)
	defer pm.Close()

	sess, err := newSession(req, pm)
	if err != nil {
		return err
	}
	defer sess.Close()

	uc, err := app.NewGatesUseCase(sess.service, service.NewOutputFormatter())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gates, err := uc.Execute(ctx, formats[0], cmd.OutOrStdout())
	if err != nil {
		return withHint(err)
	}
	sess.logger.Infow("Listed quality gates", "count", len(gates))
	return nil
}
