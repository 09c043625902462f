package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/internal/logging"
	"github.com/ludo-technologies/sqgate/internal/sonarqube"
	"github.com/ludo-technologies/sqgate/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// connectionFlags are shared by every command that talks to the server
type connectionFlags struct {
	serverURL  string
	token      string
	project    string
	branch     string
	timeout    int
	rps        float64
	configPath string
	logLevel   string
}

func addConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	cmd.Flags().StringVar(&f.serverURL, "server", "",
		"Server base URL (default from config, then http://localhost:9000)")
	cmd.Flags().StringVar(&f.token, "token", "",
		"Authentication token (prefer SQGATE_SERVER_TOKEN)")
	cmd.Flags().StringVarP(&f.project, "project", "p", "",
		"Project key")
	cmd.Flags().StringVarP(&f.branch, "branch", "b", "",
		"Branch to evaluate (default: main branch)")
	cmd.Flags().IntVar(&f.timeout, "timeout", 0,
		"Request timeout in seconds")
	cmd.Flags().Float64Var(&f.rps, "rps", 0,
		"Maximum requests per second (0 = unlimited)")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "",
		"Log level: debug, info, warn, error")
}

// buildRequest loads the configuration and applies flag overrides on top of it
func buildRequest(f *connectionFlags) (*domain.ReportRequest, error) {
	loader := service.NewConfigurationLoader()

	var base *domain.ReportRequest
	if f.configPath != "" {
		req, err := loader.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		base = req
	} else {
		base = loader.LoadDefaultConfig()
	}

	override := &domain.ReportRequest{
		ServerURL:         f.serverURL,
		Token:             f.token,
		TimeoutSeconds:    f.timeout,
		RequestsPerSecond: f.rps,
		ProjectKey:        f.project,
		Branch:            f.branch,
		ConfigPath:        f.configPath,
		LogLevel:          f.logLevel,
	}
	return loader.MergeConfig(base, override), nil
}

// parseFormats splits --format values, accepting both repeated and comma-separated use
func parseFormats(values []string) ([]domain.OutputFormat, error) {
	var formats []domain.OutputFormat
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			format := domain.OutputFormat(part)
			if !format.IsValid() {
				return nil, domain.NewUnsupportedFormatError(part)
			}
			formats = append(formats, format)
		}
	}
	return formats, nil
}

// session holds the per-invocation server connection
type session struct {
	logger  *zap.SugaredLogger
	client  *sonarqube.Client
	service *service.QualityGateServiceImpl
}

func newSession(req *domain.ReportRequest, pm domain.ProgressManager) (*session, error) {
	logger, err := logging.NewLogger(req.LogLevel, os.Stderr)
	if err != nil {
		return nil, domain.NewConfigError("invalid log level", err)
	}

	client, err := sonarqube.NewClient(sonarqube.Options{
		ServerURL:         req.ServerURL,
		Token:             req.Token,
		ProjectKey:        req.ProjectKey,
		Branch:            req.Branch,
		Timeout:           time.Duration(req.TimeoutSeconds) * time.Second,
		RequestsPerSecond: req.RequestsPerSecond,
	}, logger)
	if err != nil {
		return nil, err
	}

	logger.Debugw("Session ready",
		"server", req.ServerURL,
		"project", req.ProjectKey,
		"branch", req.Branch,
		"config", req.ConfigPath)

	return &session{
		logger:  logger,
		client:  client,
		service: service.NewQualityGateServiceWithProgress(client, logger, pm),
	}, nil
}

func (s *session) Close() {
	if err := s.client.Close(); err != nil {
		s.logger.Debugw("Closing client", "error", err)
	}
	_ = s.logger.Sync()
}

// withHint adds a hint to the failure classes users can act on
func withHint(err error) error {
	switch {
	case domain.IsBadRequest(err):
		return fmt.Errorf("%w (check the server URL, project key and branch)", err)
	case domain.IsUnknownQualityGate(err):
		return fmt.Errorf("%w (the project is bound to a quality gate missing from the catalog)", err)
	default:
		return err
	}
}
