// Package sonarqube implements domain.QualityGateFetcher over the SonarQube web API
package sonarqube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/internal/version"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	qualityGatesPath       = "api/qualitygates/list"
	qualityGateDetailsPath = "api/qualitygates/show"
	projectPath            = "api/qualitygates/get_by_project"
	projectStatusPath      = "api/qualitygates/project_status"
	metricPath             = "api/measures/component"

	// DefaultTimeout bounds a single request
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 10 << 20
)

// Options configures a Client
type Options struct {
	ServerURL         string
	Token             string
	ProjectKey        string
	Branch            string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client fetches raw quality gate documents for a single project
type Client struct {
	baseURL    *url.URL
	token      string
	projectKey string
	branch     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger
}

// NewClient validates the server address and builds a client.
// A zero RequestsPerSecond disables pacing.
func NewClient(opts Options, logger *zap.SugaredLogger) (*Client, error) {
	base, err := parseServerURL(opts.ServerURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.ProjectKey) == "" {
		return nil, domain.NewBadRequestError("project key is required", nil)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		baseURL:    base,
		token:      opts.Token,
		projectKey: opts.ProjectKey,
		branch:     opts.Branch,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}, nil
}

func parseServerURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.NewBadRequestError("server URL is required", nil)
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, domain.NewBadRequestError(fmt.Sprintf("invalid server URL: %s", raw), err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, domain.NewBadRequestError(fmt.Sprintf("invalid server URL scheme: %s", raw), nil)
	}
	if base.Host == "" {
		return nil, domain.NewBadRequestError(fmt.Sprintf("invalid server URL host: %s", raw), nil)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base, nil
}

// FetchQualityGates implements domain.QualityGateFetcher
func (c *Client) FetchQualityGates(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, qualityGatesPath, nil, qualityGatesDocSchema)
}

// FetchQualityGateDetails implements domain.QualityGateFetcher.
// Gates without an id are looked up by name.
func (c *Client) FetchQualityGateDetails(ctx context.Context, gate domain.QualityGate) (json.RawMessage, error) {
	query := url.Values{}
	if gate.ID != "" && gate.ID != gate.Name {
		query.Set("id", gate.ID)
	} else {
		query.Set("name", gate.Name)
	}
	return c.get(ctx, qualityGateDetailsPath, query, qualityGateDetailsDocSchema)
}

// FetchProject implements domain.QualityGateFetcher
func (c *Client) FetchProject(ctx context.Context) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("project", c.projectKey)
	return c.get(ctx, projectPath, query, projectDocSchema)
}

// FetchQualityGateStatus implements domain.QualityGateFetcher
func (c *Client) FetchQualityGateStatus(ctx context.Context) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("projectKey", c.projectKey)
	if c.branch != "" {
		query.Set("branch", c.branch)
	}
	return c.get(ctx, projectStatusPath, query, qualityGateStatusDocSchema)
}

// FetchMetric implements domain.QualityGateFetcher
func (c *Client) FetchMetric(ctx context.Context, metricKey string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("component", c.projectKey)
	query.Set("metricKeys", metricKey)
	query.Set("additionalFields", "metrics")
	if c.branch != "" {
		query.Set("branch", c.branch)
	}
	return c.get(ctx, metricPath, query, metricDocSchema)
}

// Close releases idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, schema *gojsonschema.Schema) (json.RawMessage, error) {
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting to call %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, domain.NewBadRequestError(fmt.Sprintf("cannot build request for %s", path), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.token != "" {
		req.SetBasicAuth(c.token, "")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, domain.NewServerError(fmt.Sprintf("request to %s failed", path), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.NewServerError(fmt.Sprintf("reading %s response", path), err)
	}

	c.logger.Debugw("SonarQube request",
		"path", path, "status", resp.StatusCode, "elapsed", time.Since(started))

	if err := statusError(path, resp); err != nil {
		return nil, err
	}

	if err := validateDocument(path, body, schema); err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// statusError maps non-2xx responses: 400 is the caller's fault, anything else the server's
func statusError(path string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg := fmt.Sprintf("%s returned HTTP %d", path, resp.StatusCode)
	if resp.StatusCode == http.StatusBadRequest {
		return domain.NewBadRequestError(msg, nil)
	}
	return domain.NewServerError(msg, nil)
}

func validateDocument(path string, body []byte, schema *gojsonschema.Schema) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return domain.NewServerError(fmt.Sprintf("malformed %s response", path), err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return domain.NewServerError(
			fmt.Sprintf("unexpected %s response: %s", path, strings.Join(details, "; ")), nil)
	}
	return nil
}
