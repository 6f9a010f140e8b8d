package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single GET when no timeout is configured
const DefaultTimeout = 30 * time.Second

// Client fetches repository and issue resources by absolute URL using the
// go-github request pipeline. It never sends credentials.
type Client struct {
	client     *github.Client
	httpClient *http.Client
	timeout    time.Duration
	retry      *RetryConfig
	userAgent  string
	log        logger.FieldLogger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetryConfig sets the retry policy used for each GET
func WithRetryConfig(config *RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = config
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(log logger.FieldLogger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new fetch client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		retry:      DefaultRetryConfig(),
		log:        logger.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.client = github.NewClient(c.httpClient)
	if c.userAgent != "" {
		c.client.UserAgent = c.userAgent
	}

	return c
}

// GetRepositoryByURL fetches and decodes the repository resource at endpoint
func (c *Client) GetRepositoryByURL(ctx context.Context, endpoint string) (*github.Repository, error) {
	resource := fmt.Sprintf("repository %s", endpoint)

	var repo *github.Repository
	err := c.get(ctx, endpoint, resource, func() interface{} {
		repo = new(github.Repository)
		return repo
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// ListIssuesByURL fetches a single page of the issues collection at endpoint
func (c *Client) ListIssuesByURL(ctx context.Context, endpoint string) ([]*github.Issue, error) {
	resource := fmt.Sprintf("issues %s", endpoint)

	var issues []*github.Issue
	err := c.get(ctx, endpoint, resource, func() interface{} {
		issues = nil
		return &issues
	})
	if err != nil {
		return nil, err
	}

	// An empty JSON array decodes to a non-nil slice; nil means null or no body
	if issues == nil {
		return nil, NewGitHubError(ErrorTypeDecode, "issues response is not a JSON array", nil).withResource(resource)
	}

	return issues, nil
}

// get performs a GET with retry, decoding into the value produced by target.
// target is called once per attempt so a retried decode starts clean.
func (c *Client) get(ctx context.Context, endpoint, resource string, target func() interface{}) error {
	return WithRetry(ctx, func() error {
		reqCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		req, err := c.client.NewRequest(http.MethodGet, endpoint, nil)
		if err != nil {
			return &GitHubError{
				Type:     ErrorTypeValidation,
				Message:  fmt.Sprintf("cannot build request: %v", err),
				Cause:    err,
				Resource: resource,
			}
		}

		start := time.Now()
		resp, err := c.client.Do(reqCtx, req, target())

		fields := logger.Fields{
			"url":      endpoint,
			"duration": time.Since(start).String(),
		}
		if resp != nil {
			fields["status"] = resp.StatusCode
			if resp.Rate.Limit > 0 {
				fields["rate_remaining"] = resp.Rate.Remaining
			}
		}

		if err != nil {
			wrapped := WrapGitHubError(err, resource)
			c.log.WithFields(fields).WithField("error_type", wrapped.Type).Debug("Request failed")
			return wrapped
		}

		c.log.WithFields(fields).Debug("Fetched resource")
		return nil
	}, c.retry)
}

func (e *GitHubError) withResource(resource string) *GitHubError {
	e.Resource = resource
	return e
}
