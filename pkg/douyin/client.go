package douyin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/logger"
)

// Referer is sent with every request so the web API accepts the session
const Referer = "https://www.douyin.com/"

// Transport-level retries on connection failures. Responses are never retried.
const connectionRetries = 3

// ClientOptions configures the shared HTTP session
type ClientOptions struct {
	Cookie    string
	UserAgent string
	// Timeout bounds listing and redirect requests. Downloads are only
	// bounded by their context. Zero means no limit.
	Timeout time.Duration
	// Transport overrides the round tripper, mostly for tests
	Transport http.RoundTripper
}

// Client is the process-wide HTTP session. It carries the cookie and
// browser identity headers and is safe for concurrent use.
type Client struct {
	http      *resty.Client
	userAgent string
	timeout   time.Duration
	logger    logger.Logger
}

// NewClient creates the shared session client
func NewClient(opts ClientOptions, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	rc := resty.New().
		SetRetryCount(connectionRetries).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Referer", Referer)
	if opts.Cookie != "" {
		rc.SetHeader("Cookie", opts.Cookie)
	}
	if opts.Transport != nil {
		rc.SetTransport(opts.Transport)
	}

	return &Client{http: rc, userAgent: opts.UserAgent, timeout: opts.Timeout, logger: log}
}

func (c *Client) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// UserAgent returns the identity string signatures must be computed for
func (c *Client) UserAgent() string {
	return c.userAgent
}

// GetJSON fetches url and decodes the JSON body into target
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		c.logger.WithError(err).DebugWithFields("HTTP request failed", map[string]interface{}{"url": url})
		return errs.Wrap(errs.ErrorTypeNetwork, "request failed", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode(),
		"duration": time.Since(start),
	})

	if err := checkStatus(resp.StatusCode()); err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body(), target); err != nil {
		preview := string(resp.Body())
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.WarnWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"body_preview": preview,
		})
		return errs.Wrap(errs.ErrorTypeParsing, "failed to parse JSON", err)
	}
	return nil
}

// FinalURL issues a GET, follows redirects and returns the URL the
// request ended on
func (c *Client) FinalURL(ctx context.Context, url string) (string, error) {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeNetwork, "request failed", err)
	}
	defer resp.RawBody().Close()

	if err := checkStatus(resp.StatusCode()); err != nil {
		return "", err
	}
	return resp.RawResponse.Request.URL.String(), nil
}

// Download streams the body at url into w and returns the bytes written.
// Non-2xx responses are returned as typed errors carrying the status.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	resp, err := c.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeNetwork, "request failed", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if err := checkStatus(resp.StatusCode()); err != nil {
		return 0, err
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, errs.Wrap(errs.ErrorTypeNetwork, "failed to read response body", err)
	}
	return n, nil
}

func checkStatus(code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	return errs.WithCode(errs.TypeForStatus(code), fmt.Sprintf("unexpected status code: %d", code), code)
}
