package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// FetchError reports a failed feed fetch together with the endpoint it was
// aimed at. StatusCode is zero for transport-level failures.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feed fetch %s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("feed fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches raw feed documents over HTTP. It owns the timeout and the
// politeness ceiling on upstream calls; retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewClient returns a feed client with the given per-request timeout and an
// upper bound of requestsPerMinute calls to the upstream.
func NewClient(timeout time.Duration, requestsPerMinute int, logger *logrus.Logger) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 6
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		logger:     logger,
	}
}

// Fetch performs a single GET of the feed URL and returns the raw response
// body. Any failure comes back as a *FetchError; the body is never cached
// here.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Endpoint: feedURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &FetchError{Endpoint: feedURL, Err: err}
	}
	req.Header.Set("User-Agent", "CostaBlanca Property Feed/1.0")
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("endpoint", feedURL).Error("Feed request failed")
		return nil, &FetchError{Endpoint: feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{
			"endpoint": feedURL,
			"status":   resp.StatusCode,
		}).Error("Feed returned non-2xx status")
		return nil, &FetchError{Endpoint: feedURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Endpoint: feedURL, Err: err}
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint": feedURL,
		"bytes":    len(body),
	}).Info("Fetched feed document")

	return body, nil
}
