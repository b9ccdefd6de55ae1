// Package oddsfeed reads upcoming matchups and bookmaker prices from the odds feed provider.
package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-lab/internal/httpclient"
	"github.com/yourusername/value-lab/internal/metrics"
	"github.com/yourusername/value-lab/internal/models"
)

const maxErrorBody = 512

// Provider supplies a feed snapshot of upcoming matchups
type Provider interface {
	FetchMatchups(ctx context.Context) ([]models.Matchup, error)
}

// ClientConfig holds the feed endpoint settings
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Sport   string
	Regions string
}

// Client fetches head-to-head decimal odds for one sport
type Client struct {
	cfg    ClientConfig
	http   *httpclient.RateLimitedHTTPClient
	logger *logrus.Entry
}

// NewClient creates a feed client over the shared HTTP transport
func NewClient(cfg ClientConfig, httpClient *httpclient.RateLimitedHTTPClient, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger.WithFields(logrus.Fields{"component": "odds_feed", "sport": cfg.Sport}),
	}
}

// Sport returns the configured sport key
func (c *Client) Sport() string {
	return c.cfg.Sport
}

// FetchMatchups returns the current feed snapshot. A transport failure, a
// non-2xx status or an empty list is reported as ErrFeedUnavailable.
func (c *Client) FetchMatchups(ctx context.Context) ([]models.Matchup, error) {
	start := time.Now()
	matchups, err := c.fetch(ctx)
	outcome := "success"
	if err != nil {
		outcome = "error"
		c.logger.WithError(err).Warn("Odds feed request failed")
	}
	metrics.RecordFeedRequest(c.cfg.Sport, outcome, time.Since(start).Seconds())
	return matchups, err
}

func (c *Client) fetch(ctx context.Context) ([]models.Matchup, error) {
	endpoint, err := c.oddsURL()
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrFeedUnavailable, redact(err.Error(), c.cfg.APIKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", models.ErrFeedUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var matchups []models.Matchup
	if err := json.NewDecoder(resp.Body).Decode(&matchups); err != nil {
		return nil, fmt.Errorf("%w: failed to decode feed: %v", models.ErrFeedUnavailable, err)
	}
	if len(matchups) == 0 {
		return nil, fmt.Errorf("%w: no matchups for %s", models.ErrFeedUnavailable, c.cfg.Sport)
	}

	c.logger.WithField("matchups", len(matchups)).Debug("Fetched odds feed")
	return matchups, nil
}

func (c *Client) oddsURL() (string, error) {
	base, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid odds feed url: %w", err)
	}
	base.Path += "/sports/" + url.PathEscape(c.cfg.Sport) + "/odds"

	q := url.Values{}
	q.Set("apiKey", c.cfg.APIKey)
	q.Set("regions", c.cfg.Regions)
	q.Set("markets", "h2h")
	q.Set("oddsFormat", "decimal")
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// redact keeps the API key out of errors that echo the request URL
func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "REDACTED")
}
