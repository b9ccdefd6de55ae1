package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-lab/internal/httpclient"
	"github.com/yourusername/value-lab/internal/metrics"
	"github.com/yourusername/value-lab/internal/models"
)

// Analyzer turns a prompt into free text
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// GeminiConfig holds the generateContent endpoint settings
type GeminiConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// GeminiClient calls a generateContent-style REST endpoint
type GeminiClient struct {
	cfg    GeminiConfig
	http   *httpclient.RateLimitedHTTPClient
	logger *logrus.Entry
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// NewGeminiClient creates an analysis client over the shared HTTP transport
func NewGeminiClient(cfg GeminiConfig, httpClient *httpclient.RateLimitedHTTPClient, logger *logrus.Logger) *GeminiClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &GeminiClient{
		cfg:    cfg,
		http:   httpClient,
		logger: logger.WithFields(logrus.Fields{"component": "analysis", "model": cfg.Model}),
	}
}

// Analyze sends the prompt and returns the concatenated text of the first
// candidate. Failures are reported as ErrAnalysisUnavailable.
func (c *GeminiClient) Analyze(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.generate(ctx, prompt)
	if err != nil {
		metrics.RecordAnalysisRequest("error")
		c.logger.WithError(err).Warn("Analysis request failed")
		return "", err
	}

	metrics.RecordAnalysisRequest("success")
	c.logger.WithFields(logrus.Fields{
		"duration": time.Since(start),
		"chars":    len(text),
	}).Info("Analysis generated")
	return text, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrAnalysisUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", models.ErrAnalysisUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", models.ErrAnalysisUnavailable, err)
	}

	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", models.ErrAnalysisUnavailable)
	}

	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: empty candidate", models.ErrAnalysisUnavailable)
	}
	return b.String(), nil
}
