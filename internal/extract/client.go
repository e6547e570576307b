// Package extract wraps the external text/HTML-to-structured-data service
// (an LLM messages API). All callers in the process share one client so the
// minimum inter-request interval holds across concurrent jobs.
package extract

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/icetimehq/icetime-api/pkg/config"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

// Extractor turns a prompt into the service's raw text reply. Adapters own
// retry policy; the client never retries on its own because prompt
// idempotence differs per adapter.
type Extractor interface {
	Extract(ctx context.Context, system, prompt string) (string, error)
}

// Client calls the Anthropic-style messages endpoint.
type Client struct {
	http      *resty.Client
	model     string
	maxTokens int
	limiter   *rate.Limiter
	logger    *zap.Logger
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient builds the shared extraction client. The limiter admits one
// request per MinRequestInterval; a caller arriving early blocks until the
// interval since the previous request has elapsed.
func NewClient(cfg config.ExtractionConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", "2023-06-01").
		SetHeader("content-type", "application/json")

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	return &Client{
		http:      httpClient,
		model:     cfg.Model,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(rate.Every(cfg.MinRequestInterval), 1),
		logger:    logger,
	}
}

// Extract sends one user message (plus optional system prompt) and returns
// the first text block of the reply.
func (c *Client) Extract(ctx context.Context, system, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExtractionService.Code, appErrors.ErrExtractionService.Status, "rate limit wait interrupted")
	}

	body := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	}

	var parsed messagesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		SetError(&parsed).
		Post("/v1/messages")
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExtractionService.Code, appErrors.ErrExtractionService.Status, "extraction request failed")
	}
	if resp.IsError() {
		msg := fmt.Sprintf("extraction service returned %d", resp.StatusCode())
		if parsed.Error != nil {
			msg = fmt.Sprintf("%s: %s", msg, parsed.Error.Message)
		}
		c.logger.Warn("extraction call failed",
			zap.Int("status", resp.StatusCode()),
			zap.String("model", c.model),
		)
		return "", appErrors.Clone(appErrors.ErrExtractionService, msg)
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return "", appErrors.Clone(appErrors.ErrExtractionService, "extraction response contained no text content")
	}

	return parsed.Content[0].Text, nil
}
