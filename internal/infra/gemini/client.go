package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"google.golang.org/genai"

	"jarvis/internal/domain"
)

const (
	DefaultModel = "gemini-2.0-flash"
	noReply      = "No reply"
)

// Client relays prompts to Gemini through the genai SDK.
type Client struct {
	genai *genai.Client
	model string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	return NewClientWithURL(ctx, apiKey, model, "")
}

// NewClientWithURL points the SDK at baseURL; an empty baseURL keeps the
// public endpoint.
func NewClientWithURL(ctx context.Context, apiKey, model, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, domain.NewRelayError(domain.RelayMisconfigured, "Server not configured with GEMINI_API_KEY", nil)
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{genai: client, model: model}, nil
}

func (c *Client) Name() string {
	return "gemini:" + c.model
}

func (c *Client) SendPrompt(ctx context.Context, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 600,
	})
	if err != nil {
		return "", classify(err)
	}

	// A blocked or empty candidate is still a successful call.
	if text := resp.Text(); text != "" {
		return text, nil
	}
	return noReply, nil
}

func classify(err error) *domain.RelayError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return upstream(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return upstream(*apiErrPtr, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewRelayError(domain.RelayNetwork, err.Error(), err)
	}

	return domain.NewRelayError(domain.RelayMalformed, err.Error(), err)
}

func upstream(apiErr genai.APIError, err error) *domain.RelayError {
	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Status
	}
	return &domain.RelayError{
		Kind:       domain.RelayUpstream,
		StatusCode: apiErr.Code,
		Message:    msg,
		Err:        err,
	}
}
