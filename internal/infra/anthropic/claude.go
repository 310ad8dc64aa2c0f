package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"jarvis/internal/domain"
	"jarvis/internal/infra"
)

const (
	DefaultModel = "claude-sonnet-4-20250514"
	noReply      = "No reply"
)

// ClaudeClient relays prompts to the Anthropic messages API.
type ClaudeClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	retry      infra.RetryConfig
}

func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return NewClaudeClientWithURL(apiKey, model, "https://api.anthropic.com/v1")
}

func NewClaudeClientWithURL(apiKey, model, baseURL string) *ClaudeClient {
	if model == "" {
		model = DefaultModel
	}
	return &ClaudeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		retry:      infra.DefaultRetryConfig(),
	}
}

func (c *ClaudeClient) SetRetry(cfg infra.RetryConfig) {
	c.retry = cfg
}

func (c *ClaudeClient) Name() string {
	return "anthropic:" + c.model
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ClaudeClient) SendPrompt(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", domain.NewRelayError(domain.RelayMisconfigured, "Server not configured with ANTHROPIC_API_KEY", nil)
	}

	bodyBytes, err := json.Marshal(request{
		Model:       c.model,
		MaxTokens:   600,
		Temperature: 0.7,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", domain.NewRelayError(domain.RelayMalformed, "encoding request", err)
	}

	var result response
	retryErr := infra.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
		if err != nil {
			return infra.Permanent(domain.NewRelayError(domain.RelayMisconfigured, "creating request", err))
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return domain.NewRelayError(domain.RelayNetwork, err.Error(), err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			relayErr := &domain.RelayError{
				Kind:       domain.RelayUpstream,
				StatusCode: resp.StatusCode,
				Message:    upstreamMessage(respBody),
			}
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return relayErr
			}
			return infra.Permanent(relayErr)
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return infra.Permanent(domain.NewRelayError(domain.RelayMalformed, "decoding response", err))
		}

		return nil
	})
	if retryErr != nil {
		var relayErr *domain.RelayError
		if errors.As(retryErr, &relayErr) {
			return "", relayErr
		}
		return "", domain.NewRelayError(domain.RelayNetwork, retryErr.Error(), retryErr)
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return noReply, nil
	}

	return sb.String(), nil
}

func upstreamMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}
