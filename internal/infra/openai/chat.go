package openai

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
	DefaultModel = "gpt-4o-mini"
	noReply      = "No reply"
)

// ChatClient relays prompts to the OpenAI chat completions API.
type ChatClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	retry      infra.RetryConfig
}

func NewChatClient(apiKey, model string) *ChatClient {
	return NewChatClientWithURL(apiKey, model, "https://api.openai.com/v1")
}

func NewChatClientWithURL(apiKey, model, baseURL string) *ChatClient {
	if model == "" {
		model = DefaultModel
	}
	return &ChatClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		retry:      infra.DefaultRetryConfig(),
	}
}

// SetRetry overrides the backoff used between attempts.
func (c *ChatClient) SetRetry(cfg infra.RetryConfig) {
	c.retry = cfg
}

func (c *ChatClient) Name() string {
	return "openai:" + c.model
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ChatClient) SendPrompt(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", domain.NewRelayError(domain.RelayMisconfigured, "Server not configured with OPENAI_API_KEY", nil)
	}

	bodyBytes, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   600,
		Temperature: 0.7,
	})
	if err != nil {
		return "", domain.NewRelayError(domain.RelayMalformed, "encoding request", err)
	}

	var result chatResponse
	retryErr := infra.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
		if err != nil {
			return infra.Permanent(domain.NewRelayError(domain.RelayMisconfigured, "creating request", err))
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return domain.NewRelayError(domain.RelayNetwork, err.Error(), err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return domain.NewRelayError(domain.RelayNetwork, "reading response", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
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

		if err := json.Unmarshal(respBody, &result); err != nil {
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

	if len(result.Choices) == 0 {
		return noReply, nil
	}
	if text := result.Choices[0].Message.Content; text != "" {
		return text, nil
	}
	if text := result.Choices[0].Text; text != "" {
		return text, nil
	}
	return noReply, nil
}

func upstreamMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response body"
	}
	return msg
}
