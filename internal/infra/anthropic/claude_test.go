package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jarvis/internal/domain"
	"jarvis/internal/infra/anthropic"
)

func TestClaudeClient_SendPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key: got %q", r.Header.Get("x-api-key"))
		}

		response := map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "Tomorrow looks sunny."},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "claude-test", server.URL)

	reply, err := client.SendPrompt(context.Background(), "what's the weather tomorrow?")
	if err != nil {
		t.Fatalf("SendPrompt error: %v", err)
	}

	if reply != "Tomorrow looks sunny." {
		t.Errorf("reply: got %q", reply)
	}
}

func TestClaudeClient_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "claude-test", server.URL)

	reply, err := client.SendPrompt(context.Background(), "hello")
	if err != nil {
		t.Fatalf("SendPrompt error: %v", err)
	}
	if reply != "No reply" {
		t.Errorf("reply: got %q, want No reply", reply)
	}
}

func TestClaudeClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens too large"}}`))
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "claude-test", server.URL)

	_, err := client.SendPrompt(context.Background(), "hello")

	var relayErr *domain.RelayError
	if !errors.As(err, &relayErr) {
		t.Fatalf("error: got %v, want *domain.RelayError", err)
	}
	if relayErr.StatusCode != http.StatusBadRequest || relayErr.Message != "max_tokens too large" {
		t.Errorf("relay error: got status=%d message=%q", relayErr.StatusCode, relayErr.Message)
	}
}
