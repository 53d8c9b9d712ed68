package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIGateway implements Gateway using an OpenAI-compatible API.
// It works against OpenAI, OpenRouter, vLLM, and other compatible endpoints.
type OpenAIGateway struct {
	apiKey         string
	apiBase        string
	defaultModel   string
	embeddingModel string
	maxTokens      int
	temperature    float64
	httpClient     *http.Client
}

// NewOpenAIGateway creates a new OpenAI-compatible gateway client.
func NewOpenAIGateway(apiKey, apiBase, defaultModel, embeddingModel string, maxTokens int, temperature float64) *OpenAIGateway {
	if apiBase == "" {
		apiBase = "https://api.openai.com/v1"
	}
	if defaultModel == "" {
		defaultModel = "gpt-4o"
	}
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &OpenAIGateway{
		apiKey:         apiKey,
		apiBase:        strings.TrimSuffix(apiBase, "/"),
		defaultModel:   defaultModel,
		embeddingModel: embeddingModel,
		maxTokens:      maxTokens,
		temperature:    temperature,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// DefaultModel returns the configured default model.
func (g *OpenAIGateway) DefaultModel() string {
	return g.defaultModel
}

// Invoke sends a completion request and returns the generated message.
func (g *OpenAIGateway) Invoke(ctx context.Context, messages []Message) (*Reply, error) {
	body := map[string]any{
		"model":       g.defaultModel,
		"messages":    messages,
		"max_tokens":  g.maxTokens,
		"temperature": g.temperature,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, WrapErr(fmt.Errorf("marshal request: %w", err))
	}

	respBody, err := g.post(ctx, "/chat/completions", jsonBody)
	if err != nil {
		return nil, WrapErr(err)
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage Usage `json:"usage"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, WrapErr(fmt.Errorf("parse response: %w", err))
	}
	if len(apiResp.Choices) == 0 {
		return nil, WrapErr(fmt.Errorf("no choices in response"))
	}

	return &Reply{
		Content: apiResp.Choices[0].Message.Content,
		Usage:   apiResp.Usage,
	}, nil
}

// Embed computes an embedding vector for the input text.
func (g *OpenAIGateway) Embed(ctx context.Context, input string) ([]float32, error) {
	body := map[string]any{
		"model": g.embeddingModel,
		"input": input,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, WrapErr(fmt.Errorf("marshal request: %w", err))
	}

	respBody, err := g.post(ctx, "/embeddings", jsonBody)
	if err != nil {
		return nil, WrapErr(err)
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, WrapErr(fmt.Errorf("parse response: %w", err))
	}
	if len(apiResp.Data) == 0 {
		return nil, WrapErr(fmt.Errorf("no embedding in response"))
	}
	return apiResp.Data[0].Embedding, nil
}

func (g *OpenAIGateway) post(ctx context.Context, path string, jsonBody []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.apiBase+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
