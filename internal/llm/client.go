package llm

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

const (
	defaultBaseURL    = "https://api.openai.com"
	maxErrorBodyBytes = 2048
)

// Config OpenAI 兼容接口配置
type Config struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	Timeout        time.Duration
}

// Client OpenAI 兼容的 chat/completions 与 embeddings 客户端
type Client struct {
	baseURL        string
	apiKey         string
	embeddingModel string
	client         *http.Client
}

// NewClient 创建客户端
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		embeddingModel: cfg.EmbeddingModel,
		client:         &http.Client{Timeout: timeout},
	}
}

type chatPayload struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type embeddingPayload struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Complete 调用 /v1/chat/completions
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	var resp chatResponse
	err := c.post(ctx, "/v1/chat/completions", chatPayload{
		Model:       req.Model,
		Temperature: req.Temperature,
		Messages:    req.Messages,
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed 调用 /v1/embeddings
func (c *Client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	var resp embeddingResponse
	if err := c.post(ctx, "/v1/embeddings", embeddingPayload{Model: c.embeddingModel, Input: inputs}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrEmptyResponse, len(resp.Data), len(inputs))
	}

	vectors := make([][]float32, len(inputs))
	for i, d := range resp.Data {
		idx := d.Index
		if idx < 0 || idx >= len(vectors) {
			idx = i
		}
		if vectors[idx] != nil {
			return nil, fmt.Errorf("%w: duplicate embedding index %d", ErrEmptyResponse, idx)
		}
		vectors[idx] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: missing embedding for input %d", ErrEmptyResponse, i)
		}
	}
	return vectors, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status=%s body=%q", ErrUnauthorized, resp.Status, readErrorBody(resp))
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: body=%q", ErrRateLimited, readErrorBody(resp))
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status=%s", ErrUnavailable, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("llm request failed: status=%s body=%q", resp.Status, readErrorBody(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode llm response: %w", err)
	}
	return nil
}

func readErrorBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return strings.TrimSpace(string(body))
}
