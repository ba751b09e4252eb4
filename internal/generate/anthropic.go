package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"

	"mindtree/local-app/internal/contextwin"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
)

const (
	anthropicVersion = "2023-06-01"
	toolName         = "MindMapNodes"
	maxTokens        = 1024
	temperature      = 0.7
	maxRetries       = 2
)

// AnthropicClient calls the Anthropic messages API and forces a tool call whose input
// is the list of generated nodes.
type AnthropicClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
	logger     *log.Logger
}

// NewAnthropicClient builds a client from the generation settings in cfg. The API key
// is read from the environment variable named by cfg.GenerationAPIKeyEnv.
func NewAnthropicClient(cfg *model.Config, logger *log.Logger) (*AnthropicClient, error) {
	key := os.Getenv(cfg.GenerationAPIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoAPIKey, cfg.GenerationAPIKeyEnv)
	}
	timeout := time.Duration(cfg.GenerationTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnthropicClient{
		endpoint:   cfg.GenerationEndpoint,
		model:      cfg.GenerationModel,
		apiKey:     key,
		httpClient: &http.Client{Timeout: timeout},
		backoff:    500 * time.Millisecond,
		logger:     logger,
	}, nil
}

type messagesRequest struct {
	Model       string     `json:"model"`
	MaxTokens   int        `json:"max_tokens"`
	Temperature float64    `json:"temperature"`
	System      string     `json:"system"`
	Messages    []message  `json:"messages"`
	Tools       []tool     `json:"tools"`
	ToolChoice  toolChoice `json:"tool_choice"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema interface{} `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type messagesResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

var nodesSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"nodes": map[string]interface{}{
			"type":        "array",
			"description": "生成されたノードの配列",
			"items": map[string]interface{}{
				"type":        "string",
				"description": "マインドマップのノードの内容",
			},
		},
	},
	"required": []string{"nodes"},
}

// statusError is returned for non-2xx responses.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("generation API returned %d: %s", e.code, e.message)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// Generate sends the request, retrying on rate limits and server errors.
func (c *AnthropicClient) Generate(ctx context.Context, req Request) (Response, error) {
	count := ClampCount(req.Count)
	body, err := json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      contextwin.Prompt(count, req.Context, req.SelectedText),
		Messages:    []message{{Role: "user", Content: req.Prompt}},
		Tools: []tool{{
			Name:        toolName,
			Description: "マインドマップに追加するノードを返す",
			InputSchema: nodesSchema,
		}},
		ToolChoice: toolChoice{Type: "tool", Name: toolName},
	})
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode generation request: %w", err)
	}

	c.logger.Info(ctx, "Requesting node generation", log.Fields{"model": c.model, "count": count})

	var nodes []string
	for attempt := 0; ; attempt++ {
		nodes, err = c.send(ctx, body)
		var se *statusError
		if err == nil || attempt >= maxRetries || !errors.As(err, &se) || !se.retryable() {
			break
		}
		c.logger.Warn(ctx, "Retrying node generation", log.Fields{"attempt": attempt + 1, "error": err})
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-time.After(c.backoff * time.Duration(attempt+1)):
		}
	}
	if err != nil {
		c.logger.Error(ctx, "Node generation failed", log.Fields{"error": err})
		return Response{}, err
	}

	nodes = Truncate(nodes, count)
	if len(nodes) == 0 {
		return Response{}, ErrEmptyResult
	}
	c.logger.Info(ctx, "Nodes generated", log.Fields{"count": len(nodes)})
	return Response{Nodes: nodes}, nil
}

func (c *AnthropicClient) send(ctx context.Context, body []byte) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build generation request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		var apiErr apiError
		msg := string(data)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return nil, &statusError{code: resp.StatusCode, message: msg}
	}

	var parsed messagesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}
	for _, block := range parsed.Content {
		if block.Type != "tool_use" || block.Name != toolName {
			continue
		}
		var input struct {
			Nodes []string `json:"nodes"`
		}
		if err := json.Unmarshal(block.Input, &input); err != nil {
			return nil, fmt.Errorf("failed to decode generated nodes: %w", err)
		}
		return input.Nodes, nil
	}
	return nil, fmt.Errorf("generation response has no %s tool call", toolName)
}
