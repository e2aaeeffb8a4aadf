package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"testforge/internal/config"
	"testforge/internal/entity"
	"testforge/pkg/apperr"
	"testforge/pkg/logg"
	"testforge/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	anthropicClientName = "AnthropicClient"
	anthropicTracer     = "ai.anthropic"

	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// AnthropicClient talks to the Anthropic messages API. It satisfies
// ports.TextGenerator; provider selection happens once in bootstrap.
type AnthropicClient struct {
	config     *config.Config
	logger     *zap.Logger
	tracer     trace.Tracer
	httpClient *http.Client
	baseURL    string
}

func NewAnthropicClient(conf *config.Config, logger *zap.Logger) *AnthropicClient {
	baseURL := conf.AIConfig.BaseURL
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}

	return &AnthropicClient{
		config:     conf,
		logger:     logger.With(zap.String(logg.Layer, anthropicClientName)),
		tracer:     otel.Tracer(anthropicTracer),
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
}

func (c *AnthropicClient) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (resp *entity.GenerationResponse, err error) {
	const op = "Generate"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.config.AIConfig.RequestTimeout)*time.Millisecond)
	defer cancel()

	ctx, step := tracing.StartSpan(ctx, c.tracer, logger, op,
		attribute.Int("prompt_len", len(prompt)))
	defer func() {
		step.End(err)
	}()

	logger.Debug("Sending generation request", zap.Int("prompt_len", len(prompt)))

	reqBody := anthropicRequest{
		Model:     c.config.AIConfig.Model,
		MaxTokens: c.config.AIConfig.MaxOutputTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "marshal_failed",
			apperr.MetaStage:    apperr.StageProvider,
			apperr.MetaProvider: c.Name(),
		})
	}

	step.AddEvent("sending HTTP request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "request_create_failed",
			apperr.MetaStage:    apperr.StageProvider,
			apperr.MetaProvider: c.Name(),
		})
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.AIConfig.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeTransport, err, map[string]any{
			apperr.MetaReason:   "http_request_failed",
			apperr.MetaStage:    apperr.StageProvider,
			apperr.MetaProvider: c.Name(),
		})
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeTransport, err, map[string]any{
			apperr.MetaReason:   "read_body_failed",
			apperr.MetaStage:    apperr.StageProvider,
			apperr.MetaProvider: c.Name(),
		})
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, apperr.Wrap(op, apperr.CodeTransport,
			fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(body)), map[string]any{
				apperr.MetaReason:   "api_error",
				apperr.MetaStage:    apperr.StageProvider,
				apperr.MetaProvider: c.Name(),
				"status_code":       httpResp.StatusCode,
			})
	}

	step.AddEvent("unmarshaling response")

	var apiResp anthropicResponse

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeTransport, err, map[string]any{
			apperr.MetaReason:   "unmarshal_failed",
			apperr.MetaStage:    apperr.StageProvider,
			apperr.MetaProvider: c.Name(),
		})
	}

	content := ""

	for _, block := range apiResp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &entity.GenerationResponse{
		Content:      content,
		TotalTokens:  apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens,
		FinishReason: apiResp.StopReason,
	}, nil
}

// HealthCheck probes connectivity with a materially shorter timeout than
// generation calls so a dead endpoint never burns the attempt budget.
func (c *AnthropicClient) HealthCheck(ctx context.Context) bool {
	const op = "HealthCheck"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.config.AIConfig.HealthTimeout)*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return false
	}

	req.Header.Set("x-api-key", c.config.AIConfig.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Provider health check failed", zap.Error(err))

		return false
	}
	defer httpResp.Body.Close()

	return httpResp.StatusCode < http.StatusInternalServerError
}
