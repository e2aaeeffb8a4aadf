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
	openAIClientName = "OpenAIClient"
	openAITracer     = "ai.openai"

	openAIDefaultBaseURL = "https://api.openai.com/v1"
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint.
// A configurable base URL keeps local OpenAI-compatible servers usable.
type OpenAIClient struct {
	config     *config.Config
	logger     *zap.Logger
	tracer     trace.Tracer
	httpClient *http.Client
	baseURL    string
}

func NewOpenAIClient(conf *config.Config, logger *zap.Logger) *OpenAIClient {
	baseURL := conf.AIConfig.BaseURL
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}

	return &OpenAIClient{
		config:     conf,
		logger:     logger.With(zap.String(logg.Layer, openAIClientName)),
		tracer:     otel.Tracer(openAITracer),
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
}

func (c *OpenAIClient) Name() string {
	return "openai"
}

type openAIRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens,omitempty"`
	Messages  []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (resp *entity.GenerationResponse, err error) {
	const op = "Generate"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.config.AIConfig.RequestTimeout)*time.Millisecond)
	defer cancel()

	ctx, step := tracing.StartSpan(ctx, c.tracer, logger, op,
		attribute.Int("prompt_len", len(prompt)))
	defer func() {
		step.End(err)
	}()

	reqBody := openAIRequest{
		Model:     c.config.AIConfig.Model,
		MaxTokens: c.config.AIConfig.MaxOutputTokens,
		Messages: []openAIMessage{
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "request_create_failed",
			apperr.MetaStage:    apperr.StageProvider,
			apperr.MetaProvider: c.Name(),
		})
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.AIConfig.APIKey)

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

	var apiResp openAIResponse

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeTransport, err, map[string]any{
			apperr.MetaReason:   "unmarshal_failed",
			apperr.MetaStage:    apperr.StageProvider,
			apperr.MetaProvider: c.Name(),
		})
	}

	if len(apiResp.Choices) == 0 {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeTransport, "response contained no choices")
	}

	return &entity.GenerationResponse{
		Content:      apiResp.Choices[0].Message.Content,
		TotalTokens:  apiResp.Usage.TotalTokens,
		FinishReason: apiResp.Choices[0].FinishReason,
	}, nil
}

func (c *OpenAIClient) HealthCheck(ctx context.Context) bool {
	const op = "HealthCheck"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.config.AIConfig.HealthTimeout)*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return false
	}

	req.Header.Set("Authorization", "Bearer "+c.config.AIConfig.APIKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Provider health check failed", zap.Error(err))

		return false
	}
	defer httpResp.Body.Close()

	return httpResp.StatusCode < http.StatusInternalServerError
}
