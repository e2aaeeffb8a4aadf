package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"testforge/internal/config"
	"testforge/internal/entity"
	"testforge/internal/ports"
	"testforge/pkg/apperr"
	"testforge/pkg/logg"
	"testforge/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	coordinatorName   = "GenerationCoordinator"
	coordinatorTracer = "generation.coordinator"
)

// PromptBuilder renders the initial generation prompt and, after a failed
// attempt, the repair prompt for the latest failure list.
type PromptBuilder interface {
	BuildGenerationPrompt(genCtx *entity.GenerationContext) string
	BuildRepairPrompt(genCtx *entity.GenerationContext, failures []string) string
}

// ResponseParser extracts and classifies code blocks from raw model output.
type ResponseParser interface {
	Parse(rawText, pageObjectHint, testHint string) *entity.GenerationOutcome
}

// CodeValidator runs the structural check battery against parsed artifacts.
type CodeValidator interface {
	Validate(pageObjectCode, testCode, pageObjectClassName, testClassName string) entity.ValidationResult
}

// Coordinator drives the AI generation loop: health check, bounded attempts
// with repair prompts, and a deterministic fallback when the provider is
// disabled, unreachable, or out of retries. Attempts are strictly sequential
// because each repair prompt depends on the previous attempt's validation.
// The coordinator holds no mutable state across invocations, so independent
// generation requests may run concurrently.
type Coordinator struct {
	config    *config.Config
	logger    *zap.Logger
	tracer    trace.Tracer
	provider  ports.TextGenerator
	prompts   PromptBuilder
	parser    ResponseParser
	validator CodeValidator
	fallback  ports.FallbackGenerator
}

type Params struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	Provider  ports.TextGenerator
	Prompts   PromptBuilder
	Parser    ResponseParser
	Validator CodeValidator
	Fallback  ports.FallbackGenerator
}

func NewCoordinator(params Params) *Coordinator {
	return &Coordinator{
		config:    params.Config,
		logger:    params.Logger.With(zap.String(logg.Layer, coordinatorName)),
		tracer:    otel.Tracer(coordinatorTracer),
		provider:  params.Provider,
		prompts:   params.Prompts,
		parser:    params.Parser,
		validator: params.Validator,
		fallback:  params.Fallback,
	}
}

func (c *Coordinator) Generate(ctx context.Context, genCtx *entity.GenerationContext) (outcome *entity.GenerationOutcome, err error) {
	const op = "Generate"
	logger := c.logger.With(zap.String(logg.Operation, op), zap.String(logg.Framework, genCtx.Framework))

	ctx, step := tracing.StartSpan(ctx, c.tracer, logger, op,
		attribute.String("framework", genCtx.Framework),
		attribute.Bool("ai_enabled", c.config.AIConfig.Enabled))
	defer func() {
		step.End(err)
	}()

	if genCtx.Scenario == nil {
		return nil, apperr.InvalidReqError(op, "scenario", errors.New("generation context has no scenario"))
	}

	if !c.config.AIConfig.Enabled {
		logger.Info("AI generation disabled, using template generator")
		step.AddEvent("ai disabled, falling back")

		return c.fallback.Generate(ctx, genCtx), nil
	}

	if cancelled := ctx.Err(); cancelled != nil {
		return c.cancelledOutcome(op, cancelled)
	}

	if !c.provider.HealthCheck(ctx) {
		logger.Warn("Provider health check failed, using template generator",
			zap.String(logg.Provider, c.provider.Name()))
		step.AddEvent("provider unhealthy, falling back")

		return c.fallback.Generate(ctx, genCtx), nil
	}

	outcome, err = c.runAttempts(ctx, logger, step, genCtx)
	if err != nil || outcome != nil {
		return outcome, err
	}

	// Retry budget exhausted. Never an error: the caller receives whatever
	// the deterministic path produces.
	if cancelled := ctx.Err(); cancelled != nil {
		return c.cancelledOutcome(op, cancelled)
	}

	logger.Warn("AI generation exhausted its retries, using template generator",
		zap.Int("max_retries", c.config.AIConfig.MaxRetries))
	step.AddEvent("retries exhausted, falling back")

	return c.fallback.Generate(ctx, genCtx), nil
}

// runAttempts executes the bounded retry loop. It returns (nil, nil) when
// every attempt was consumed without success, leaving the fallback decision
// to the caller. The failure list carried between iterations always holds
// only the most recent attempt's findings.
func (c *Coordinator) runAttempts(
	ctx context.Context,
	logger *zap.Logger,
	step *tracing.Span,
	genCtx *entity.GenerationContext,
) (*entity.GenerationOutcome, error) {
	const op = "runAttempts"

	var failures []string

	for attempt := 1; attempt <= c.config.AIConfig.MaxRetries; attempt++ {
		if cancelled := ctx.Err(); cancelled != nil {
			return c.cancelledOutcome(op, cancelled)
		}

		attemptLogger := logger.With(zap.Int(logg.Attempt, attempt))

		var promptText string

		if attempt == 1 {
			promptText = c.prompts.BuildGenerationPrompt(genCtx)
		} else {
			promptText = c.prompts.BuildRepairPrompt(genCtx, failures)
		}

		step.AddEvent("sending generation request", attribute.Int("attempt", attempt))

		resp, err := c.provider.Generate(ctx, promptText)
		if err != nil {
			// Transport errors are recoverable: record a synthetic failure
			// and spend a retry.
			failures = []string{fmt.Sprintf("attempt %d failed with a provider error: %v", attempt, err)}
			attemptLogger.Warn("Provider call failed", zap.Error(err))

			continue
		}

		attemptLogger.Debug("Provider responded",
			zap.Int("total_tokens", resp.TotalTokens),
			zap.String("finish_reason", resp.FinishReason))

		parsed := c.parser.Parse(resp.Content, genCtx.PageObjectClassName, genCtx.TestClassName)
		if !parsed.Success {
			failures = []string{parsed.ErrorMessage}
			attemptLogger.Warn("Response parsing failed", zap.String("parse_error", parsed.ErrorMessage))

			continue
		}

		result := c.validator.Validate(parsed.PageObjectCode, parsed.TestCode,
			genCtx.PageObjectClassName, genCtx.TestClassName)
		if result.IsValid {
			attemptLogger.Info("Generated code passed validation")
			step.AddEvent("generation succeeded", attribute.Int("attempt", attempt))

			parsed.Framework = genCtx.Framework
			parsed.CompletedAt = time.Now()

			return parsed, nil
		}

		// Replace, never accumulate: the next repair prompt reflects only
		// the latest validation run.
		failures = result.Failures
		attemptLogger.Info("Generated code failed validation",
			zap.Strings("failures", result.Failures))
	}

	return nil, nil
}

func (c *Coordinator) cancelledOutcome(op string, cause error) (*entity.GenerationOutcome, error) {
	c.logger.Info("Generation cancelled")

	outcome := &entity.GenerationOutcome{
		Success:      false,
		ErrorMessage: "generation cancelled",
		CompletedAt:  time.Now(),
	}

	return outcome, apperr.Wrap(op, apperr.CodeCancelled, cause, map[string]any{
		apperr.MetaReason: "context_cancelled",
		apperr.MetaStage:  apperr.StageGeneration,
	})
}
