package template

import (
	"context"
	"time"

	"testforge/internal/entity"
	"testforge/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const generatorName = "TemplateGenerator"

// Generator is the deterministic fallback: page object and test class are
// produced by direct template substitution, no model involved. It is invoked
// when AI generation is disabled, unreachable, or out of retries, and its
// outcome is returned to the caller as-is.
type Generator struct {
	logger *zap.Logger
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func NewGenerator(params Params) *Generator {
	return &Generator{
		logger: params.Logger.With(zap.String(logg.Layer, generatorName)),
	}
}

func (g *Generator) Generate(_ context.Context, genCtx *entity.GenerationContext) *entity.GenerationOutcome {
	if genCtx == nil || genCtx.Scenario == nil {
		return &entity.GenerationOutcome{
			Success:      false,
			ErrorMessage: "no scenario to generate from",
			CompletedAt:  time.Now(),
		}
	}

	g.logger.Info("Generating code from templates",
		zap.String(logg.Framework, genCtx.Framework),
		zap.Int("element_count", len(genCtx.Elements)),
		zap.Int("step_count", len(genCtx.Scenario.Steps)))

	var pageObject, test string

	switch genCtx.Framework {
	case "playwright-ts":
		pageObject = renderPlaywrightPageObject(genCtx)
		test = renderPlaywrightTest(genCtx)
	default:
		// selenium-java is the richest template and doubles as the generic
		// shape for unrecognized frameworks.
		pageObject = renderSeleniumPageObject(genCtx)
		test = renderSeleniumTest(genCtx)
	}

	return &entity.GenerationOutcome{
		Framework:      genCtx.Framework,
		PageObjectCode: pageObject,
		TestCode:       test,
		Success:        true,
		CompletedAt:    time.Now(),
	}
}
