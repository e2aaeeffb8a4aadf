package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"testforge/internal/config"
	"testforge/internal/entity"
	"testforge/internal/ports"
	"testforge/internal/scenario"
	"testforge/pkg/apperr"
	"testforge/pkg/logg"
	"testforge/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	studioServiceName = "StudioService"
	studioTracer      = "usecase.studio"

	artifactFileMode = 0o644
)

// Studio assembles the generation context from the recorded scenario, runs
// the generation pipeline and writes the produced artifacts to disk.
type Studio struct {
	config    *config.Config
	logger    *zap.Logger
	tracer    trace.Tracer
	scenarios *scenario.Service
	generator ports.CodeGenerator
}

type StudioParams struct {
	Config    *config.Config
	Logger    *zap.Logger
	Scenarios *scenario.Service
	Generator ports.CodeGenerator
}

func NewStudio(params StudioParams) *Studio {
	return &Studio{
		config:    params.Config,
		logger:    params.Logger.With(zap.String(logg.Layer, studioServiceName)),
		tracer:    otel.Tracer(studioTracer),
		scenarios: params.Scenarios,
		generator: params.Generator,
	}
}

// GenerateCode runs the pipeline for the current scenario and writes the
// page object and test artifacts into the configured output directory. It
// returns the outcome together with the written file paths.
func (s *Studio) GenerateCode(ctx context.Context) (outcome *entity.GenerationOutcome, paths []string, err error) {
	const op = "GenerateCode"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	snapshot := s.scenarios.Snapshot()
	if snapshot == nil {
		return nil, nil, apperr.WrapErrorWithReason(op, apperr.CodeNotFound, "no active scenario")
	}

	logger = logger.With(zap.String(logg.ScenarioID, snapshot.ID.String()))
	step.SetAttributes(
		attribute.String("scenario_id", snapshot.ID.String()),
		attribute.Int("steps", len(snapshot.Steps)))

	genCtx := s.buildGenerationContext(snapshot)

	outcome, err = s.generator.Generate(ctx, genCtx)
	if err != nil {
		return outcome, nil, err
	}

	if !outcome.Success {
		logger.Warn("Generation did not produce usable code", zap.String("error", outcome.ErrorMessage))

		return outcome, nil, nil
	}

	paths, err = s.writeArtifacts(genCtx, outcome)
	if err != nil {
		return outcome, nil, err
	}

	logger.Info("Artifacts written",
		zap.String(logg.Framework, outcome.Framework),
		zap.Strings("paths", paths))

	return outcome, paths, nil
}

// buildGenerationContext flattens the scenario into the pipeline's input:
// one element entry per distinct resolved locator, in first-use order, each
// with a stable variable name derived from its tag.
func (s *Studio) buildGenerationContext(snapshot *entity.TestScenario) *entity.GenerationContext {
	genCtx := &entity.GenerationContext{
		Scenario:            snapshot,
		Framework:           s.config.GenerationConfig.Framework,
		PageObjectClassName: s.config.GenerationConfig.PageObjectClassName,
		TestClassName:       s.config.GenerationConfig.TestClassName,
		PackageName:         s.config.GenerationConfig.PackageName,
	}

	seen := make(map[string]bool)
	nameCounts := make(map[string]int)

	for _, testStep := range snapshot.Steps {
		if testStep.Locator == nil || !testStep.Locator.IsResolved() {
			continue
		}

		primary := testStep.Locator.Primary
		if seen[primary] {
			continue
		}

		seen[primary] = true

		tag := testStep.ElementType
		if tag == "" {
			tag = "element"
		}

		nameCounts[tag]++

		genCtx.Elements = append(genCtx.Elements, entity.ElementWithLocator{
			ElementID:    testStep.ID,
			ElementType:  tag,
			Locator:      primary,
			LocatorKind:  testStep.Locator.Kind,
			VariableName: fmt.Sprintf("%sElement%d", tag, nameCounts[tag]),
		})
	}

	return genCtx
}

func (s *Studio) writeArtifacts(genCtx *entity.GenerationContext, outcome *entity.GenerationOutcome) ([]string, error) {
	const op = "writeArtifacts"

	outDir := s.config.GenerationConfig.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, apperr.WrapWithReason(op, apperr.CodeInternal, err, "output_dir_unwritable")
	}

	pagePath := filepath.Join(outDir, artifactFileName(genCtx.PageObjectClassName, outcome.Framework, false))
	testPath := filepath.Join(outDir, artifactFileName(genCtx.TestClassName, outcome.Framework, true))

	if err := os.WriteFile(pagePath, []byte(outcome.PageObjectCode), artifactFileMode); err != nil {
		return nil, apperr.WrapWithReason(op, apperr.CodeInternal, err, "page_object_write_failed")
	}

	if err := os.WriteFile(testPath, []byte(outcome.TestCode), artifactFileMode); err != nil {
		return nil, apperr.WrapWithReason(op, apperr.CodeInternal, err, "test_write_failed")
	}

	return []string{pagePath, testPath}, nil
}

// artifactFileName picks the extension by framework. Test artifacts for
// playwright get the .spec suffix its runner discovers by default.
func artifactFileName(className, framework string, isTest bool) string {
	if strings.HasPrefix(framework, "playwright") {
		if isTest {
			return className + ".spec.ts"
		}

		return className + ".ts"
	}

	return className + ".java"
}
