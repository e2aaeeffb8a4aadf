package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"testforge/internal/config"
	"testforge/internal/entity"
	"testforge/internal/scenario"
	"testforge/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	lastCtx *entity.GenerationContext
	outcome *entity.GenerationOutcome
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, genCtx *entity.GenerationContext) (*entity.GenerationOutcome, error) {
	f.lastCtx = genCtx

	if f.err != nil {
		return nil, f.err
	}

	return f.outcome, nil
}

func newStudioFixture(t *testing.T, framework string) (*Studio, *scenario.Service, *fakeGenerator, string) {
	t.Helper()

	outDir := t.TempDir()
	conf := &config.Config{
		GenerationConfig: &config.GenerationConfig{
			Framework:           framework,
			PageObjectClassName: "LoginPage",
			TestClassName:       "LoginTest",
			PackageName:         "com.example.generated",
			OutputDir:           outDir,
		},
	}

	scenarios := scenario.NewService(scenario.Params{Logger: zap.NewNop()})
	generator := &fakeGenerator{
		outcome: &entity.GenerationOutcome{
			Framework:      framework,
			PageObjectCode: "page object body",
			TestCode:       "test body",
			Success:        true,
			CompletedAt:    time.Now(),
		},
	}

	studio := NewStudio(StudioParams{
		Config:    conf,
		Logger:    zap.NewNop(),
		Scenarios: scenarios,
		Generator: generator,
	})

	return studio, scenarios, generator, outDir
}

func resolvedStep(action entity.ActionKind, tag, primary string) entity.TestStep {
	return entity.TestStep{
		Action:      action,
		ElementType: tag,
		Selector:    primary,
		Locator: &entity.LocatorDefinition{
			Primary: primary,
			Kind:    entity.LocatorKindCSS,
		},
	}
}

func TestGenerateCodeWritesJavaArtifacts(t *testing.T) {
	studio, scenarios, _, outDir := newStudioFixture(t, "selenium-java")
	scenarios.StartScenario("login", "")

	_, err := scenarios.AppendStep(resolvedStep(entity.ActionClick, "button", "#login"))
	require.NoError(t, err)

	outcome, paths, err := studio.GenerateCode(context.Background())
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Len(t, paths, 2)

	assert.Equal(t, filepath.Join(outDir, "LoginPage.java"), paths[0])
	assert.Equal(t, filepath.Join(outDir, "LoginTest.java"), paths[1])

	body, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "page object body", string(body))
}

func TestGenerateCodePlaywrightExtensions(t *testing.T) {
	studio, scenarios, generator, outDir := newStudioFixture(t, "playwright-ts")
	generator.outcome.Framework = "playwright-ts"
	scenarios.StartScenario("login", "")

	_, paths, err := studio.GenerateCode(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, filepath.Join(outDir, "LoginPage.ts"), paths[0])
	assert.Equal(t, filepath.Join(outDir, "LoginTest.spec.ts"), paths[1])
}

func TestGenerateCodeWithoutScenario(t *testing.T) {
	studio, _, generator, _ := newStudioFixture(t, "selenium-java")

	_, _, err := studio.GenerateCode(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	assert.Nil(t, generator.lastCtx)
}

func TestGenerateCodeFailedOutcomeWritesNothing(t *testing.T) {
	studio, scenarios, generator, outDir := newStudioFixture(t, "selenium-java")
	generator.outcome = &entity.GenerationOutcome{Success: false, ErrorMessage: "nothing usable"}
	scenarios.StartScenario("login", "")

	outcome, paths, err := studio.GenerateCode(context.Background())
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Empty(t, paths)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildContextDeduplicatesElementsByLocator(t *testing.T) {
	studio, scenarios, generator, _ := newStudioFixture(t, "selenium-java")
	scenarios.StartScenario("login", "")

	_, err := scenarios.AppendStep(resolvedStep(entity.ActionClick, "input", "[name='user']"))
	require.NoError(t, err)
	_, err = scenarios.AppendStep(resolvedStep(entity.ActionTypeText, "input", "[name='user']"))
	require.NoError(t, err)
	_, err = scenarios.AppendStep(resolvedStep(entity.ActionClick, "button", "#submit"))
	require.NoError(t, err)
	_, err = scenarios.AppendStep(entity.TestStep{Action: entity.ActionNavigate, Value: "https://example.test"})
	require.NoError(t, err)

	_, _, err = studio.GenerateCode(context.Background())
	require.NoError(t, err)

	require.NotNil(t, generator.lastCtx)
	require.Len(t, generator.lastCtx.Elements, 2, "repeated locators and locator-less steps add no elements")
	assert.Equal(t, "inputElement1", generator.lastCtx.Elements[0].VariableName)
	assert.Equal(t, "buttonElement1", generator.lastCtx.Elements[1].VariableName)
	assert.Equal(t, "com.example.generated", generator.lastCtx.PackageName)
}

func TestGenerateCodePropagatesPipelineError(t *testing.T) {
	studio, scenarios, generator, _ := newStudioFixture(t, "selenium-java")
	generator.err = apperr.WrapErrorWithReason("Generate", apperr.CodeCancelled, "generation cancelled")
	scenarios.StartScenario("login", "")

	_, _, err := studio.GenerateCode(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeCancelled, apperr.CodeOf(err))
}
