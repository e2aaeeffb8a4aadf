package generation

import (
	"context"
	"errors"
	"testing"

	"testforge/internal/config"
	"testforge/internal/entity"
	"testforge/internal/generation/parse"
	"testforge/internal/generation/prompt"
	"testforge/internal/generation/validate"
	"testforge/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validPageObject = "```java\n" + `import org.openqa.selenium.WebDriver;
import org.openqa.selenium.support.PageFactory;

public class LoginPage {
    private WebDriver driver;

    public LoginPage(WebDriver driver) {
        this.driver = driver;
        PageFactory.initElements(driver, this);
    }
}` + "\n```\n"

const validTest = "```java\n" + `import org.openqa.selenium.WebDriver;
import org.testng.annotations.AfterMethod;
import org.testng.annotations.BeforeMethod;
import org.testng.annotations.Test;

public class LoginTest {
    private WebDriver driver;

    @BeforeMethod
    public void setUp() {}

    @Test
    public void shouldLogIn() {}

    @AfterMethod
    public void tearDown() {
        driver.quit();
    }
}` + "\n```\n"

// Valid test shell missing its teardown: parses fine, fails validation.
const invalidResponse = "```java\n" + `import org.testng.annotations.Test;

public class LoginTest {
    private WebDriver driver;

    @Test
    public void shouldLogIn() {}
}` + "\n```\n"

type providerReply struct {
	content string
	err     error
}

type fakeProvider struct {
	healthy       bool
	replies       []providerReply
	generateCalls int
	healthCalls   int
}

func (f *fakeProvider) Generate(_ context.Context, _ string) (*entity.GenerationResponse, error) {
	reply := f.replies[f.generateCalls]
	f.generateCalls++

	if reply.err != nil {
		return nil, reply.err
	}

	return &entity.GenerationResponse{Content: reply.content, TotalTokens: 10, FinishReason: "end_turn"}, nil
}

func (f *fakeProvider) HealthCheck(_ context.Context) bool {
	f.healthCalls++

	return f.healthy
}

func (f *fakeProvider) Name() string { return "fake" }

type fakeFallback struct {
	calls int
}

func (f *fakeFallback) Generate(_ context.Context, genCtx *entity.GenerationContext) *entity.GenerationOutcome {
	f.calls++

	return &entity.GenerationOutcome{
		Framework:      genCtx.Framework,
		PageObjectCode: "// template page object",
		TestCode:       "// template test",
		Success:        true,
	}
}

// spyPrompts delegates to the real builder while recording every repair
// failure list.
type spyPrompts struct {
	*prompt.Builder
	repairFailures [][]string
}

func (s *spyPrompts) BuildRepairPrompt(genCtx *entity.GenerationContext, failures []string) string {
	s.repairFailures = append(s.repairFailures, failures)

	return s.Builder.BuildRepairPrompt(genCtx, failures)
}

type coordinatorFixture struct {
	coordinator *Coordinator
	provider    *fakeProvider
	fallback    *fakeFallback
	prompts     *spyPrompts
}

func newFixture(aiEnabled, healthy bool, maxRetries int, replies ...providerReply) *coordinatorFixture {
	logger := zap.NewNop()
	provider := &fakeProvider{healthy: healthy, replies: replies}
	fallback := &fakeFallback{}
	prompts := &spyPrompts{Builder: prompt.NewBuilder(prompt.Params{Logger: logger})}

	conf := &config.Config{
		AppConfig: &config.AppConfig{},
		AIConfig: &config.AIConfig{
			Enabled:         aiEnabled,
			Provider:        "fake",
			APIKey:          "key",
			MaxRetries:      maxRetries,
			RequestTimeout:  1000,
			HealthTimeout:   100,
			MaxOutputTokens: 256,
		},
	}

	return &coordinatorFixture{
		coordinator: NewCoordinator(Params{
			Config:    conf,
			Logger:    logger,
			Provider:  provider,
			Prompts:   prompts,
			Parser:    parse.NewParser(parse.Params{Logger: logger}),
			Validator: validate.NewValidator(validate.Params{Logger: logger}),
			Fallback:  fallback,
		}),
		provider: provider,
		fallback: fallback,
		prompts:  prompts,
	}
}

func generationContext() *entity.GenerationContext {
	return &entity.GenerationContext{
		Framework:           "selenium-java",
		PageObjectClassName: "LoginPage",
		TestClassName:       "LoginTest",
		Scenario: &entity.TestScenario{
			Name: "login",
			Steps: []entity.TestStep{
				{Action: entity.ActionClick, Selector: "#login", OrderIndex: 0},
			},
		},
	}
}

func TestGenerateAIDisabledGoesStraightToFallback(t *testing.T) {
	f := newFixture(false, true, 3)

	outcome, err := f.coordinator.Generate(context.Background(), generationContext())

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, 1, f.fallback.calls)
	assert.Equal(t, 0, f.provider.generateCalls)
	assert.Equal(t, 0, f.provider.healthCalls)
}

func TestGenerateUnhealthyProviderFallsBack(t *testing.T) {
	f := newFixture(true, false, 3)

	outcome, err := f.coordinator.Generate(context.Background(), generationContext())

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, 0, f.provider.generateCalls)
	assert.Equal(t, 1, f.fallback.calls)
}

func TestGenerateFirstAttemptSucceeds(t *testing.T) {
	f := newFixture(true, true, 3, providerReply{content: validPageObject + validTest})

	outcome, err := f.coordinator.Generate(context.Background(), generationContext())

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "selenium-java", outcome.Framework)
	assert.Contains(t, outcome.TestCode, "@Test")
	assert.False(t, outcome.CompletedAt.IsZero())
	assert.Equal(t, 1, f.provider.generateCalls)
	assert.Equal(t, 0, f.fallback.calls)
	assert.Empty(t, f.prompts.repairFailures, "no repair prompt on first-attempt success")
}

func TestGenerateAllAttemptsInvalidFallsBack(t *testing.T) {
	f := newFixture(true, true, 3,
		providerReply{content: invalidResponse},
		providerReply{content: invalidResponse},
		providerReply{content: invalidResponse},
	)

	outcome, err := f.coordinator.Generate(context.Background(), generationContext())

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, 3, f.provider.generateCalls)
	assert.Equal(t, 1, f.fallback.calls)
	// Two repair prompts: attempt 2 uses attempt 1's failures, attempt 3
	// uses attempt 2's.
	require.Len(t, f.prompts.repairFailures, 2)
	assert.Contains(t, f.prompts.repairFailures[0], "test class LoginTest has no teardown lifecycle method")
	assert.Contains(t, f.prompts.repairFailures[1], "test class LoginTest has no teardown lifecycle method")
}

func TestGenerateProviderErrorConsumesRetry(t *testing.T) {
	f := newFixture(true, true, 2,
		providerReply{err: errors.New("connection reset")},
		providerReply{content: validPageObject + validTest},
	)

	outcome, err := f.coordinator.Generate(context.Background(), generationContext())

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, 2, f.provider.generateCalls)
	assert.Equal(t, 0, f.fallback.calls)
	require.Len(t, f.prompts.repairFailures, 1)
	require.Len(t, f.prompts.repairFailures[0], 1)
	assert.Contains(t, f.prompts.repairFailures[0][0], "attempt 1 failed with a provider error")
	assert.Contains(t, f.prompts.repairFailures[0][0], "connection reset")
}

func TestGenerateParseFailureFeedsRepairPrompt(t *testing.T) {
	f := newFixture(true, true, 2,
		providerReply{content: "I am unable to produce code right now."},
		providerReply{content: validPageObject + validTest},
	)

	outcome, err := f.coordinator.Generate(context.Background(), generationContext())

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	require.Len(t, f.prompts.repairFailures, 1)
	assert.Equal(t, []string{parse.ErrNoCodeBlocks}, f.prompts.repairFailures[0])
}

func TestGenerateCancelledBeforeAttempts(t *testing.T) {
	f := newFixture(true, true, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := f.coordinator.Generate(ctx, generationContext())

	require.Error(t, err)
	assert.Equal(t, apperr.CodeCancelled, apperr.CodeOf(err))
	require.NotNil(t, outcome)
	assert.False(t, outcome.Success)
	assert.Equal(t, "generation cancelled", outcome.ErrorMessage)
	assert.Equal(t, 0, f.provider.generateCalls)
	assert.Equal(t, 0, f.fallback.calls)
}

func TestGenerateNilScenarioIsConfigError(t *testing.T) {
	f := newFixture(true, true, 3)

	_, err := f.coordinator.Generate(context.Background(), &entity.GenerationContext{Framework: "selenium-java"})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
	assert.Equal(t, 0, f.provider.generateCalls)
	assert.Equal(t, 0, f.fallback.calls)
}
