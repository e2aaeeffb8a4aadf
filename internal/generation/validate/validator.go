package validate

import (
	"fmt"
	"strings"

	"testforge/internal/entity"
	"testforge/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const validatorName = "CodeValidator"

// check is one named structural predicate. The rule set stays declarative so
// new signals can be added without touching the orchestration around it.
type check struct {
	failure string
	passes  func(code, className string) bool
}

// Validator runs a fixed battery of structural checks against the page
// object and the test class. Every check executes even after a failure so
// the failure list handed to the repair prompt is complete.
type Validator struct {
	logger *zap.Logger
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func NewValidator(params Params) *Validator {
	return &Validator{
		logger: params.Logger.With(zap.String(logg.Layer, validatorName)),
	}
}

func (v *Validator) Validate(pageObjectCode, testCode, pageObjectClassName, testClassName string) entity.ValidationResult {
	var failures []string

	failures = append(failures, runChecks("page object", pageObjectCode, pageObjectClassName, pageObjectChecks())...)
	failures = append(failures, runChecks("test", testCode, testClassName, testClassChecks())...)

	result := entity.ValidationResult{
		IsValid:  len(failures) == 0,
		Failures: failures,
	}

	if !result.IsValid {
		v.logger.Debug("Code failed structural validation",
			zap.Int("failure_count", len(failures)))
	}

	return result
}

// runChecks executes the artifact's full battery. An empty artifact yields
// exactly one "is empty" failure and skips the remaining checks for that
// artifact only.
func runChecks(artifact, code, className string, checks []check) []string {
	if strings.TrimSpace(code) == "" {
		return []string{fmt.Sprintf("%s class is empty", artifact)}
	}

	var failures []string

	for _, c := range checks {
		if !c.passes(code, className) {
			failures = append(failures, fmt.Sprintf(c.failure, className))
		}
	}

	return failures
}

func containsAny(code string, signals ...string) bool {
	for _, signal := range signals {
		if strings.Contains(code, signal) {
			return true
		}
	}

	return false
}

func pageObjectChecks() []check {
	return []check{
		{
			failure: "page object is missing the %s class declaration",
			passes: func(code, className string) bool {
				return strings.Contains(code, "class "+className)
			},
		},
		{
			failure: "page object %s has no browser driver field",
			passes: func(code, _ string) bool {
				return containsAny(code, "WebDriver driver", "private WebDriver", "readonly page", "this.page", "this.driver")
			},
		},
		{
			failure: "page object %s has no constructor named after the class",
			passes: func(code, className string) bool {
				return containsAny(code, className+"(", "constructor(")
			},
		},
		{
			failure: "page object %s never initializes its elements",
			passes: func(code, _ string) bool {
				return containsAny(code, "initElements(", "PageFactory", "page.locator(", "getByTestId(", "getByRole(")
			},
		},
		{
			failure: "page object %s is missing the browser automation library import",
			passes: func(code, _ string) bool {
				return containsAny(code, "org.openqa.selenium", "@playwright/test", "playwright", "selenium")
			},
		},
	}
}

func testClassChecks() []check {
	return []check{
		{
			failure: "test class declaration %s not found",
			passes: func(code, className string) bool {
				return containsAny(code, "class "+className, "test.describe(", "describe(")
			},
		},
		{
			failure: "test class %s has no annotated test method",
			passes: func(code, _ string) bool {
				return containsAny(code, "@Test", "test(", "it(")
			},
		},
		{
			failure: "test class %s has no setup lifecycle method",
			passes: func(code, _ string) bool {
				return containsAny(code, "@BeforeMethod", "@BeforeEach", "@Before", "beforeEach(", "beforeAll(", "setUp(")
			},
		},
		{
			failure: "test class %s has no teardown lifecycle method",
			passes: func(code, _ string) bool {
				return containsAny(code, "@AfterMethod", "@AfterEach", "@After", "afterEach(", "afterAll(", "tearDown(")
			},
		},
		{
			failure: "test class %s teardown never quits or closes the driver",
			passes: func(code, _ string) bool {
				return containsAny(code, ".quit(", ".close(", "driver.quit", "browser.close")
			},
		},
		{
			failure: "test class %s is missing the test framework import",
			passes: func(code, _ string) bool {
				return containsAny(code, "org.testng", "org.junit", "@playwright/test", "import pytest", "testing")
			},
		},
		{
			failure: "test class %s has no browser driver field",
			passes: func(code, _ string) bool {
				return containsAny(code, "WebDriver driver", "private WebDriver", "Browser", "({ page }", "driver")
			},
		},
	}
}
