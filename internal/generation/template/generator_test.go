package template

import (
	"context"
	"testing"

	"testforge/internal/entity"
	"testforge/internal/generation/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGenerator() *Generator {
	return NewGenerator(Params{Logger: zap.NewNop()})
}

func templateContext(framework string) *entity.GenerationContext {
	return &entity.GenerationContext{
		Framework:           framework,
		PageObjectClassName: "LoginPage",
		TestClassName:       "LoginTest",
		PackageName:         "com.example.tests",
		Elements: []entity.ElementWithLocator{
			{ElementType: "input", Locator: "#email", LocatorKind: entity.LocatorKindID, VariableName: "emailInput"},
			{ElementType: "button", Locator: "//form/button", LocatorKind: entity.LocatorKindXPath, VariableName: "loginButton"},
		},
		Scenario: &entity.TestScenario{
			Name: "login flow",
			Steps: []entity.TestStep{
				{Action: entity.ActionNavigate, Value: "https://example.com/login", OrderIndex: 0},
				{Action: entity.ActionTypeText, Selector: "#email", Value: "user@example.com", OrderIndex: 1},
				{Action: entity.ActionClick, Selector: "//form/button", OrderIndex: 2},
				{
					Action:    entity.ActionAssertText,
					Selector:  ".welcome",
					Assertion: &entity.AssertionRule{Kind: entity.AssertText, Expected: "Welcome"},
					OrderIndex: 3,
				},
			},
		},
	}
}

func TestGenerateSeleniumOutcome(t *testing.T) {
	gen := newTestGenerator()

	outcome := gen.Generate(context.Background(), templateContext("selenium-java"))

	require.True(t, outcome.Success)
	assert.Equal(t, "selenium-java", outcome.Framework)
	assert.False(t, outcome.CompletedAt.IsZero())

	assert.Contains(t, outcome.PageObjectCode, "package com.example.tests;")
	assert.Contains(t, outcome.PageObjectCode, `@FindBy(css = "#email")`)
	assert.Contains(t, outcome.PageObjectCode, `@FindBy(xpath = "//form/button")`)
	assert.Contains(t, outcome.PageObjectCode, "public LoginPage(WebDriver driver)")

	assert.Contains(t, outcome.TestCode, "public void loginFlow()")
	assert.Contains(t, outcome.TestCode, `driver.get("https://example.com/login");`)
	// Steps matching picked elements go through the page object fields.
	assert.Contains(t, outcome.TestCode, `page.emailInput.sendKeys("user@example.com");`)
	assert.Contains(t, outcome.TestCode, "page.loginButton.click();")
	// Unmatched selectors fall back to inline lookup.
	assert.Contains(t, outcome.TestCode, `driver.findElement(By.cssSelector(".welcome"))`)
	assert.Contains(t, outcome.TestCode, "driver.quit();")
}

func TestGeneratedSeleniumCodePassesStructuralValidation(t *testing.T) {
	gen := newTestGenerator()
	validator := validate.NewValidator(validate.Params{Logger: zap.NewNop()})

	outcome := gen.Generate(context.Background(), templateContext("selenium-java"))

	result := validator.Validate(outcome.PageObjectCode, outcome.TestCode, "LoginPage", "LoginTest")
	assert.True(t, result.IsValid, "failures: %v", result.Failures)
}

func TestGeneratePlaywrightOutcome(t *testing.T) {
	gen := newTestGenerator()

	outcome := gen.Generate(context.Background(), templateContext("playwright-ts"))

	require.True(t, outcome.Success)
	assert.Contains(t, outcome.PageObjectCode, "export class LoginPage")
	assert.Contains(t, outcome.PageObjectCode, "this.emailInput = page.locator('#email');")
	assert.Contains(t, outcome.TestCode, "import { test, expect } from '@playwright/test';")
	assert.Contains(t, outcome.TestCode, "await po.emailInput.fill('user@example.com');")
	assert.Contains(t, outcome.TestCode, "await po.loginButton.click();")
	assert.Contains(t, outcome.TestCode, "await expect(page.locator('.welcome')).toHaveText('Welcome');")
}

func TestGenerateUnknownFrameworkUsesGenericShape(t *testing.T) {
	gen := newTestGenerator()

	outcome := gen.Generate(context.Background(), templateContext("cypress"))

	require.True(t, outcome.Success)
	assert.Equal(t, "cypress", outcome.Framework)
	assert.Contains(t, outcome.PageObjectCode, "PageFactory.initElements")
}

func TestGenerateNilScenarioFails(t *testing.T) {
	gen := newTestGenerator()

	outcome := gen.Generate(context.Background(), &entity.GenerationContext{Framework: "selenium-java"})

	assert.False(t, outcome.Success)
	assert.Equal(t, "no scenario to generate from", outcome.ErrorMessage)
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "loginFlow", methodName("login flow"))
	assert.Equal(t, "checkout2Items", methodName("Checkout 2 items"))
	assert.Equal(t, "generatedScenario", methodName("!!!"))
}
