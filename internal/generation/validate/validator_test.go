package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestValidator() *Validator {
	return NewValidator(Params{Logger: zap.NewNop()})
}

const validPageObject = `package com.example;

import org.openqa.selenium.WebDriver;
import org.openqa.selenium.WebElement;
import org.openqa.selenium.support.FindBy;
import org.openqa.selenium.support.PageFactory;

public class LoginPage {
    private WebDriver driver;

    @FindBy(id = "email")
    private WebElement emailInput;

    public LoginPage(WebDriver driver) {
        this.driver = driver;
        PageFactory.initElements(driver, this);
    }
}`

const validTest = `package com.example;

import org.openqa.selenium.WebDriver;
import org.openqa.selenium.chrome.ChromeDriver;
import org.testng.annotations.AfterMethod;
import org.testng.annotations.BeforeMethod;
import org.testng.annotations.Test;

public class LoginTest {
    private WebDriver driver;

    @BeforeMethod
    public void setUp() {
        driver = new ChromeDriver();
    }

    @Test
    public void shouldLogIn() {
        LoginPage page = new LoginPage(driver);
    }

    @AfterMethod
    public void tearDown() {
        driver.quit();
    }
}`

func TestValidateAcceptsCompleteArtifacts(t *testing.T) {
	validator := newTestValidator()

	result := validator.Validate(validPageObject, validTest, "LoginPage", "LoginTest")

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Failures)
}

func TestValidateEmptyPageObjectSingleFailure(t *testing.T) {
	validator := newTestValidator()

	result := validator.Validate("", validTest, "LoginPage", "LoginTest")

	require.False(t, result.IsValid)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "page object class is empty", result.Failures[0])
}

func TestValidateEmptyTestStillChecksPageObject(t *testing.T) {
	validator := newTestValidator()

	result := validator.Validate("not even a class", "   ", "LoginPage", "LoginTest")

	require.False(t, result.IsValid)
	// All page object checks ran; the empty test contributed exactly one.
	assert.Contains(t, result.Failures, "test class is empty")
	assert.Contains(t, result.Failures, "page object is missing the LoginPage class declaration")
	assert.Greater(t, len(result.Failures), 2)
}

func TestValidateChecksDoNotShortCircuit(t *testing.T) {
	validator := newTestValidator()
	// A shell with the right class name but nothing else: every remaining
	// page object check must still report.
	shell := "public class LoginPage { }"

	result := validator.Validate(shell, validTest, "LoginPage", "LoginTest")

	require.False(t, result.IsValid)
	assert.Contains(t, result.Failures, "page object LoginPage has no browser driver field")
	assert.Contains(t, result.Failures, "page object LoginPage never initializes its elements")
	assert.Contains(t, result.Failures, "page object LoginPage is missing the browser automation library import")
}

func TestValidateMissingTeardownQuit(t *testing.T) {
	validator := newTestValidator()
	noQuit := strings.ReplaceAll(validTest, "driver.quit();", "// left running")

	result := validator.Validate(validPageObject, noQuit, "LoginPage", "LoginTest")

	require.False(t, result.IsValid)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "test class LoginTest teardown never quits or closes the driver", result.Failures[0])
}

func TestValidateWrongClassName(t *testing.T) {
	validator := newTestValidator()

	result := validator.Validate(validPageObject, validTest, "CheckoutPage", "LoginTest")

	require.False(t, result.IsValid)
	assert.Contains(t, result.Failures, "page object is missing the CheckoutPage class declaration")
}

func TestValidateFailureOrderIsStable(t *testing.T) {
	validator := newTestValidator()

	first := validator.Validate("x", "y", "LoginPage", "LoginTest")
	second := validator.Validate("x", "y", "LoginPage", "LoginTest")

	assert.Equal(t, first.Failures, second.Failures)
	// Page object findings always precede test class findings.
	assert.Contains(t, first.Failures[0], "page object")
}
