package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestParser() *Parser {
	return NewParser(Params{Logger: zap.NewNop()})
}

const samplePageObject = `public class LoginPage {
    private WebDriver driver;

    @FindBy(id = "email")
    private WebElement emailInput;

    public LoginPage(WebDriver driver) {
        this.driver = driver;
        PageFactory.initElements(driver, this);
    }
}`

const sampleTest = `public class LoginTest {
    private WebDriver driver;

    @BeforeMethod
    public void setUp() {
        driver = new ChromeDriver();
    }

    @Test
    public void shouldLogIn() {
        new LoginPage(driver).open();
    }

    @AfterMethod
    public void tearDown() {
        driver.quit();
    }
}`

func fence(lang, body string) string {
	return "```" + lang + "\n" + body + "\n```\n"
}

func TestParseRoundTripTwoFencedBlocks(t *testing.T) {
	parser := newTestParser()
	raw := "Here is the code:\n" + fence("java", samplePageObject) + "\nand the test:\n" + fence("java", sampleTest)

	outcome := parser.Parse(raw, "LoginPage", "LoginTest")

	require.True(t, outcome.Success)
	assert.Equal(t, samplePageObject, outcome.PageObjectCode)
	assert.Equal(t, sampleTest, outcome.TestCode)
	assert.Empty(t, outcome.ErrorMessage)
}

func TestParseIgnoresLanguageTagAndOrder(t *testing.T) {
	parser := newTestParser()
	// Test block first; classification is structural, not positional.
	raw := fence("", sampleTest) + fence("JAVA", samplePageObject)

	outcome := parser.Parse(raw, "LoginPage", "LoginTest")

	require.True(t, outcome.Success)
	assert.Equal(t, sampleTest, outcome.TestCode)
	assert.Equal(t, samplePageObject, outcome.PageObjectCode)
}

func TestParseNoBlocksFails(t *testing.T) {
	parser := newTestParser()

	outcome := parser.Parse("Sorry, I cannot help with that.", "LoginPage", "LoginTest")

	assert.False(t, outcome.Success)
	assert.Equal(t, ErrNoCodeBlocks, outcome.ErrorMessage)
	assert.Empty(t, outcome.TestCode)
	assert.Empty(t, outcome.PageObjectCode)
}

func TestParseEmptyFencedBlocksFail(t *testing.T) {
	parser := newTestParser()

	outcome := parser.Parse("```java\n\n```\n```\n   \n```", "LoginPage", "LoginTest")

	assert.False(t, outcome.Success)
	assert.Equal(t, ErrNoCodeBlocks, outcome.ErrorMessage)
}

func TestParseLooseHeuristicWithoutFences(t *testing.T) {
	parser := newTestParser()
	raw := "Some preamble.\n" + sampleTest

	outcome := parser.Parse(raw, "LoginPage", "LoginTest")

	require.True(t, outcome.Success)
	assert.Contains(t, outcome.TestCode, "@Test")
	// No page-object block existed, so a placeholder is synthesized.
	assert.Contains(t, outcome.PageObjectCode, "class LoginPage")
	assert.Contains(t, outcome.PageObjectCode, "WebDriver driver")
	assert.Contains(t, outcome.PageObjectCode, "PageFactory.initElements")
}

func TestParseLooseHeuristicDropsShortCandidates(t *testing.T) {
	parser := newTestParser()

	outcome := parser.Parse("class A {}\n", "LoginPage", "LoginTest")

	assert.False(t, outcome.Success)
	assert.Equal(t, ErrNoCodeBlocks, outcome.ErrorMessage)
}

func TestParseLargestBlockBecomesTestWhenNoTestSignal(t *testing.T) {
	parser := newTestParser()
	small := "const helper = () => fetchConfigurationFromRemoteEndpoint();"
	large := "class ShoppingCartFlow {\n" + strings.Repeat("    addItemToCartAndVerifyTotals();\n", 10) + "}"
	raw := fence("js", small) + fence("js", large)

	outcome := parser.Parse(raw, "CartPage", "CartTest")

	require.True(t, outcome.Success)
	assert.Equal(t, large, outcome.TestCode)
	assert.Contains(t, outcome.PageObjectCode, "class CartPage")
}

func TestParseSingleTestBlockSynthesizesPageObject(t *testing.T) {
	parser := newTestParser()

	outcome := parser.Parse(fence("ts", "test('logs in', async ({ page }) => {\n  await page.goto('/');\n});"), "HomePage", "HomeTest")

	require.True(t, outcome.Success)
	assert.Contains(t, outcome.TestCode, "test('logs in'")
	assert.Contains(t, outcome.PageObjectCode, "class HomePage")
}

func TestParseClassifiesPlaywrightStyle(t *testing.T) {
	parser := newTestParser()
	po := "export class HomePage {\n  readonly Locator header;\n  constructor(page) { this.header = page.locator('#header'); }\n}"
	spec := "import { test, expect } from '@playwright/test';\n\ntest('shows header', async ({ page }) => {\n  await expect(new HomePage(page).header).toBeVisible();\n});"

	outcome := parser.Parse(fence("typescript", po)+fence("typescript", spec), "HomePage", "HomeTest")

	require.True(t, outcome.Success)
	assert.Equal(t, po, outcome.PageObjectCode)
	assert.Equal(t, spec, outcome.TestCode)
}

func TestParseIsDeterministic(t *testing.T) {
	parser := newTestParser()
	raw := fence("java", samplePageObject) + fence("java", sampleTest)

	first := parser.Parse(raw, "LoginPage", "LoginTest")
	second := parser.Parse(raw, "LoginPage", "LoginTest")

	assert.Equal(t, first, second)
}
