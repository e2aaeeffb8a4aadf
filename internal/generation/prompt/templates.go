package prompt

// frameworkTemplates registers the prompt template per exact framework name.
// Placeholders {{ELEMENTS}} and {{STEPS}} are substituted at build time;
// any framework missing here gets the inline default prompt.
func frameworkTemplates() map[string]string {
	return map[string]string{
		"selenium-java": seleniumJavaTemplate,
		"playwright-ts": playwrightTSTemplate,
	}
}

const seleniumJavaTemplate = `You are an expert automation engineer. Generate Selenium WebDriver test code in Java using the Page Object pattern with PageFactory.

Page elements:
{{ELEMENTS}}

Test steps:
{{STEPS}}

Formatting rules:
1. Return ONLY code, no commentary.
2. Return exactly two fenced code blocks.
3. First block: the page object class annotated with @FindBy locators, a WebDriver field, a constructor calling PageFactory.initElements.
4. Second block: the TestNG test class with @BeforeMethod setup, @AfterMethod teardown calling driver.quit(), and at least one @Test method.
5. Never use Thread.sleep; use WebDriverWait with ExpectedConditions instead.`

const playwrightTSTemplate = `You are an expert automation engineer. Generate Playwright test code in TypeScript using the Page Object pattern.

Page elements:
{{ELEMENTS}}

Test steps:
{{STEPS}}

Formatting rules:
1. Return ONLY code, no commentary.
2. Return exactly two fenced code blocks.
3. First block: the page object class holding Locator fields initialized from the Page in its constructor.
4. Second block: the spec file importing { test, expect } from '@playwright/test' with at least one test().
5. Never use page.waitForTimeout; rely on Playwright's auto-waiting and expect polling.`
