package template

import (
	"fmt"
	"strings"

	"testforge/internal/entity"
)

func renderSeleniumPageObject(genCtx *entity.GenerationContext) string {
	var b strings.Builder

	if genCtx.PackageName != "" {
		fmt.Fprintf(&b, "package %s;\n\n", genCtx.PackageName)
	}

	b.WriteString("import org.openqa.selenium.WebDriver;\n")
	b.WriteString("import org.openqa.selenium.WebElement;\n")
	b.WriteString("import org.openqa.selenium.support.FindBy;\n")
	b.WriteString("import org.openqa.selenium.support.PageFactory;\n\n")

	fmt.Fprintf(&b, "public class %s {\n", genCtx.PageObjectClassName)
	b.WriteString("    private WebDriver driver;\n")

	for i, el := range genCtx.Elements {
		fmt.Fprintf(&b, "\n    @FindBy(%s = \"%s\")\n", findByStrategy(el), escapeJava(el.Locator))
		fmt.Fprintf(&b, "    public WebElement %s;\n", variableName(el, i))
	}

	fmt.Fprintf(&b, "\n    public %s(WebDriver driver) {\n", genCtx.PageObjectClassName)
	b.WriteString("        this.driver = driver;\n")
	b.WriteString("        PageFactory.initElements(driver, this);\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	return b.String()
}

func renderSeleniumTest(genCtx *entity.GenerationContext) string {
	var b strings.Builder

	if genCtx.PackageName != "" {
		fmt.Fprintf(&b, "package %s;\n\n", genCtx.PackageName)
	}

	b.WriteString("import java.io.File;\n")
	b.WriteString("import java.time.Duration;\n\n")
	b.WriteString("import org.openqa.selenium.By;\n")
	b.WriteString("import org.openqa.selenium.OutputType;\n")
	b.WriteString("import org.openqa.selenium.TakesScreenshot;\n")
	b.WriteString("import org.openqa.selenium.WebDriver;\n")
	b.WriteString("import org.openqa.selenium.chrome.ChromeDriver;\n")
	b.WriteString("import org.openqa.selenium.interactions.Actions;\n")
	b.WriteString("import org.openqa.selenium.support.ui.ExpectedConditions;\n")
	b.WriteString("import org.openqa.selenium.support.ui.Select;\n")
	b.WriteString("import org.openqa.selenium.support.ui.WebDriverWait;\n")
	b.WriteString("import org.testng.Assert;\n")
	b.WriteString("import org.testng.annotations.AfterMethod;\n")
	b.WriteString("import org.testng.annotations.BeforeMethod;\n")
	b.WriteString("import org.testng.annotations.Test;\n\n")

	fmt.Fprintf(&b, "public class %s {\n", genCtx.TestClassName)
	b.WriteString("    private WebDriver driver;\n")
	b.WriteString("    private WebDriverWait wait;\n")
	fmt.Fprintf(&b, "    private %s page;\n\n", genCtx.PageObjectClassName)

	b.WriteString("    @BeforeMethod\n")
	b.WriteString("    public void setUp() {\n")
	b.WriteString("        driver = new ChromeDriver();\n")
	b.WriteString("        wait = new WebDriverWait(driver, Duration.ofSeconds(10));\n")
	fmt.Fprintf(&b, "        page = new %s(driver);\n", genCtx.PageObjectClassName)
	b.WriteString("    }\n\n")

	b.WriteString("    @Test\n")
	fmt.Fprintf(&b, "    public void %s() {\n", methodName(genCtx.Scenario.Name))

	for _, step := range genCtx.Scenario.Steps {
		for _, stmt := range seleniumStatements(genCtx, step) {
			fmt.Fprintf(&b, "        %s\n", stmt)
		}
	}

	b.WriteString("    }\n\n")

	b.WriteString("    @AfterMethod\n")
	b.WriteString("    public void tearDown() {\n")
	b.WriteString("        if (driver != null) {\n")
	b.WriteString("            driver.quit();\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	return b.String()
}

// seleniumStatements renders one step as Java statements, preferring the
// page object field when the step's locator maps to a picked element.
func seleniumStatements(genCtx *entity.GenerationContext, step entity.TestStep) []string {
	target := seleniumTarget(genCtx, step)

	switch step.Action {
	case entity.ActionNavigate:
		return []string{fmt.Sprintf("driver.get(\"%s\");", escapeJava(step.Value))}
	case entity.ActionClick:
		return []string{target + ".click();"}
	case entity.ActionTypeText:
		return []string{
			target + ".clear();",
			fmt.Sprintf("%s.sendKeys(\"%s\");", target, escapeJava(step.Value)),
		}
	case entity.ActionSelect:
		return []string{fmt.Sprintf("new Select(%s).selectByVisibleText(\"%s\");", target, escapeJava(step.Value))}
	case entity.ActionHover:
		return []string{fmt.Sprintf("new Actions(driver).moveToElement(%s).perform();", target)}
	case entity.ActionAssertVisible:
		return []string{fmt.Sprintf("Assert.assertTrue(%s.isDisplayed());", target)}
	case entity.ActionAssertText:
		return []string{fmt.Sprintf("Assert.assertEquals(%s.getText().trim(), \"%s\");", target, escapeJava(stepExpected(step)))}
	case entity.ActionAssertAttribute:
		return []string{fmt.Sprintf("Assert.assertEquals(%s.getAttribute(\"%s\"), \"%s\");",
			target, escapeJava(stepAttribute(step)), escapeJava(stepExpected(step)))}
	case entity.ActionWait:
		return []string{fmt.Sprintf("wait.until(ExpectedConditions.visibilityOf(%s));", target)}
	case entity.ActionUpload:
		return []string{fmt.Sprintf("%s.sendKeys(\"%s\");", target, escapeJava(step.Value))}
	case entity.ActionScreenshot:
		return []string{"File screenshot = ((TakesScreenshot) driver).getScreenshotAs(OutputType.FILE);"}
	default:
		return []string{fmt.Sprintf("// unsupported action: %s", step.Action)}
	}
}

func seleniumTarget(genCtx *entity.GenerationContext, step entity.TestStep) string {
	if varName, ok := matchElementVariable(genCtx, step); ok {
		return "page." + varName
	}

	selector := stepSelector(step)

	if strings.HasPrefix(selector, "//") || strings.HasPrefix(selector, "(") {
		return fmt.Sprintf("driver.findElement(By.xpath(\"%s\"))", escapeJava(selector))
	}

	return fmt.Sprintf("driver.findElement(By.cssSelector(\"%s\"))", escapeJava(selector))
}

func findByStrategy(el entity.ElementWithLocator) string {
	if el.LocatorKind == entity.LocatorKindXPath {
		return "xpath"
	}

	return "css"
}

func escapeJava(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)

	return strings.ReplaceAll(escaped, `"`, `\"`)
}

// methodName lowers a scenario name into a valid Java method identifier.
func methodName(name string) string {
	var b strings.Builder
	upperNext := false

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			if upperNext && b.Len() > 0 {
				b.WriteRune(r &^ 0x20)
			} else {
				b.WriteRune(r | 0x20)
			}

			upperNext = false
		case r >= '0' && r <= '9' && b.Len() > 0:
			b.WriteRune(r)
			upperNext = false
		default:
			upperNext = true
		}
	}

	if b.Len() == 0 {
		return "generatedScenario"
	}

	return b.String()
}
