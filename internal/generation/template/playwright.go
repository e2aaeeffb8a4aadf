package template

import (
	"fmt"
	"strings"

	"testforge/internal/entity"
)

func renderPlaywrightPageObject(genCtx *entity.GenerationContext) string {
	var b strings.Builder

	b.WriteString("import { Locator, Page } from '@playwright/test';\n\n")
	fmt.Fprintf(&b, "export class %s {\n", genCtx.PageObjectClassName)
	b.WriteString("  readonly page: Page;\n")

	for i, el := range genCtx.Elements {
		fmt.Fprintf(&b, "  readonly %s: Locator;\n", variableName(el, i))
	}

	b.WriteString("\n  constructor(page: Page) {\n")
	b.WriteString("    this.page = page;\n")

	for i, el := range genCtx.Elements {
		fmt.Fprintf(&b, "    this.%s = page.locator('%s');\n", variableName(el, i), escapeTS(el.Locator))
	}

	b.WriteString("  }\n")
	b.WriteString("}\n")

	return b.String()
}

func renderPlaywrightTest(genCtx *entity.GenerationContext) string {
	var b strings.Builder

	b.WriteString("import { test, expect } from '@playwright/test';\n")
	fmt.Fprintf(&b, "import { %s } from './%s';\n\n", genCtx.PageObjectClassName, genCtx.PageObjectClassName)

	scenarioName := genCtx.Scenario.Name
	if scenarioName == "" {
		scenarioName = "generated scenario"
	}

	fmt.Fprintf(&b, "test.describe('%s', () => {\n", escapeTS(scenarioName))
	fmt.Fprintf(&b, "  test('%s', async ({ page }) => {\n", escapeTS(scenarioName))
	fmt.Fprintf(&b, "    const po = new %s(page);\n", genCtx.PageObjectClassName)

	for _, step := range genCtx.Scenario.Steps {
		fmt.Fprintf(&b, "    %s\n", playwrightStatement(genCtx, step))
	}

	b.WriteString("  });\n")
	b.WriteString("});\n")

	return b.String()
}

func playwrightStatement(genCtx *entity.GenerationContext, step entity.TestStep) string {
	target := playwrightTarget(genCtx, step)

	switch step.Action {
	case entity.ActionNavigate:
		return fmt.Sprintf("await page.goto('%s');", escapeTS(step.Value))
	case entity.ActionClick:
		return fmt.Sprintf("await %s.click();", target)
	case entity.ActionTypeText:
		return fmt.Sprintf("await %s.fill('%s');", target, escapeTS(step.Value))
	case entity.ActionSelect:
		return fmt.Sprintf("await %s.selectOption('%s');", target, escapeTS(step.Value))
	case entity.ActionHover:
		return fmt.Sprintf("await %s.hover();", target)
	case entity.ActionAssertVisible:
		return fmt.Sprintf("await expect(%s).toBeVisible();", target)
	case entity.ActionAssertText:
		return fmt.Sprintf("await expect(%s).toHaveText('%s');", target, escapeTS(stepExpected(step)))
	case entity.ActionAssertAttribute:
		return fmt.Sprintf("await expect(%s).toHaveAttribute('%s', '%s');",
			target, escapeTS(stepAttribute(step)), escapeTS(stepExpected(step)))
	case entity.ActionWait:
		return fmt.Sprintf("await %s.waitFor();", target)
	case entity.ActionUpload:
		return fmt.Sprintf("await %s.setInputFiles('%s');", target, escapeTS(step.Value))
	case entity.ActionScreenshot:
		return fmt.Sprintf("await page.screenshot({ path: 'step-%d.png' });", step.OrderIndex+1)
	default:
		return fmt.Sprintf("// unsupported action: %s", step.Action)
	}
}

func playwrightTarget(genCtx *entity.GenerationContext, step entity.TestStep) string {
	if varName, ok := matchElementVariable(genCtx, step); ok {
		return "po." + varName
	}

	return fmt.Sprintf("page.locator('%s')", escapeTS(stepSelector(step)))
}

func escapeTS(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)

	return strings.ReplaceAll(escaped, `'`, `\'`)
}
