package prompt

import (
	"fmt"
	"strings"

	"testforge/internal/entity"
	"testforge/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	builderName = "PromptBuilder"

	elementsPlaceholder = "{{ELEMENTS}}"
	stepsPlaceholder    = "{{STEPS}}"

	noElementsSentinel = "(no elements defined — derive locators from the steps)"
	noStepsSentinel    = "(no steps defined — produce a test exercising the listed elements)"
)

// Builder renders the generation prompt for a context and, on a failed
// attempt, the repair prompt carrying the validator's findings. Both renders
// are deterministic given identical inputs.
type Builder struct {
	logger    *zap.Logger
	templates map[string]string
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func NewBuilder(params Params) *Builder {
	return &Builder{
		logger:    params.Logger.With(zap.String(logg.Layer, builderName)),
		templates: frameworkTemplates(),
	}
}

// BuildGenerationPrompt selects the template registered for the exact
// framework name and substitutes the elements and steps blocks. An unknown
// framework falls back to the framework-agnostic default prompt.
func (b *Builder) BuildGenerationPrompt(genCtx *entity.GenerationContext) string {
	elements := b.renderElementsBlock(genCtx.Elements)
	steps := b.renderStepsBlock(genCtx.Scenario)

	template, ok := b.templates[genCtx.Framework]
	if !ok {
		b.logger.Debug("No template registered for framework, using default prompt",
			zap.String(logg.Framework, genCtx.Framework))

		return b.buildDefaultPrompt(genCtx, elements, steps)
	}

	rendered := strings.ReplaceAll(template, elementsPlaceholder, elements)
	rendered = strings.ReplaceAll(rendered, stepsPlaceholder, steps)

	return rendered
}

// BuildRepairPrompt is always built inline, never from the template
// registry. It lists every validation failure on its own bullet line and
// asks for a full regeneration.
func (b *Builder) BuildRepairPrompt(genCtx *entity.GenerationContext, failures []string) string {
	var p strings.Builder

	p.WriteString("The previously generated code failed structural validation.\n\n")
	p.WriteString("Issues found:\n")

	for _, failure := range failures {
		p.WriteString("- ")
		p.WriteString(failure)
		p.WriteString("\n")
	}

	p.WriteString("\nRegenerate the complete code from scratch, fixing every listed issue. ")
	p.WriteString("Keep all required imports and the conventions of the ")
	p.WriteString(genCtx.Framework)
	p.WriteString(" framework.\n\n")

	p.WriteString("Page elements:\n")
	p.WriteString(b.renderElementsBlock(genCtx.Elements))
	p.WriteString("\n\nTest steps:\n")
	p.WriteString(b.renderStepsBlock(genCtx.Scenario))
	p.WriteString("\n\n")
	p.WriteString(formattingRules(genCtx))

	return p.String()
}

func (b *Builder) buildDefaultPrompt(genCtx *entity.GenerationContext, elements, steps string) string {
	var p strings.Builder

	p.WriteString("You are an expert automation engineer. ")
	p.WriteString(fmt.Sprintf("Generate %s test code using the page object pattern.\n\n", genCtx.Framework))

	p.WriteString("Page elements:\n")
	p.WriteString(elements)
	p.WriteString("\n\nTest steps:\n")
	p.WriteString(steps)
	p.WriteString("\n\n")
	p.WriteString(formattingRules(genCtx))
	p.WriteString("\nNever use fixed-delay sleeps; use explicit waits for element conditions instead.\n")

	return p.String()
}

func formattingRules(genCtx *entity.GenerationContext) string {
	var p strings.Builder

	p.WriteString("Formatting rules:\n")
	p.WriteString("1. Return ONLY code, no commentary.\n")
	p.WriteString("2. Return exactly two fenced code blocks.\n")
	p.WriteString(fmt.Sprintf("3. First block: the page object class %s.\n", genCtx.PageObjectClassName))
	p.WriteString(fmt.Sprintf("4. Second block: the test class %s.\n", genCtx.TestClassName))

	if genCtx.PackageName != "" {
		p.WriteString(fmt.Sprintf("5. Use package %s.\n", genCtx.PackageName))
	}

	return p.String()
}

// renderElementsBlock lists one element per line: type, locator, variable
// name. Zero elements render as an explicit sentinel, never an empty block.
func (b *Builder) renderElementsBlock(elements []entity.ElementWithLocator) string {
	if len(elements) == 0 {
		return noElementsSentinel
	}

	lines := make([]string, 0, len(elements))

	for _, el := range elements {
		lines = append(lines, fmt.Sprintf("- %s | locator (%s): %s | variable: %s",
			el.ElementType, el.LocatorKind, el.Locator, el.VariableName))
	}

	return strings.Join(lines, "\n")
}

func (b *Builder) renderStepsBlock(scenario *entity.TestScenario) string {
	if scenario == nil || len(scenario.Steps) == 0 {
		return noStepsSentinel
	}

	lines := make([]string, 0, len(scenario.Steps))

	for _, step := range scenario.Steps {
		lines = append(lines, fmt.Sprintf("%d. %s", step.OrderIndex+1, DescribeStep(step)))
	}

	return strings.Join(lines, "\n")
}

// DescribeStep renders one step as a human-readable instruction line.
func DescribeStep(step entity.TestStep) string {
	target := step.Selector
	if step.Locator != nil && step.Locator.Primary != "" {
		target = step.Locator.Primary
	}

	switch step.Action {
	case entity.ActionClick:
		return fmt.Sprintf("click element %s", target)
	case entity.ActionTypeText:
		return fmt.Sprintf("type %q into %s", step.Value, target)
	case entity.ActionSelect:
		return fmt.Sprintf("select option %q in %s", step.Value, target)
	case entity.ActionHover:
		return fmt.Sprintf("hover over %s", target)
	case entity.ActionNavigate:
		return fmt.Sprintf("navigate to %s", step.Value)
	case entity.ActionAssertVisible:
		return fmt.Sprintf("assert %s is visible", target)
	case entity.ActionAssertText:
		return fmt.Sprintf("assert text of %s equals %q", target, expectedOf(step))
	case entity.ActionAssertAttribute:
		return fmt.Sprintf("assert attribute %q of %s equals %q", attributeOf(step), target, expectedOf(step))
	case entity.ActionWait:
		return fmt.Sprintf("wait for %s to be present", target)
	case entity.ActionUpload:
		return fmt.Sprintf("upload file %q via %s", step.Value, target)
	case entity.ActionScreenshot:
		return "take a screenshot"
	default:
		return fmt.Sprintf("%s %s", step.Action, target)
	}
}

func expectedOf(step entity.TestStep) string {
	if step.Assertion != nil {
		return step.Assertion.Expected
	}

	return step.Value
}

func attributeOf(step entity.TestStep) string {
	if step.Assertion != nil {
		return step.Assertion.Attribute
	}

	return ""
}
