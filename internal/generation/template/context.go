package template

import (
	"fmt"

	"testforge/internal/entity"
)

func variableName(el entity.ElementWithLocator, idx int) string {
	if el.VariableName != "" {
		return el.VariableName
	}

	return fmt.Sprintf("element%d", idx+1)
}

// matchElementVariable maps a step back to a picked element by comparing the
// step's resolved locator (or raw selector) against the element list.
func matchElementVariable(genCtx *entity.GenerationContext, step entity.TestStep) (string, bool) {
	selector := stepSelector(step)
	if selector == "" {
		return "", false
	}

	for i, el := range genCtx.Elements {
		if el.Locator == selector {
			return variableName(el, i), true
		}
	}

	return "", false
}

func stepSelector(step entity.TestStep) string {
	if step.Locator != nil && step.Locator.Primary != "" {
		return step.Locator.Primary
	}

	return step.Selector
}

func stepExpected(step entity.TestStep) string {
	if step.Assertion != nil {
		return step.Assertion.Expected
	}

	return step.Value
}

func stepAttribute(step entity.TestStep) string {
	if step.Assertion != nil {
		return step.Assertion.Attribute
	}

	return ""
}
