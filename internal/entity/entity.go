package entity

import (
	"time"

	"github.com/google/uuid"
)

// LocatorKind identifies which element attribute a locator was derived from.
type LocatorKind string

const (
	LocatorKindID         LocatorKind = "id"
	LocatorKindName       LocatorKind = "name"
	LocatorKindDataQA     LocatorKind = "data-qa"
	LocatorKindDataTestID LocatorKind = "data-testid"
	LocatorKindCSS        LocatorKind = "css"
	LocatorKindXPath      LocatorKind = "xpath"
)

// BoundingRect is the element's layout box at selection time, in CSS pixels.
type BoundingRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// ElementDescriptor is the snapshot of one DOM element taken when the user
// picks it on the page. It is created once per selection event and never
// mutated afterwards.
type ElementDescriptor struct {
	ID          uuid.UUID
	TagName     string
	ElementID   string
	Name        string
	Classes     []string
	Attributes  map[string]string
	InnerText   string
	CSSSelector string
	XPath       string
	Rect        BoundingRect
	FrameChain  []string
	CapturedAt  time.Time
}

// TypedLocator pairs a locator value with the kind it was derived from.
type TypedLocator struct {
	Kind  LocatorKind
	Value string
}

// LocatorDefinition is the resolver's output for one element. Write-once
// except through an explicit user edit, which must set UserModified.
type LocatorDefinition struct {
	Primary      string
	Kind         LocatorKind
	Alternatives []string
	TypedAlts    []TypedLocator
	UserModified bool
	CreatedAt    time.Time
}

// IsResolved reports whether the priority chain produced a usable primary.
func (d *LocatorDefinition) IsResolved() bool {
	return d.Primary != ""
}

type ActionKind string

const (
	ActionClick           ActionKind = "click"
	ActionTypeText        ActionKind = "type_text"
	ActionSelect          ActionKind = "select"
	ActionHover           ActionKind = "hover"
	ActionNavigate        ActionKind = "navigate"
	ActionAssertVisible   ActionKind = "assert_visible"
	ActionAssertText      ActionKind = "assert_text"
	ActionAssertAttribute ActionKind = "assert_attribute"
	ActionWait            ActionKind = "wait"
	ActionUpload          ActionKind = "upload"
	ActionScreenshot      ActionKind = "screenshot"
)

type AssertionKind string

const (
	AssertVisible   AssertionKind = "visible"
	AssertText      AssertionKind = "text"
	AssertAttribute AssertionKind = "attribute"
)

// AssertionRule describes the expectation carried by assert-* steps.
type AssertionRule struct {
	Kind      AssertionKind
	Expected  string
	Attribute string
}

// TestStep is one recorded scenario action. OrderIndex is the sole ordering
// key; the scenario keeps it contiguous and zero-based across edits.
type TestStep struct {
	ID          uuid.UUID
	Action      ActionKind
	ElementType string
	Selector    string
	Locator     *LocatorDefinition
	Value       string
	Assertion   *AssertionRule
	OrderIndex  int
	RecordedAt  time.Time
}

type TestScenario struct {
	ID          uuid.UUID
	Name        string
	Description string
	Steps       []TestStep
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ElementWithLocator is the flattened element view handed to prompt
// rendering and template substitution.
type ElementWithLocator struct {
	ElementID    uuid.UUID
	ElementType  string
	Locator      string
	LocatorKind  LocatorKind
	VariableName string
}

// GenerationContext is the unit of work handed to the generation pipeline.
type GenerationContext struct {
	Scenario            *TestScenario
	Framework           string
	PageObjectClassName string
	TestClassName       string
	PackageName         string
	Elements            []ElementWithLocator
}

// ValidationResult carries the verdict of the structural code checks.
// Failures are the only channel feeding the repair loop, so each entry must
// describe one concrete missing signal.
type ValidationResult struct {
	IsValid  bool
	Failures []string
}

// GenerationOutcome is the pipeline's final product for one request.
type GenerationOutcome struct {
	Framework      string
	PageObjectCode string
	TestCode       string
	Success        bool
	ErrorMessage   string
	CompletedAt    time.Time
}

// GenerationResponse is what a text-generation provider returns for one call.
type GenerationResponse struct {
	Content      string
	TotalTokens  int
	FinishReason string
}
