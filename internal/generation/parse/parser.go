package parse

import (
	"fmt"
	"regexp"
	"strings"

	"testforge/internal/entity"
	"testforge/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	parserName = "ResponseParser"

	// Pseudo-blocks recovered by the loose heuristic are dropped below this
	// length; anything shorter is noise, not a code artifact.
	minUsefulBlockLen = 50

	// ErrNoCodeBlocks is the parse-failure message surfaced to the repair
	// loop when nothing extractable was found.
	ErrNoCodeBlocks = "no code blocks found in response"
)

var fencedBlockRe = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")

// blockKind is the structural classification of one extracted code block.
type blockKind int

const (
	kindUnclassified blockKind = iota
	kindPageObject
	kindTest
)

// Parser extracts candidate code blocks from raw generated text and
// assembles them into a GenerationOutcome. Parsing is a pure function of
// its input text.
type Parser struct {
	logger *zap.Logger
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func NewParser(params Params) *Parser {
	return &Parser{
		logger: params.Logger.With(zap.String(logg.Layer, parserName)),
	}
}

// Parse extracts fenced code regions (falling back to a loose class-marker
// heuristic), classifies each as page object or test by structural signals,
// and pairs them up. A missing page object is synthesized; a missing test
// falls back to the largest block; no blocks at all is a parse failure.
func (p *Parser) Parse(rawText, pageObjectHint, testHint string) *entity.GenerationOutcome {
	blocks := extractFencedBlocks(rawText)
	if len(blocks) == 0 {
		blocks = extractLooseBlocks(rawText)
	}

	if len(blocks) == 0 {
		p.logger.Debug("Response contained no extractable code blocks",
			zap.Int("response_len", len(rawText)))

		return &entity.GenerationOutcome{
			Success:      false,
			ErrorMessage: ErrNoCodeBlocks,
		}
	}

	var testBlock, pageObjectBlock string

	for _, block := range blocks {
		switch classify(block, pageObjectHint, testHint) {
		case kindTest:
			if testBlock == "" {
				testBlock = block
			}
		case kindPageObject:
			if pageObjectBlock == "" {
				pageObjectBlock = block
			}
		}
	}

	// Last resort: nothing carried a test signal, so the largest block is
	// treated as the test artifact.
	if testBlock == "" {
		testBlock = largestBlock(blocks)

		if testBlock == pageObjectBlock {
			pageObjectBlock = ""
		}
	}

	if pageObjectBlock == "" {
		pageObjectBlock = synthesizePageObject(pageObjectHint)
	}

	return &entity.GenerationOutcome{
		PageObjectCode: pageObjectBlock,
		TestCode:       testBlock,
		Success:        true,
	}
}

// extractFencedBlocks captures the inner text of every triple-backtick
// region in document order. The language tag is ignored; empty regions are
// dropped.
func extractFencedBlocks(rawText string) []string {
	matches := fencedBlockRe.FindAllStringSubmatch(rawText, -1)

	var blocks []string

	for _, match := range matches {
		inner := strings.TrimSpace(match[1])
		if inner != "" {
			blocks = append(blocks, inner)
		}
	}

	return blocks
}

// looseMarkers open a pseudo-block when no fenced regions exist. They cover
// class/function/module openers of the mainstream target languages.
var looseMarkers = []string{
	"public class ",
	"class ",
	"export class ",
	"export default class ",
	"function ",
	"def ",
	"module ",
	"package ",
}

func hasLooseMarker(line string) bool {
	trimmed := strings.TrimSpace(line)

	for _, marker := range looseMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}

	return false
}

// extractLooseBlocks slices contiguous runs starting at marker lines and
// ending just before the next marker (or the text's end), dropping any
// candidate shorter than the minimum useful length.
func extractLooseBlocks(rawText string) []string {
	lines := strings.Split(rawText, "\n")

	var markerIdx []int

	for i, line := range lines {
		if hasLooseMarker(line) {
			markerIdx = append(markerIdx, i)
		}
	}

	var blocks []string

	for i, start := range markerIdx {
		end := len(lines)
		if i+1 < len(markerIdx) {
			end = markerIdx[i+1]
		}

		candidate := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if len(candidate) >= minUsefulBlockLen {
			blocks = append(blocks, candidate)
		}
	}

	return blocks
}

// testSignals are call patterns and annotation markers of common test
// frameworks. Matching any of them classifies a block as the test artifact.
var testSignals = []string{
	"@Test",
	"@BeforeMethod",
	"@pytest",
	"[Test]",
	"test(",
	"test.describe(",
	"describe(",
	"it(",
	"func Test",
}

// pageObjectSignals are field-declaration patterns referencing a
// browser-driver handle or locator-holding types.
var pageObjectSignals = []string{
	"WebDriver ",
	"WebElement",
	"@FindBy",
	"PageFactory",
	"page.locator(",
	"Locator ",
	"readonly Locator",
	"By.",
}

// classify decides page object vs test by structural signal, never by name.
// Test signals are checked first because test classes routinely also hold a
// driver field. A block matching no signal whose name hint also does not
// literally appear stays unclassified.
func classify(block, pageObjectHint, testHint string) blockKind {
	for _, signal := range testSignals {
		if strings.Contains(block, signal) {
			return kindTest
		}
	}

	for _, signal := range pageObjectSignals {
		if strings.Contains(block, signal) {
			return kindPageObject
		}
	}

	if testHint != "" && strings.Contains(block, testHint) {
		return kindTest
	}

	if pageObjectHint != "" && strings.Contains(block, pageObjectHint) {
		return kindPageObject
	}

	return kindUnclassified
}

func largestBlock(blocks []string) string {
	largest := ""

	for _, block := range blocks {
		if len(block) > len(largest) {
			largest = block
		}
	}

	return largest
}

// synthesizePageObject emits the minimal placeholder page object: driver
// field, constructor taking the driver, element initialization call.
func synthesizePageObject(className string) string {
	if className == "" {
		className = "GeneratedPage"
	}

	return fmt.Sprintf(`public class %s {
    private WebDriver driver;

    public %s(WebDriver driver) {
        this.driver = driver;
        PageFactory.initElements(driver, this);
    }
}`, className, className)
}
