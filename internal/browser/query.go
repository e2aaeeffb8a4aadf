package browser

import (
	"context"
	"fmt"

	"testforge/pkg/apperr"
	"testforge/pkg/logg"
	"testforge/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// countMatchesScript counts live elements matching the selector. XPath
// expressions are routed through document.evaluate, everything else through
// querySelectorAll. A return of -1 marks a query execution failure so the
// caller can tell it apart from a legitimate zero count.
const countMatchesScript = `(() => {
	try {
		const sel = "%s";
		if (sel.startsWith('/') || sel.startsWith('(')) {
			const snapshot = document.evaluate(sel, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
			return snapshot.snapshotLength;
		}
		return document.querySelectorAll(sel).length;
	} catch (e) {
		return -1;
	}
})()`

// CountMatches expects a selector already escaped for embedding in a
// double-quoted query literal.
func (m *Manager) CountMatches(ctx context.Context, selector string) (count int, err error) {
	const op = "CountMatches"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Locator, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op,
		attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	result, err := m.EvaluateJS(ctx, fmt.Sprintf(countMatchesScript, selector))
	if err != nil {
		return 0, apperr.Wrap(op, apperr.CodeQueryFailed, err, map[string]any{
			apperr.MetaReason:   "evaluate_failed",
			apperr.MetaStage:    apperr.StageBrowser,
			apperr.MetaSelector: selector,
		})
	}

	count = toInt(result)
	if count < 0 {
		return 0, apperr.WrapErrorWithReason(op, apperr.CodeQueryFailed, "selector query failed in page")
	}

	step.SetAttributes(attribute.Int("match_count", count))

	return count, nil
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return -1
	}
}
