package locator

import (
	"context"
	"strings"

	"testforge/pkg/logg"
	"testforge/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// EscapeQuotes prepares raw locator text for embedding in the DOM query.
// Both quote styles are escaped because the query wraps the literal in
// whichever quote the selector itself does not use.
func EscapeQuotes(locator string) string {
	escaped := strings.ReplaceAll(locator, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)

	return escaped
}

// IsUnique probes the live DOM for the number of elements matching the
// locator. Exactly one match counts as unique; zero, several, or a query
// failure all report non-unique. A failed query is logged apart from a
// legitimate zero count, but neither passes the test. The probe never
// mutates a LocatorDefinition; replacing a non-unique primary is a user
// action, not the resolver's.
func (r *Resolver) IsUnique(ctx context.Context, locatorValue string) bool {
	const op = "IsUnique"
	logger := r.logger.With(zap.String(logg.Operation, op), zap.String(logg.Locator, locatorValue))

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op,
		attribute.String("locator", locatorValue))

	count, err := r.querier.CountMatches(ctx, EscapeQuotes(locatorValue))
	if err != nil {
		logger.Warn("Uniqueness probe failed, treating locator as non-unique", zap.Error(err))
		step.End(err)

		return false
	}

	step.SetAttributes(attribute.Int("match_count", count))
	step.End(nil)

	switch {
	case count == 1:
		return true
	case count == 0:
		logger.Info("Locator matched no elements")

		return false
	default:
		logger.Info("Locator is not unique", zap.Int("match_count", count))

		return false
	}
}
