package locator

import (
	"fmt"
	"strings"
	"time"

	"testforge/internal/entity"
	"testforge/internal/ports"
	"testforge/pkg/logg"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	resolverName   = "LocatorResolver"
	resolverTracer = "locator.resolver"

	attrDataQA     = "data-qa"
	attrDataTestID = "data-testid"
)

// Resolver turns an ElementDescriptor into a prioritized LocatorDefinition.
// Resolution itself is deterministic; only the uniqueness probe talks to the
// browser host.
type Resolver struct {
	logger  *zap.Logger
	tracer  trace.Tracer
	querier ports.DOMQuerier
}

type Params struct {
	fx.In

	Logger  *zap.Logger
	Querier ports.DOMQuerier
}

func NewResolver(params Params) *Resolver {
	return &Resolver{
		logger:  params.Logger.With(zap.String(logg.Layer, resolverName)),
		tracer:  otel.Tracer(resolverTracer),
		querier: params.Querier,
	}
}

// Resolve never fails: a descriptor with no identifiable attributes yields a
// definition with an empty primary and whatever alternatives exist. Callers
// must treat an empty primary as resolution failure.
func (r *Resolver) Resolve(desc *entity.ElementDescriptor) *entity.LocatorDefinition {
	def := &entity.LocatorDefinition{
		CreatedAt: time.Now(),
	}

	def.Primary, def.Kind = r.resolvePrimary(desc)

	candidates := deriveCandidates(desc)
	seen := map[string]bool{def.Primary: true}

	for _, cand := range candidates {
		if seen[cand.Value] {
			continue
		}

		seen[cand.Value] = true
		def.Alternatives = append(def.Alternatives, cand.Value)
		def.TypedAlts = append(def.TypedAlts, cand)
	}

	if !def.IsResolved() {
		r.logger.Debug("Descriptor has no identifying fields, primary left empty",
			zap.String("tag", desc.TagName))
	}

	return def
}

// resolvePrimary walks the priority chain: id, name, data-qa, data-testid,
// then the pre-computed css selector and xpath. First non-empty field wins,
// no backtracking. data-testid is checked before the css field even when the
// css field is populated.
func (r *Resolver) resolvePrimary(desc *entity.ElementDescriptor) (string, entity.LocatorKind) {
	switch {
	case desc.ElementID != "":
		return "#" + desc.ElementID, entity.LocatorKindID
	case desc.Name != "":
		return fmt.Sprintf("[name='%s']", desc.Name), entity.LocatorKindName
	case desc.Attributes[attrDataQA] != "":
		return fmt.Sprintf("[%s='%s']", attrDataQA, desc.Attributes[attrDataQA]), entity.LocatorKindDataQA
	case desc.Attributes[attrDataTestID] != "":
		return fmt.Sprintf("[%s='%s']", attrDataTestID, desc.Attributes[attrDataTestID]), entity.LocatorKindDataTestID
	case desc.CSSSelector != "":
		return desc.CSSSelector, entity.LocatorKindCSS
	case desc.XPath != "":
		return desc.XPath, entity.LocatorKindXPath
	default:
		return "", ""
	}
}

// deriveCandidates computes every locator form the descriptor supports,
// independent of which one became primary, in fixed construction order.
func deriveCandidates(desc *entity.ElementDescriptor) []entity.TypedLocator {
	var out []entity.TypedLocator

	if desc.ElementID != "" {
		out = append(out, entity.TypedLocator{Kind: entity.LocatorKindID, Value: "#" + desc.ElementID})
	}

	if desc.Name != "" {
		out = append(out, entity.TypedLocator{
			Kind:  entity.LocatorKindName,
			Value: fmt.Sprintf("[name='%s']", desc.Name),
		})
	}

	if v := desc.Attributes[attrDataQA]; v != "" {
		out = append(out, entity.TypedLocator{
			Kind:  entity.LocatorKindDataQA,
			Value: fmt.Sprintf("[%s='%s']", attrDataQA, v),
		})
	}

	if v := desc.Attributes[attrDataTestID]; v != "" {
		out = append(out, entity.TypedLocator{
			Kind:  entity.LocatorKindDataTestID,
			Value: fmt.Sprintf("[%s='%s']", attrDataTestID, v),
		})
	}

	if desc.CSSSelector != "" {
		out = append(out, entity.TypedLocator{Kind: entity.LocatorKindCSS, Value: desc.CSSSelector})
	}

	if desc.XPath != "" {
		out = append(out, entity.TypedLocator{Kind: entity.LocatorKindXPath, Value: desc.XPath})
	}

	if compound := classCompound(desc); compound != "" {
		out = append(out, entity.TypedLocator{Kind: entity.LocatorKindCSS, Value: compound})
	}

	return out
}

// classCompound builds the tag.class1.class2 form when any class names exist.
func classCompound(desc *entity.ElementDescriptor) string {
	if len(desc.Classes) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(desc.TagName)

	seen := make(map[string]bool, len(desc.Classes))

	for _, class := range desc.Classes {
		if class == "" || seen[class] {
			continue
		}

		seen[class] = true
		b.WriteString(".")
		b.WriteString(class)
	}

	if b.Len() == len(desc.TagName) {
		return ""
	}

	return b.String()
}
