package picker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"testforge/internal/entity"
	"testforge/internal/locator"
	"testforge/internal/ports"
	"testforge/internal/scenario"
	"testforge/pkg/apperr"
	"testforge/pkg/logg"
	"testforge/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	serviceName   = "PickerService"
	serviceTracer = "picker.service"

	// probeTimeout bounds the uniqueness probe fired from a browser
	// callback, which carries no caller deadline.
	probeTimeout = 5 * time.Second
)

var errEmptyTag = errors.New("payload has no tag name")

// rawPayload mirrors the JSON produced by the in-page picker script.
type rawPayload struct {
	TagName     string            `json:"tag_name"`
	ElementID   string            `json:"element_id"`
	Name        string            `json:"name"`
	Classes     []string          `json:"classes"`
	Attributes  map[string]string `json:"attributes"`
	InnerText   string            `json:"inner_text"`
	CSSSelector string            `json:"css_selector"`
	XPath       string            `json:"xpath"`
	Rect        rawRect           `json:"rect"`
	FrameChain  []string          `json:"frame_chain"`
}

type rawRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Service turns picked-element payloads arriving from the page into scenario
// steps carrying resolved locators.
type Service struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	browser   ports.BrowserManager
	resolver  *locator.Resolver
	scenarios *scenario.Service
}

type Params struct {
	fx.In

	Logger    *zap.Logger
	Browser   ports.BrowserManager
	Resolver  *locator.Resolver
	Scenarios *scenario.Service
}

func NewService(params Params) *Service {
	return &Service{
		logger:    params.Logger.With(zap.String(logg.Layer, serviceName)),
		tracer:    otel.Tracer(serviceTracer),
		browser:   params.Browser,
		resolver:  params.Resolver,
		scenarios: params.Scenarios,
	}
}

// Start injects the picker into the current page. Subsequent clicks on the
// page arrive as payloads and become click steps on the current scenario.
func (s *Service) Start(ctx context.Context) (err error) {
	const op = "Start"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if s.scenarios.Current() == nil {
		return apperr.WrapErrorWithReason(op, apperr.CodeNotFound, "no active scenario")
	}

	err = s.browser.StartPicking(ctx, func(payload []byte) {
		// The browser delivers payloads on its own goroutine with no
		// deadline attached.
		probeCtx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		if _, handleErr := s.HandlePayload(probeCtx, payload); handleErr != nil {
			logger.Error("Failed to record picked element", zap.Error(handleErr))
		}
	})
	if err != nil {
		return apperr.WrapWithReason(op, apperr.CodeBrowserNotReady, err, "picker_injection_failed")
	}

	logger.Info("Element picking started")

	return nil
}

// Stop removes the picker from the page.
func (s *Service) Stop(ctx context.Context) (err error) {
	const op = "Stop"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if err = s.browser.StopPicking(ctx); err != nil {
		return apperr.WrapWithReason(op, apperr.CodeBrowserNotReady, err, "picker_teardown_failed")
	}

	logger.Info("Element picking stopped")

	return nil
}

// HandlePayload decodes one picked-element payload, resolves its locator,
// probes uniqueness and appends a click step to the current scenario. A
// non-unique primary is recorded anyway; the probe result is informational.
func (s *Service) HandlePayload(ctx context.Context, payload []byte) (recorded *entity.TestStep, err error) {
	const op = "HandlePayload"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	desc, err := s.decodePayload(payload)
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String(logg.ElementID, desc.ID.String()), zap.String("tag", desc.TagName))
	step.SetAttributes(attribute.String("tag", desc.TagName))

	def := s.resolver.Resolve(desc)
	if !def.IsResolved() {
		return nil, apperr.Wrap(op, apperr.CodeNotFound, nil, map[string]any{
			apperr.MetaReason:  "no_locator_resolved",
			apperr.MetaElement: desc.ID.String(),
			apperr.MetaStage:   apperr.StageLocator,
		})
	}

	if !s.resolver.IsUnique(ctx, def.Primary) {
		logger.Warn("Primary locator is not unique on the current page",
			zap.String(logg.Locator, def.Primary))
	}

	recorded, err = s.scenarios.AppendStep(entity.TestStep{
		Action:      entity.ActionClick,
		ElementType: desc.TagName,
		Selector:    def.Primary,
		Locator:     def,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Picked element recorded",
		zap.String(logg.StepID, recorded.ID.String()),
		zap.String(logg.Locator, def.Primary),
		zap.String("kind", string(def.Kind)))

	return recorded, nil
}

func (s *Service) decodePayload(payload []byte) (*entity.ElementDescriptor, error) {
	const op = "decodePayload"

	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInvalidArgument, err, map[string]any{
			apperr.MetaReason: "malformed_picker_payload",
			apperr.MetaStage:  apperr.StagePicker,
		})
	}

	if raw.TagName == "" {
		return nil, apperr.InvalidReqError(op, "tag_name", errEmptyTag)
	}

	attrs := raw.Attributes
	if attrs == nil {
		attrs = make(map[string]string)
	}

	return &entity.ElementDescriptor{
		ID:          uuid.New(),
		TagName:     raw.TagName,
		ElementID:   raw.ElementID,
		Name:        raw.Name,
		Classes:     raw.Classes,
		Attributes:  attrs,
		InnerText:   raw.InnerText,
		CSSSelector: raw.CSSSelector,
		XPath:       raw.XPath,
		Rect: entity.BoundingRect{
			X:      raw.Rect.X,
			Y:      raw.Rect.Y,
			Width:  raw.Rect.Width,
			Height: raw.Rect.Height,
		},
		FrameChain: raw.FrameChain,
		CapturedAt: time.Now(),
	}, nil
}
