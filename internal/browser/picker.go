package browser

import (
	"context"

	"testforge/pkg/apperr"
	"testforge/pkg/logg"
	"testforge/pkg/tracing"

	"go.uber.org/zap"
)

// StartPicking injects the visual element-picker into the current page and
// routes every selection payload to onPick. The binding survives page
// lifetime, so the callback is swapped under a lock instead of re-exposing.
func (m *Manager) StartPicking(ctx context.Context, onPick func(payload []byte)) (err error) {
	const op = "StartPicking"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if !m.ready {
		return apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	if err := m.ensurePageActive(ctx); err != nil {
		return apperr.Wrap(op, apperr.CodeBrowserNotReady, err, map[string]any{
			apperr.MetaReason: "page_not_active",
		})
	}

	m.pickMu.Lock()
	m.onPick = onPick

	if !m.bindingExposed {
		err = m.page.ExposeFunction(pickBindingName, func(args ...interface{}) interface{} {
			if len(args) == 0 {
				return nil
			}

			payload, ok := args[0].(string)
			if !ok {
				return nil
			}

			m.pickMu.Lock()
			handler := m.onPick
			m.pickMu.Unlock()

			if handler != nil {
				handler([]byte(payload))
			}

			return nil
		})
		if err != nil {
			m.pickMu.Unlock()

			return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaReason: "expose_function_failed",
				apperr.MetaStage:  apperr.StagePicker,
			})
		}

		m.bindingExposed = true
	}
	m.pickMu.Unlock()

	step.AddEvent("injecting picker script")

	if _, err := m.EvaluateJS(ctx, getPickerScript()); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "picker_inject_failed",
			apperr.MetaStage:  apperr.StagePicker,
		})
	}

	logger.Info("Element picking started")

	return nil
}

func (m *Manager) StopPicking(ctx context.Context) (err error) {
	const op = "StopPicking"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	m.pickMu.Lock()
	m.onPick = nil
	m.pickMu.Unlock()

	if !m.ready {
		return nil
	}

	if _, err := m.EvaluateJS(ctx, stopPickerScript); err != nil {
		logger.Warn("Failed to tear down picker script", zap.Error(err))
	}

	logger.Info("Element picking stopped")

	return nil
}
