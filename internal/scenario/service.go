package scenario

import (
	"errors"
	"sync"
	"time"

	"testforge/internal/entity"
	"testforge/pkg/apperr"
	"testforge/pkg/logg"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const serviceName = "ScenarioService"

// Service keeps the single scenario being recorded in the current session.
// Steps stay ordered by OrderIndex, contiguous and zero-based across every
// edit. Picker callbacks arrive on browser goroutines, so all access goes
// through the mutex.
type Service struct {
	logger *zap.Logger

	mu      sync.Mutex
	current *entity.TestScenario
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func NewService(params Params) *Service {
	return &Service{
		logger: params.Logger.With(zap.String(logg.Layer, serviceName)),
	}
}

// StartScenario replaces the current scenario with a fresh empty one.
func (s *Service) StartScenario(name, description string) *entity.TestScenario {
	const op = "StartScenario"

	now := time.Now()
	sc := &entity.TestScenario{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Steps:       make([]entity.TestStep, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.current = sc
	s.mu.Unlock()

	s.logger.Info("scenario started",
		zap.String(logg.Operation, op),
		zap.String(logg.ScenarioID, sc.ID.String()),
		zap.String("name", name))

	return sc
}

// Current returns the scenario being recorded, or nil before StartScenario.
func (s *Service) Current() *entity.TestScenario {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Snapshot returns a copy of the current scenario with its own steps slice,
// safe to hand to the generation pipeline while recording continues.
func (s *Service) Snapshot() *entity.TestScenario {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	copied := *s.current
	copied.Steps = make([]entity.TestStep, len(s.current.Steps))
	copy(copied.Steps, s.current.Steps)

	return &copied
}

// AppendStep adds the step at the end of the scenario and stamps its
// OrderIndex and RecordedAt.
func (s *Service) AppendStep(step entity.TestStep) (*entity.TestStep, error) {
	const op = "AppendStep"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeNotFound, "no active scenario")
	}

	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}

	if step.RecordedAt.IsZero() {
		step.RecordedAt = time.Now()
	}

	step.OrderIndex = len(s.current.Steps)
	s.current.Steps = append(s.current.Steps, step)
	s.current.UpdatedAt = time.Now()

	s.logger.Info("step appended",
		zap.String(logg.Operation, op),
		zap.String(logg.ScenarioID, s.current.ID.String()),
		zap.String(logg.StepID, step.ID.String()),
		zap.String("action", string(step.Action)),
		zap.Int("order_index", step.OrderIndex))

	return &s.current.Steps[step.OrderIndex], nil
}

// InsertStep places the step at position index, shifting later steps down.
// index may equal the current length, which is an append.
func (s *Service) InsertStep(index int, step entity.TestStep) (*entity.TestStep, error) {
	const op = "InsertStep"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeNotFound, "no active scenario")
	}

	if index < 0 || index > len(s.current.Steps) {
		return nil, apperr.InvalidReqError(op, "index", errors.New("step index out of range"))
	}

	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}

	if step.RecordedAt.IsZero() {
		step.RecordedAt = time.Now()
	}

	steps := s.current.Steps
	steps = append(steps, entity.TestStep{})
	copy(steps[index+1:], steps[index:])
	steps[index] = step
	s.current.Steps = steps

	s.reindexLocked()
	s.current.UpdatedAt = time.Now()

	s.logger.Info("step inserted",
		zap.String(logg.Operation, op),
		zap.String(logg.ScenarioID, s.current.ID.String()),
		zap.String(logg.StepID, step.ID.String()),
		zap.Int("order_index", index))

	return &s.current.Steps[index], nil
}

// MoveStep relocates the step at from to position to, shifting the steps in
// between.
func (s *Service) MoveStep(from, to int) error {
	const op = "MoveStep"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return apperr.WrapErrorWithReason(op, apperr.CodeNotFound, "no active scenario")
	}

	n := len(s.current.Steps)
	if from < 0 || from >= n {
		return apperr.InvalidReqError(op, "from", errors.New("step index out of range"))
	}

	if to < 0 || to >= n {
		return apperr.InvalidReqError(op, "to", errors.New("step index out of range"))
	}

	if from == to {
		return nil
	}

	steps := s.current.Steps
	moved := steps[from]

	if from < to {
		copy(steps[from:], steps[from+1:to+1])
	} else {
		copy(steps[to+1:], steps[to:from])
	}

	steps[to] = moved

	s.reindexLocked()
	s.current.UpdatedAt = time.Now()

	s.logger.Info("step moved",
		zap.String(logg.Operation, op),
		zap.String(logg.ScenarioID, s.current.ID.String()),
		zap.Int("from", from),
		zap.Int("to", to))

	return nil
}

// DeleteStep removes the step at index and closes the gap.
func (s *Service) DeleteStep(index int) error {
	const op = "DeleteStep"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return apperr.WrapErrorWithReason(op, apperr.CodeNotFound, "no active scenario")
	}

	if index < 0 || index >= len(s.current.Steps) {
		return apperr.InvalidReqError(op, "index", errors.New("step index out of range"))
	}

	removed := s.current.Steps[index]
	s.current.Steps = append(s.current.Steps[:index], s.current.Steps[index+1:]...)

	s.reindexLocked()
	s.current.UpdatedAt = time.Now()

	s.logger.Info("step deleted",
		zap.String(logg.Operation, op),
		zap.String(logg.ScenarioID, s.current.ID.String()),
		zap.String(logg.StepID, removed.ID.String()),
		zap.Int("order_index", index))

	return nil
}

// Steps returns a copy of the recorded steps in order.
func (s *Service) Steps() []entity.TestStep {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	out := make([]entity.TestStep, len(s.current.Steps))
	copy(out, s.current.Steps)

	return out
}

func (s *Service) reindexLocked() {
	for i := range s.current.Steps {
		s.current.Steps[i].OrderIndex = i
	}
}
