package scenario

import (
	"testing"

	"testforge/internal/entity"
	"testforge/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService() *Service {
	return NewService(Params{Logger: zap.NewNop()})
}

func orderedActions(t *testing.T, s *Service) []entity.ActionKind {
	t.Helper()

	steps := s.Steps()
	actions := make([]entity.ActionKind, 0, len(steps))

	for i, step := range steps {
		require.Equal(t, i, step.OrderIndex, "order index must stay contiguous")
		actions = append(actions, step.Action)
	}

	return actions
}

func TestAppendStepAssignsOrderAndIdentity(t *testing.T) {
	s := newService()
	s.StartScenario("login", "")

	first, err := s.AppendStep(entity.TestStep{Action: entity.ActionNavigate, Value: "https://example.test"})
	require.NoError(t, err)

	second, err := s.AppendStep(entity.TestStep{Action: entity.ActionClick, Selector: "#login"})
	require.NoError(t, err)

	assert.Equal(t, 0, first.OrderIndex)
	assert.Equal(t, 1, second.OrderIndex)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.RecordedAt.IsZero())
}

func TestAppendStepWithoutScenario(t *testing.T) {
	s := newService()

	_, err := s.AppendStep(entity.TestStep{Action: entity.ActionClick})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestInsertStepShiftsAndReindexes(t *testing.T) {
	s := newService()
	s.StartScenario("checkout", "")

	_, err := s.AppendStep(entity.TestStep{Action: entity.ActionNavigate})
	require.NoError(t, err)
	_, err = s.AppendStep(entity.TestStep{Action: entity.ActionClick})
	require.NoError(t, err)

	_, err = s.InsertStep(1, entity.TestStep{Action: entity.ActionTypeText, Value: "user"})
	require.NoError(t, err)

	assert.Equal(t,
		[]entity.ActionKind{entity.ActionNavigate, entity.ActionTypeText, entity.ActionClick},
		orderedActions(t, s))
}

func TestInsertStepAtEndIsAppend(t *testing.T) {
	s := newService()
	s.StartScenario("checkout", "")

	_, err := s.AppendStep(entity.TestStep{Action: entity.ActionNavigate})
	require.NoError(t, err)

	_, err = s.InsertStep(1, entity.TestStep{Action: entity.ActionScreenshot})
	require.NoError(t, err)

	assert.Equal(t,
		[]entity.ActionKind{entity.ActionNavigate, entity.ActionScreenshot},
		orderedActions(t, s))
}

func TestInsertStepOutOfRange(t *testing.T) {
	s := newService()
	s.StartScenario("checkout", "")

	_, err := s.InsertStep(5, entity.TestStep{Action: entity.ActionClick})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}

func TestMoveStepForwardAndBack(t *testing.T) {
	s := newService()
	s.StartScenario("reorder", "")

	for _, action := range []entity.ActionKind{entity.ActionNavigate, entity.ActionClick, entity.ActionTypeText, entity.ActionAssertVisible} {
		_, err := s.AppendStep(entity.TestStep{Action: action})
		require.NoError(t, err)
	}

	require.NoError(t, s.MoveStep(0, 2))
	assert.Equal(t,
		[]entity.ActionKind{entity.ActionClick, entity.ActionTypeText, entity.ActionNavigate, entity.ActionAssertVisible},
		orderedActions(t, s))

	require.NoError(t, s.MoveStep(2, 0))
	assert.Equal(t,
		[]entity.ActionKind{entity.ActionNavigate, entity.ActionClick, entity.ActionTypeText, entity.ActionAssertVisible},
		orderedActions(t, s))
}

func TestMoveStepSamePositionIsNoop(t *testing.T) {
	s := newService()
	s.StartScenario("reorder", "")

	_, err := s.AppendStep(entity.TestStep{Action: entity.ActionClick})
	require.NoError(t, err)

	require.NoError(t, s.MoveStep(0, 0))
	assert.Equal(t, []entity.ActionKind{entity.ActionClick}, orderedActions(t, s))
}

func TestDeleteStepClosesGap(t *testing.T) {
	s := newService()
	s.StartScenario("trim", "")

	for _, action := range []entity.ActionKind{entity.ActionNavigate, entity.ActionClick, entity.ActionAssertText} {
		_, err := s.AppendStep(entity.TestStep{Action: action})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteStep(1))

	assert.Equal(t,
		[]entity.ActionKind{entity.ActionNavigate, entity.ActionAssertText},
		orderedActions(t, s))
}

func TestDeleteStepOutOfRange(t *testing.T) {
	s := newService()
	s.StartScenario("trim", "")

	err := s.DeleteStep(0)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}

func TestSnapshotIsDetached(t *testing.T) {
	s := newService()
	s.StartScenario("snapshot", "")

	_, err := s.AppendStep(entity.TestStep{Action: entity.ActionNavigate})
	require.NoError(t, err)

	snap := s.Snapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Steps, 1)

	_, err = s.AppendStep(entity.TestStep{Action: entity.ActionClick})
	require.NoError(t, err)

	assert.Len(t, snap.Steps, 1, "snapshot must not observe later edits")
	assert.Len(t, s.Steps(), 2)
}

func TestStartScenarioReplacesCurrent(t *testing.T) {
	s := newService()
	first := s.StartScenario("one", "")

	_, err := s.AppendStep(entity.TestStep{Action: entity.ActionClick})
	require.NoError(t, err)

	second := s.StartScenario("two", "")

	assert.NotEqual(t, first.ID, second.ID)
	assert.Empty(t, s.Steps())
}
