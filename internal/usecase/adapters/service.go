package adapters

import (
	"context"

	"testforge/internal/entity"
)

type BrowserService interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	Screenshot(ctx context.Context, path string) error
	CurrentURL(ctx context.Context) (string, error)
	IsReady() bool
}

type ScenarioService interface {
	StartScenario(name, description string) *entity.TestScenario
	Current() *entity.TestScenario
	Snapshot() *entity.TestScenario
	AppendStep(step entity.TestStep) (*entity.TestStep, error)
	InsertStep(index int, step entity.TestStep) (*entity.TestStep, error)
	MoveStep(from, to int) error
	DeleteStep(index int) error
	Steps() []entity.TestStep
}

type PickerService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// StudioService drives end-to-end code generation for the recorded scenario
// and writes the artifacts out.
type StudioService interface {
	GenerateCode(ctx context.Context) (*entity.GenerationOutcome, []string, error)
}

type CredentialService interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}
