package usecase

import (
	"testforge/internal/config"
	"testforge/internal/picker"
	"testforge/internal/ports"
	"testforge/internal/scenario"
	"testforge/internal/usecase/adapters"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	Studio      adapters.StudioService
	Browser     adapters.BrowserService
	Scenarios   adapters.ScenarioService
	Picker      adapters.PickerService
	Credentials adapters.CredentialService
}

type Params struct {
	fx.In

	Logger      *zap.Logger
	Config      *config.Config
	Browser     ports.BrowserManager
	Scenarios   *scenario.Service
	Picker      *picker.Service
	Generator   ports.CodeGenerator
	Credentials ports.CredentialStore
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)

	return &Service{
		Studio:      factory.CreateStudioService(),
		Browser:     factory.CreateBrowserService(),
		Scenarios:   factory.CreateScenarioService(),
		Picker:      factory.CreatePickerService(),
		Credentials: factory.CreateCredentialService(),
	}
}
