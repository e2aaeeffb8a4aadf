package usecase

import (
	"testforge/internal/usecase/adapters"
)

type serviceFactory struct {
	deps Params
}

func newServiceFactory(deps Params) *serviceFactory {
	return &serviceFactory{
		deps: deps,
	}
}

func (f *serviceFactory) CreateStudioService() adapters.StudioService {
	return NewStudio(StudioParams{
		Config:    f.deps.Config,
		Logger:    f.deps.Logger,
		Scenarios: f.deps.Scenarios,
		Generator: f.deps.Generator,
	})
}

func (f *serviceFactory) CreateBrowserService() adapters.BrowserService {
	return f.deps.Browser
}

func (f *serviceFactory) CreateScenarioService() adapters.ScenarioService {
	return f.deps.Scenarios
}

func (f *serviceFactory) CreatePickerService() adapters.PickerService {
	return f.deps.Picker
}

func (f *serviceFactory) CreateCredentialService() adapters.CredentialService {
	return f.deps.Credentials
}
