package bootstrap

import (
	"time"

	"testforge/internal/ai"
	"testforge/internal/browser"
	"testforge/internal/config"
	"testforge/internal/console"
	"testforge/internal/credentials"
	"testforge/internal/generation"
	"testforge/internal/generation/parse"
	"testforge/internal/generation/prompt"
	"testforge/internal/generation/template"
	"testforge/internal/generation/validate"
	"testforge/internal/locator"
	"testforge/internal/picker"
	"testforge/internal/ports"
	"testforge/internal/scenario"
	"testforge/internal/usecase"

	"go.uber.org/fx"
)

func NewApp() *fx.App {
	return fx.New(
		fx.Provide(
			fx.Annotate(credentials.NewStore, fx.As(new(ports.CredentialStore))),
			config.GetConfig,
			newLogger,
			newTraceProvider,

			fx.Annotate(browser.NewManager,
				fx.As(new(ports.BrowserManager)),
				fx.As(new(ports.DOMQuerier))),

			ai.NewTextGenerator,

			fx.Annotate(prompt.NewBuilder, fx.As(new(generation.PromptBuilder))),
			fx.Annotate(parse.NewParser, fx.As(new(generation.ResponseParser))),
			fx.Annotate(validate.NewValidator, fx.As(new(generation.CodeValidator))),
			fx.Annotate(template.NewGenerator, fx.As(new(ports.FallbackGenerator))),
			fx.Annotate(generation.NewCoordinator, fx.As(new(ports.CodeGenerator))),

			locator.NewResolver,
			scenario.NewService,
			picker.NewService,

			usecase.NewUsecase,

			console.NewInterface,
		),

		fx.Invoke(
			runConsole,
		),

		fx.StartTimeout(10*time.Second),
	)
}
