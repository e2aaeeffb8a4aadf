package ai

import (
	"fmt"

	"testforge/internal/config"
	"testforge/internal/ports"
	"testforge/pkg/apperr"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

// NewTextGenerator picks the provider implementation once, at configuration
// time. The coordinator only ever sees the ports.TextGenerator interface.
func NewTextGenerator(params Params) (ports.TextGenerator, error) {
	const op = "NewTextGenerator"

	switch params.Config.AIConfig.Provider {
	case "anthropic":
		return NewAnthropicClient(params.Config, params.Logger), nil
	case "openai":
		return NewOpenAIClient(params.Config, params.Logger), nil
	default:
		return nil, apperr.Wrap(op, apperr.CodeConfig,
			fmt.Errorf("unknown AI provider %q", params.Config.AIConfig.Provider), map[string]any{
				apperr.MetaReason: "unknown_provider",
				apperr.MetaStage:  apperr.StageConfig,
			})
	}
}
