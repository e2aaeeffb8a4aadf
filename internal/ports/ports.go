package ports

import (
	"context"

	"testforge/internal/entity"
)

// TextGenerator is the provider-agnostic text-generation capability. Every
// provider implementation (endpoint shape, auth, payload schema) satisfies
// this identical contract so the coordinator never branches per provider.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (*entity.GenerationResponse, error)
	HealthCheck(ctx context.Context) bool
	Name() string
}

// DOMQuerier counts live elements matching a selector inside the current
// page. An error means the query itself could not run, which callers must
// keep apart from a legitimate zero count.
type DOMQuerier interface {
	CountMatches(ctx context.Context, selector string) (int, error)
}

// BrowserManager is the embedded browser host.
type BrowserManager interface {
	DOMQuerier

	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	StartPicking(ctx context.Context, onPick func(payload []byte)) error
	StopPicking(ctx context.Context) error
	EvaluateJS(ctx context.Context, script string) (interface{}, error)
	Screenshot(ctx context.Context, path string) error
	CurrentURL(ctx context.Context) (string, error)
	IsReady() bool
}

// FallbackGenerator produces code by template substitution. It is the
// deterministic path taken when AI generation is disabled, unreachable, or
// out of retries.
type FallbackGenerator interface {
	Generate(ctx context.Context, genCtx *entity.GenerationContext) *entity.GenerationOutcome
}

// CodeGenerator is the full pipeline entry point.
type CodeGenerator interface {
	Generate(ctx context.Context, genCtx *entity.GenerationContext) (*entity.GenerationOutcome, error)
}

// CredentialStore persists resolved secrets for the surrounding application.
// The pipeline itself receives credentials via configuration, never from
// this store directly.
type CredentialStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}
