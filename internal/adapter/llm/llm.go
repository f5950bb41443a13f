// Package llm adapts langchaingo chat models to the domain.TextGenerator port.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quiz-byte/internal/config"
	"quiz-byte/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
)

// NewModel creates the client for cfg.Provider. cfg.Model is only the
// client default; Generator names the model on every call.
func NewModel(ctx context.Context, cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case ProviderGoogleAI, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("googleai API key cannot be empty")
		}
		model, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create LangchainGo GoogleAI client: %w", err)
		}
		return model, nil

	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key cannot be empty")
		}
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model)}
		if cfg.ServerURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.ServerURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create LangchainGo OpenAI client: %w", err)
		}
		return model, nil

	case ProviderOllama:
		if cfg.ServerURL == "" {
			return nil, fmt.Errorf("ollama server URL cannot be empty")
		}
		model, err := ollama.New(
			ollama.WithServerURL(cfg.ServerURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create LangchainGo Ollama client: %w", err)
		}
		return model, nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Generator implements domain.TextGenerator.
type Generator struct {
	model       llms.Model
	temperature float64
	timeout     time.Duration
}

func NewGenerator(model llms.Model, cfg config.LLMConfig) *Generator {
	return &Generator{model: model, temperature: cfg.Temperature, timeout: cfg.Timeout}
}

// GenerateText sends prompt to the named model. Blank output is an error so
// callers can move on to the next candidate.
func (g *Generator) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt,
		llms.WithModel(model),
		llms.WithTemperature(g.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", model, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("model %s returned empty text", model)
	}
	return text, nil
}

var _ domain.TextGenerator = (*Generator)(nil)
