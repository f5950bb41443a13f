package embedding

import (
	"context"
	"fmt"
	"time"

	"quiz-byte/internal/config"
	"quiz-byte/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/googleai"
	ollamaLLM "github.com/tmc/langchaingo/llms/ollama"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderGoogleAI = "googleai"
	ProviderOllama   = "ollama"
	ProviderOpenAI   = "openai"
	ProviderNone     = "none"
)

// EmbeddingService implements domain.EmbeddingService on top of a langchaingo
// embedder. Vectors whose length differs from dims are rejected so a
// misconfigured model never reaches the index.
type EmbeddingService struct {
	embedder embeddings.Embedder
	provider string
	dims     int
	timeout  time.Duration
}

// New builds the embedding service for cfg.Provider. The "none" provider
// returns (nil, nil); callers then run lexical-only.
func New(ctx context.Context, cfg config.EmbeddingConfig, dims int) (domain.EmbeddingService, error) {
	var (
		svc *EmbeddingService
		err error
	)
	switch cfg.Provider {
	case ProviderGoogleAI:
		svc, err = NewGoogleAIEmbeddingService(ctx, cfg, dims)
	case ProviderOllama:
		svc, err = NewOllamaEmbeddingService(cfg, dims)
	case ProviderOpenAI:
		svc, err = NewOpenAIEmbeddingService(cfg, dims)
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// NewGoogleAIEmbeddingService uses the Gemini embedding API.
func NewGoogleAIEmbeddingService(ctx context.Context, cfg config.EmbeddingConfig, dims int) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("googleai API key cannot be empty")
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-004"
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo GoogleAI client for embedder: %w", err)
	}
	return newFromClient(client, ProviderGoogleAI, dims, cfg.Timeout)
}

// NewOllamaEmbeddingService uses a local Ollama server.
func NewOllamaEmbeddingService(cfg config.EmbeddingConfig, dims int) (*EmbeddingService, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}

	llm, err := ollamaLLM.New(
		ollamaLLM.WithModel(cfg.Model),
		ollamaLLM.WithServerURL(cfg.ServerURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama LLM client for embedder: %w", err)
	}
	return newFromClient(llm, ProviderOllama, dims, cfg.Timeout)
}

// NewOpenAIEmbeddingService uses the OpenAI embeddings endpoint, or any
// compatible server when ServerURL is set.
func NewOpenAIEmbeddingService(cfg config.EmbeddingConfig, dims int) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}

	opts := []openaiLLM.Option{
		openaiLLM.WithToken(cfg.APIKey),
		openaiLLM.WithEmbeddingModel(model),
	}
	if cfg.ServerURL != "" {
		opts = append(opts, openaiLLM.WithBaseURL(cfg.ServerURL))
	}
	llm, err := openaiLLM.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI LLM client for embedder: %w", err)
	}
	return newFromClient(llm, ProviderOpenAI, dims, cfg.Timeout)
}

func newFromClient(client embeddings.EmbedderClient, provider string, dims int, timeout time.Duration) (*EmbeddingService, error) {
	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from %s client: %w", provider, err)
	}
	return NewEmbeddingService(embedder, provider, dims, timeout), nil
}

// NewEmbeddingService wraps an existing embedder.
func NewEmbeddingService(embedder embeddings.Embedder, provider string, dims int, timeout time.Duration) *EmbeddingService {
	return &EmbeddingService{embedder: embedder, provider: provider, dims: dims, timeout: timeout}
}

// Provider names the backing model provider; it namespaces cache keys.
func (s *EmbeddingService) Provider() string {
	return s.provider
}

// Generate creates an embedding for the given text.
func (s *EmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding using %s: %w", s.provider, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("received empty embedding from %s", s.provider)
	}
	if s.dims > 0 && len(vector) != s.dims {
		return nil, fmt.Errorf("embedding from %s has %d dimensions, expected %d", s.provider, len(vector), s.dims)
	}
	return vector, nil
}

var _ domain.EmbeddingService = (*EmbeddingService)(nil)
