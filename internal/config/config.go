package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Elastic   ElasticConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Redis     RedisConfig
	Ingest    IngestConfig
	Retrieval RetrievalConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimitMB  int
}

type LoggerConfig struct {
	Level string
	Env   string
}

// ElasticConfig holds the search engine connection and index layout.
type ElasticConfig struct {
	URL       string
	APIKey    string
	Index     string
	QuizIndex string
	Dims      int
	Timeout   time.Duration
}

// LLMConfig selects the generative model provider. Model is the preferred
// candidate; the fixed default is always tried after it.
type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	ServerURL   string
	Timeout     time.Duration
	Temperature float64
}

// EmbeddingConfig selects the embedding provider. RequestsPerSecond 0
// leaves provider calls unthrottled.
type EmbeddingConfig struct {
	Provider          string
	Model             string
	APIKey            string
	ServerURL         string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerSecond float64
	Burst             int
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type IngestConfig struct {
	ChunkSize     int
	MinChunkChars int
	Concurrency   int
}

type RetrievalConfig struct {
	MaxChars        int
	MinContextChars int
	HybridK         int
	HybridSize      int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "20s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.body_limit_mb", 20)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")

	v.SetDefault("elastic.url", "http://localhost:9200")
	v.SetDefault("elastic.index", "quizgen-chunks")
	v.SetDefault("elastic.dims", 768)
	v.SetDefault("elastic.timeout", "15s")

	v.SetDefault("llm.provider", "googleai")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.temperature", 0.3)

	v.SetDefault("embedding.provider", "googleai")
	v.SetDefault("embedding.model", "text-embedding-004")
	v.SetDefault("embedding.timeout", "15s")
	v.SetDefault("embedding.cache_ttl", "168h")
	v.SetDefault("embedding.requests_per_second", 0)
	v.SetDefault("embedding.burst", 5)

	v.SetDefault("ingest.chunk_size", 1200)
	v.SetDefault("ingest.min_chunk_chars", 40)
	v.SetDefault("ingest.concurrency", 8)

	v.SetDefault("retrieval.max_chars", 12000)
	v.SetDefault("retrieval.min_context_chars", 20)
	v.SetDefault("retrieval.hybrid_k", 20)
	v.SetDefault("retrieval.hybrid_size", 6)
}

// bindLegacyEnv keeps the environment names the service has always been
// deployed with working next to the ELASTIC_URL-style automatic keys.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("elastic.url", "ELASTIC_URL")
	_ = v.BindEnv("elastic.api_key", "ELASTIC_API_KEY")
	_ = v.BindEnv("elastic.index", "ELASTIC_INDEX")
	_ = v.BindEnv("llm.api_key", "LLM_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.model", "LLM_MODEL", "GEMINI_MODEL")
	_ = v.BindEnv("embedding.api_key", "EMBEDDING_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("redis.address", "REDIS_ADDRESS")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
}

// LoadConfig reads config.yaml from CONFIG_PATH, the working directory or
// ./config. A missing file is not an error: defaults and environment apply.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.AddConfigPath(path)
	}
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			BodyLimitMB:  v.GetInt("server.body_limit_mb"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Elastic: ElasticConfig{
			URL:       v.GetString("elastic.url"),
			APIKey:    v.GetString("elastic.api_key"),
			Index:     v.GetString("elastic.index"),
			QuizIndex: v.GetString("elastic.quiz_index"),
			Dims:      v.GetInt("elastic.dims"),
			Timeout:   v.GetDuration("elastic.timeout"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			APIKey:      v.GetString("llm.api_key"),
			Model:       strings.TrimSpace(v.GetString("llm.model")),
			ServerURL:   v.GetString("llm.server_url"),
			Timeout:     v.GetDuration("llm.timeout"),
			Temperature: v.GetFloat64("llm.temperature"),
		},
		Embedding: EmbeddingConfig{
			Provider:          strings.ToLower(v.GetString("embedding.provider")),
			Model:             v.GetString("embedding.model"),
			APIKey:            v.GetString("embedding.api_key"),
			ServerURL:         v.GetString("embedding.server_url"),
			Timeout:           v.GetDuration("embedding.timeout"),
			CacheTTL:          v.GetDuration("embedding.cache_ttl"),
			RequestsPerSecond: v.GetFloat64("embedding.requests_per_second"),
			Burst:             v.GetInt("embedding.burst"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Ingest: IngestConfig{
			ChunkSize:     v.GetInt("ingest.chunk_size"),
			MinChunkChars: v.GetInt("ingest.min_chunk_chars"),
			Concurrency:   v.GetInt("ingest.concurrency"),
		},
		Retrieval: RetrievalConfig{
			MaxChars:        v.GetInt("retrieval.max_chars"),
			MinContextChars: v.GetInt("retrieval.min_context_chars"),
			HybridK:         v.GetInt("retrieval.hybrid_k"),
			HybridSize:      v.GetInt("retrieval.hybrid_size"),
		},
	}

	if cfg.Elastic.QuizIndex == "" {
		cfg.Elastic.QuizIndex = cfg.Elastic.Index + "-quizzes"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Elastic.Index == "" {
		return fmt.Errorf("elastic.index must be set")
	}
	if c.Elastic.Index == c.Elastic.QuizIndex {
		return fmt.Errorf("elastic.quiz_index must differ from elastic.index")
	}
	if c.Elastic.Dims <= 0 {
		return fmt.Errorf("elastic.dims must be positive, got %d", c.Elastic.Dims)
	}
	if c.Ingest.Concurrency < 1 {
		c.Ingest.Concurrency = 1
	}
	switch c.LLM.Provider {
	case "googleai", "openai", "ollama":
	default:
		return fmt.Errorf("unsupported llm.provider: %q", c.LLM.Provider)
	}
	switch c.Embedding.Provider {
	case "googleai", "openai", "ollama", "none":
	default:
		return fmt.Errorf("unsupported embedding.provider: %q", c.Embedding.Provider)
	}
	return nil
}
