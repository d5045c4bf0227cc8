package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	GenerationModel string `envconfig:"GENERATION_MODEL" default:"gemini-2.5-flash-lite"`

	ChunkSize     int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap  int `envconfig:"CHUNK_OVERLAP" default:"200"`
	RetrievalTopK int `envconfig:"RETRIEVAL_TOP_K" default:"4"`

	ModelTimeoutSeconds int `envconfig:"MODEL_TIMEOUT_SECONDS" default:"60"`
	FetchTimeoutSeconds int `envconfig:"FETCH_TIMEOUT_SECONDS" default:"30"`

	ServerPort   int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell instead; a missing .env is not an error.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrInvalid)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in [0, CHUNK_SIZE)", ErrInvalid)
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("%w: RETRIEVAL_TOP_K must be positive", ErrInvalid)
	}
	return nil
}
