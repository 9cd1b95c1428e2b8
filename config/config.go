// Package config reads the runtime configuration from the environment.
// The variable names follow the deployment surface the system has always
// had: memory budgets, similarity threshold, embedding dimension, store
// path, character file.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/neurochat/neurochat/memory"
)

// Config is the full environment-driven configuration.
type Config struct {
	// MaxMemoryResults caps long-term items per retrieval.
	MaxMemoryResults int `env:"MAX_MEMORY_RESULTS" envDefault:"5"`

	// ShortTermMemorySize is the session buffer capacity.
	ShortTermMemorySize int `env:"SHORT_TERM_MEMORY_SIZE" envDefault:"5"`

	// MinSimilarity rejects long-term candidates below this cosine
	// similarity.
	MinSimilarity float64 `env:"MIN_SIMILARITY" envDefault:"0.25"`

	// EmbeddingDimensions must match the embedding model in use.
	EmbeddingDimensions int `env:"EMBEDDING_DIMENSIONS" envDefault:"384"`

	// RetrieveTimeout bounds the embedding/query path per retrieval.
	RetrieveTimeout time.Duration `env:"RETRIEVE_TIMEOUT" envDefault:"5s"`

	// DBPath is where the vector store persists. Empty keeps it in
	// memory only.
	DBPath string `env:"MEMORY_DB_PATH" envDefault:"./data/memory_db"`

	// CharacterPath points at the character JSON file. A missing file
	// falls back to the default character.
	CharacterPath string `env:"CHARACTER_CONFIG" envDefault:"./config/character.json"`

	// UserID identifies the local user of the interactive shell.
	UserID string `env:"USER_ID" envDefault:"user_001"`

	// ONNX embedder files, used by onnx-enabled builds.
	ModelPath     string `env:"EMBEDDING_MODEL_PATH" envDefault:"./models/all-MiniLM-L6-v2/model.onnx"`
	TokenizerPath string `env:"EMBEDDING_TOKENIZER_PATH" envDefault:"./models/all-MiniLM-L6-v2/tokenizer.json"`
	OnnxLibrary   string `env:"ONNXRUNTIME_LIB" envDefault:""`
}

// Load parses the environment. An unparsable variable is a ConfigFault,
// fatal at startup like any other invalid configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, &memory.ConfigFault{Field: "environment", Reason: err.Error()}
	}
	return &cfg, nil
}

// Memory converts to the memory core's config. Validation happens in
// memory.NewManager and is fatal at startup.
func (c *Config) Memory() memory.Config {
	return memory.Config{
		MaxResults:      c.MaxMemoryResults,
		ShortTermSize:   c.ShortTermMemorySize,
		MinSimilarity:   float32(c.MinSimilarity),
		Dimensions:      c.EmbeddingDimensions,
		RetrieveTimeout: c.RetrieveTimeout,
	}
}
