package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database     DatabaseConfig `yaml:"database"`
	EmbedLLM     LLMConfig      `yaml:"embed_llm"`
	InferenceLLM LLMConfig      `yaml:"inference_llm"`
	RAG          RAGConfig      `yaml:"rag"`
	Server       ServerConfig   `yaml:"server"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

type RAGConfig struct {
	ChunkTokens      int    `yaml:"chunk_tokens"`
	TopK             int    `yaml:"top_k"`
	VectorSize       int    `yaml:"vector_size"`
	IngestPolicy     string `yaml:"ingest_policy"` // "replace" or "append"
	EmbedConcurrency int    `yaml:"embed_concurrency"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

const (
	defaultChunkTokens      = 200
	defaultTopK             = 5
	defaultVectorSize       = 1536
	defaultEmbedConcurrency = 4
	defaultAddr             = ":8080"

	PolicyReplace = "replace"
	PolicyAppend  = "append"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config with defaults applied, for runs without a
// config file (embedded store, env-provided keys).
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.RAG.ChunkTokens <= 0 {
		cfg.RAG.ChunkTokens = defaultChunkTokens
	}
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.RAG.VectorSize <= 0 {
		cfg.RAG.VectorSize = defaultVectorSize
	}
	if cfg.RAG.IngestPolicy == "" {
		cfg.RAG.IngestPolicy = PolicyReplace
	}
	if cfg.RAG.EmbedConcurrency <= 0 {
		cfg.RAG.EmbedConcurrency = defaultEmbedConcurrency
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}

	// Secrets may come from the environment (.env is loaded in main).
	if cfg.EmbedLLM.Key == "" {
		cfg.EmbedLLM.Key = os.Getenv("OPENROUTER_KEY")
	}
	if cfg.InferenceLLM.Key == "" {
		cfg.InferenceLLM.Key = os.Getenv("OPENROUTER_KEY")
	}
	if cfg.Database.Password == "" {
		cfg.Database.Password = os.Getenv("SUPABASE_KEY")
	}
}
