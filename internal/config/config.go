package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures one model provider endpoint. The API key is never
// stored in the YAML file; KeyEnv names the environment variable to read.
type LLMConfig struct {
	Provider    string `yaml:"provider"` // "openai" or "ollama"
	BaseURL     string `yaml:"base_url"`
	KeyEnv      string `yaml:"key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`

	Key string `yaml:"-"`
}

// StoreConfig selects and configures the vector index backend.
type StoreConfig struct {
	Backend     string `yaml:"backend"` // "chromem" or "postgres"
	Path        string `yaml:"path"`
	InMemory    bool   `yaml:"in_memory"`
	DSN         string `yaml:"dsn"`
	Debug       bool   `yaml:"debug"`
	IndexPrefix string `yaml:"index_prefix"`
}

type RAGConfig struct {
	TopK       int `yaml:"top_k"`
	VectorSize int `yaml:"vector_size"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	UploadDir string `yaml:"upload_dir"`
}

type Config struct {
	Server       ServerConfig `yaml:"server"`
	Store        StoreConfig  `yaml:"store"`
	EmbedLLM     LLMConfig    `yaml:"embed_llm"`
	InferenceLLM LLMConfig    `yaml:"inference_llm"`
	RAG          RAGConfig    `yaml:"rag"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	resolveKeys(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "./data/uploads"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "chromem"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./data/chromemdb"
	}
	if cfg.Store.IndexPrefix == "" {
		cfg.Store.IndexPrefix = "themes-"
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 10
	}
	if cfg.RAG.VectorSize == 0 {
		cfg.RAG.VectorSize = 768
	}
	if cfg.EmbedLLM.TimeoutSecs == 0 {
		cfg.EmbedLLM.TimeoutSecs = 60
	}
	if cfg.InferenceLLM.TimeoutSecs == 0 {
		cfg.InferenceLLM.TimeoutSecs = 120
	}
}

func resolveKeys(cfg *Config) {
	if cfg.EmbedLLM.KeyEnv != "" {
		cfg.EmbedLLM.Key = os.Getenv(cfg.EmbedLLM.KeyEnv)
	}
	if cfg.InferenceLLM.KeyEnv != "" {
		cfg.InferenceLLM.Key = os.Getenv(cfg.InferenceLLM.KeyEnv)
	}
}
