package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "embed_llm:\n  provider: ollama\n  base_url: http://localhost:11434\n  model: nomic-embed-text\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Store.Backend != "chromem" {
		t.Errorf("Expected default backend chromem, got %q", cfg.Store.Backend)
	}
	if cfg.Store.IndexPrefix != "themes-" {
		t.Errorf("Expected default index prefix, got %q", cfg.Store.IndexPrefix)
	}
	if cfg.RAG.TopK != 10 || cfg.RAG.VectorSize != 768 {
		t.Errorf("Unexpected RAG defaults: %+v", cfg.RAG)
	}
	if cfg.EmbedLLM.TimeoutSecs != 60 || cfg.InferenceLLM.TimeoutSecs != 120 {
		t.Errorf("Unexpected timeout defaults: %d, %d", cfg.EmbedLLM.TimeoutSecs, cfg.InferenceLLM.TimeoutSecs)
	}
}

func TestLoadConfigResolvesKeyFromEnv(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "secret-token")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "inference_llm:\n  provider: openai\n  key_env: TEST_LLM_KEY\n  model: gpt-4o-mini\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.InferenceLLM.Key != "secret-token" {
		t.Errorf("Expected key resolved from env, got %q", cfg.InferenceLLM.Key)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
