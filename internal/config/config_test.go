package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	yamlDoc := `
database:
  url: "postgres://rag:pw@localhost:5432/rag"
  debug: true
embed_llm:
  base_url: "https://openrouter.ai/api/v1"
  key: "test-key"
  model: "text-embedding-3-small"
inference_llm:
  model: "gpt-4o-mini"
rag:
  chunk_tokens: 120
  top_k: 3
  ingest_policy: "append"
server:
  addr: ":9090"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Database.URL != "postgres://rag:pw@localhost:5432/rag" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if !cfg.Database.Debug {
		t.Error("Database.Debug = false, want true")
	}
	if cfg.EmbedLLM.Model != "text-embedding-3-small" {
		t.Errorf("EmbedLLM.Model = %q", cfg.EmbedLLM.Model)
	}
	if cfg.RAG.ChunkTokens != 120 {
		t.Errorf("ChunkTokens = %d, want 120", cfg.RAG.ChunkTokens)
	}
	if cfg.RAG.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.RAG.TopK)
	}
	if cfg.RAG.IngestPolicy != PolicyAppend {
		t.Errorf("IngestPolicy = %q, want %q", cfg.RAG.IngestPolicy, PolicyAppend)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}

	// Fields the file omits get defaults.
	if cfg.RAG.VectorSize != 1536 {
		t.Errorf("VectorSize = %d, want default 1536", cfg.RAG.VectorSize)
	}
	if cfg.RAG.EmbedConcurrency != 4 {
		t.Errorf("EmbedConcurrency = %d, want default 4", cfg.RAG.EmbedConcurrency)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig() on missing file, want error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.RAG.ChunkTokens != 200 {
		t.Errorf("ChunkTokens = %d, want 200", cfg.RAG.ChunkTokens)
	}
	if cfg.RAG.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.RAG.TopK)
	}
	if cfg.RAG.IngestPolicy != PolicyReplace {
		t.Errorf("IngestPolicy = %q, want %q", cfg.RAG.IngestPolicy, PolicyReplace)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
}
