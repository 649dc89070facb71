package config

import "testing"

func TestValidate_MissingName(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestValidate_InvalidStrategyKind(t *testing.T) {
	cfg := Config{Name: "db", MemoryStrategy: MemoryStrategyConfig{Kind: "bogus"}}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid memoryStrategy.kind")
	}
}

func TestValidate_RedisBackendRequiresAddrs(t *testing.T) {
	cfg := Config{Name: "db", Storage: StorageConfig{Backend: "redis"}}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for redis backend without addrs")
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := Config{Name: "db"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.MemoryStrategy.Kind != "automatic" {
		t.Errorf("expected Kind=automatic, got %q", cfg.MemoryStrategy.Kind)
	}
	if cfg.MemoryStrategy.Threshold != 1000 {
		t.Errorf("expected Threshold=1000, got %d", cfg.MemoryStrategy.Threshold)
	}
	if cfg.SearchOptions.DefaultNumResults != 10 {
		t.Errorf("expected DefaultNumResults=10, got %d", cfg.SearchOptions.DefaultNumResults)
	}
	if cfg.SearchOptions.HybridWeight != 0.5 {
		t.Errorf("expected HybridWeight=0.5, got %v", cfg.SearchOptions.HybridWeight)
	}
	if cfg.SearchOptions.BM25NormalizationFactor != 10.0 {
		t.Errorf("expected BM25NormalizationFactor=10.0, got %v", cfg.SearchOptions.BM25NormalizationFactor)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected Provider=openai, got %q", cfg.Embedding.Provider)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("expected Backend=file, got %q", cfg.Storage.Backend)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		MemoryStrategy: MemoryStrategyConfig{Kind: "fullMemory", Threshold: 5},
		SearchOptions:  SearchOptionsConfig{DefaultNumResults: 25},
		Storage:        StorageConfig{Backend: "memory"},
	}
	cfg.ApplyDefaults()

	if cfg.MemoryStrategy.Kind != "fullMemory" {
		t.Errorf("expected Kind=fullMemory, got %q", cfg.MemoryStrategy.Kind)
	}
	if cfg.SearchOptions.DefaultNumResults != 25 {
		t.Errorf("expected DefaultNumResults=25, got %d", cfg.SearchOptions.DefaultNumResults)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("expected Backend=memory, got %q", cfg.Storage.Backend)
	}
}
