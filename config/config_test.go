package config

import (
	"errors"
	"testing"
	"time"

	"github.com/neurochat/neurochat/memory"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxMemoryResults != 5 {
		t.Errorf("MaxMemoryResults = %d, want 5", cfg.MaxMemoryResults)
	}
	if cfg.ShortTermMemorySize != 5 {
		t.Errorf("ShortTermMemorySize = %d, want 5", cfg.ShortTermMemorySize)
	}
	if cfg.MinSimilarity != 0.25 {
		t.Errorf("MinSimilarity = %f, want 0.25", cfg.MinSimilarity)
	}
	if cfg.EmbeddingDimensions != 384 {
		t.Errorf("EmbeddingDimensions = %d, want 384", cfg.EmbeddingDimensions)
	}
	if cfg.RetrieveTimeout != 5*time.Second {
		t.Errorf("RetrieveTimeout = %v, want 5s", cfg.RetrieveTimeout)
	}
	if cfg.UserID != "user_001" {
		t.Errorf("UserID = %q, want user_001", cfg.UserID)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MAX_MEMORY_RESULTS", "9")
	t.Setenv("MIN_SIMILARITY", "0.5")
	t.Setenv("RETRIEVE_TIMEOUT", "250ms")
	t.Setenv("MEMORY_DB_PATH", "/tmp/db")
	t.Setenv("USER_ID", "tester")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxMemoryResults != 9 {
		t.Errorf("MaxMemoryResults = %d, want 9", cfg.MaxMemoryResults)
	}
	if cfg.MinSimilarity != 0.5 {
		t.Errorf("MinSimilarity = %f, want 0.5", cfg.MinSimilarity)
	}
	if cfg.RetrieveTimeout != 250*time.Millisecond {
		t.Errorf("RetrieveTimeout = %v, want 250ms", cfg.RetrieveTimeout)
	}
	if cfg.DBPath != "/tmp/db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.UserID != "tester" {
		t.Errorf("UserID = %q", cfg.UserID)
	}
}

func TestInvalidEnvironmentIsConfigFault(t *testing.T) {
	t.Setenv("MAX_MEMORY_RESULTS", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for an unparsable variable")
	}
	var cf *memory.ConfigFault
	if !errors.As(err, &cf) {
		t.Errorf("expected a ConfigFault, got %T: %v", err, err)
	}
}

func TestMemoryConversion(t *testing.T) {
	t.Setenv("MAX_MEMORY_RESULTS", "3")
	t.Setenv("SHORT_TERM_MEMORY_SIZE", "7")
	t.Setenv("MIN_SIMILARITY", "0.4")
	t.Setenv("EMBEDDING_DIMENSIONS", "128")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m := cfg.Memory()
	if m.MaxResults != 3 || m.ShortTermSize != 7 || m.Dimensions != 128 {
		t.Errorf("unexpected memory config: %+v", m)
	}
	if m.MinSimilarity != 0.4 {
		t.Errorf("MinSimilarity = %f, want 0.4", m.MinSimilarity)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("converted config invalid: %v", err)
	}
}
