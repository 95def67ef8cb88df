package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Files.Users != "users.txt" || cfg.Quiz.MaxQuestions != 20 || len(cfg.Quiz.Topics) != 3 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
storage:
  results: redis
redis:
  addr: localhost:6379
  cache_ttl: 5m
quiz:
  max_questions: 5
  topics: [Space]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Results != BackendRedis || cfg.Storage.Users != BackendFile {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Redis.Key != "quiz:results" || TTLDuration(cfg.Redis.CacheTTL, 0) != 5*time.Minute {
		t.Fatalf("unexpected redis %+v", cfg.Redis)
	}
	if cfg.Quiz.MaxQuestions != 5 || cfg.Quiz.TopScores != 20 {
		t.Fatalf("unexpected quiz %+v", cfg.Quiz)
	}
	if len(cfg.Quiz.Topics) != 1 || cfg.Quiz.Topics[0] != "Space" {
		t.Fatalf("unexpected topics %v", cfg.Quiz.Topics)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("quiz: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("90s", 0); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
	if got := TTLDuration("soon", 0); got != 0 {
		t.Fatalf("expected fallback for junk, got %v", got)
	}
}
