package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backend names.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
	Storage struct {
		Users   string `yaml:"users"`
		Catalog string `yaml:"catalog"`
		Results string `yaml:"results"`
	} `yaml:"storage"`
	Files struct {
		Users   string `yaml:"users"`
		Catalog string `yaml:"catalog"`
		Results string `yaml:"results"`
	} `yaml:"files"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Key      string `yaml:"key"`
		CacheTTL string `yaml:"cache_ttl"` // catalog cache in Redis; empty disables it
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		MaxQuestions int      `yaml:"max_questions"`
		TopScores    int      `yaml:"top_scores"`
		Topics       []string `yaml:"topics"`
		CatalogTTL   string   `yaml:"catalog_ttl"`
	} `yaml:"quiz"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Log.Level = "warn"
	cfg.Log.Format = "text"
	cfg.Storage.Users = BackendFile
	cfg.Storage.Catalog = BackendFile
	cfg.Storage.Results = BackendFile
	cfg.Files.Users = "users.txt"
	cfg.Files.Catalog = "questions.json"
	cfg.Files.Results = "quizResults.json"
	cfg.SQLite.Path = "quiz.db"
	cfg.Redis.Key = "quiz:results"
	cfg.Quiz.MaxQuestions = 20
	cfg.Quiz.TopScores = 20
	cfg.Quiz.Topics = []string{"History", "Geography", "Biology"}
	return cfg
}

// Load reads YAML config from path over Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
