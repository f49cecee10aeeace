package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Default()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Storage.Endpoint = "acct.r2.cloudflarestorage.com"
	cfg.Storage.AccessKey = "ak"
	cfg.Storage.SecretKey = "sk"
	cfg.Storage.Bucket = "videos"
	cfg.Storage.PublicBaseURL = "https://pub.example.com"
	return cfg
}

func TestDefaultsValidateWithSecrets(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "openai.api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestValidateRequiresStorage(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Bucket = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected storage error")
	}
}

func TestValidateRejectsZeroWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Workflow.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected workers error")
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
work_dir = "` + filepath.Join(dir, "work") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[openai]
api_key = "sk-file"

[storage]
endpoint = "acct.r2.cloudflarestorage.com"
access_key = "ak"
secret_key = "sk"
bucket = "videos"
public_base_url = "https://pub.example.com/"

[script]
max_words = 80
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %s %v", resolved, exists)
	}
	if cfg.OpenAI.APIKey != "sk-file" {
		t.Fatalf("unexpected api key: %q", cfg.OpenAI.APIKey)
	}
	if cfg.Script.MaxWords != 80 {
		t.Fatalf("file override lost: %d", cfg.Script.MaxWords)
	}
	if cfg.Script.WordsPerMinuteRO != 130 {
		t.Fatalf("default lost: %d", cfg.Script.WordsPerMinuteRO)
	}
	if cfg.Storage.PublicBaseURL != "https://pub.example.com" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.Storage.PublicBaseURL)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("data dir not absolute: %q", cfg.Paths.DataDir)
	}
}

func TestLoadAppliesEnvFallbacks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[openai]
[storage]
bucket = "videos"
public_base_url = "https://pub.example.com"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("R2_ACCOUNT_ID", "acct123")
	t.Setenv("R2_ACCESS_KEY_ID", "ak-env")
	t.Setenv("R2_SECRET_ACCESS_KEY", "sk-env-secret")

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("env fallback not applied: %q", cfg.OpenAI.APIKey)
	}
	if cfg.Storage.Endpoint != "acct123.r2.cloudflarestorage.com" {
		t.Fatalf("endpoint not derived from account id: %q", cfg.Storage.Endpoint)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("R2_ACCOUNT_ID", "acct123")
	t.Setenv("R2_ACCESS_KEY_ID", "ak")
	t.Setenv("R2_SECRET_ACCESS_KEY", "sk")
	t.Setenv("R2_PUBLIC_URL", "https://pub.example.com")

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample file should exist")
	}
	if cfg.Render.TimeoutSeconds != 300 {
		t.Fatalf("unexpected render timeout: %d", cfg.Render.TimeoutSeconds)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := validConfig()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.WorkDir = filepath.Join(dir, "work")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	for _, sub := range []string{"data", "work", "logs"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Fatalf("missing directory %s: %v", sub, err)
		}
	}
	if got := cfg.QueueDatabasePath(); got != filepath.Join(dir, "data", "jobs.db") {
		t.Fatalf("unexpected queue db path: %q", got)
	}
}
