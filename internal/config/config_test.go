package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != 8080 {
		t.Fatalf("default port = %d", cfg.App.Port)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Fatalf("default top_k = %d", cfg.Retrieval.TopK)
	}
	if cfg.Chat.HistoryWindow != 20 {
		t.Fatalf("default history window = %d", cfg.Chat.HistoryWindow)
	}
	if cfg.Upload.MaxSizeMB != 10 {
		t.Fatalf("default max upload = %d MB", cfg.Upload.MaxSizeMB)
	}
	if cfg.MaxUploadBytes() != 10<<20 {
		t.Fatalf("max upload bytes = %d", cfg.MaxUploadBytes())
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[app]
port = 9090

[database]
driver = "sqlite"
path = "test.db"

[retrieval]
top_k = 3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.App.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.DatabaseDSN() != "test.db" {
		t.Fatalf("sqlite dsn = %q", cfg.DatabaseDSN())
	}
	if cfg.Retrieval.TopK != 3 {
		t.Fatalf("top_k = %d, want 3", cfg.Retrieval.TopK)
	}
	// untouched sections keep their defaults
	if cfg.Chat.HistoryWindow != 20 {
		t.Fatalf("history window = %d, want default 20", cfg.Chat.HistoryWindow)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("APP_PORT", "7070")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("RETRIEVAL_TOP_K", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != 7070 {
		t.Fatalf("port = %d, want 7070", cfg.App.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("driver = %q", cfg.Database.Driver)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q", cfg.LLM.Model)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Fatalf("bad env int should fall back to default, got %d", cfg.Retrieval.TopK)
	}
}

func TestMySQLDSN(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "compliance")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := "app:secret@tcp(db.internal:3307)/compliance?parseTime=true&loc=Local&charset=utf8mb4"
	if got := cfg.DatabaseDSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}
