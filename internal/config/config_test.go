package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dropDatabas3/lumify/internal/config"
)

func TestLoad_DefaultsAndRequired(t *testing.T) {
	// sin backend.url falla
	if _, err := config.Load(""); err == nil {
		t.Fatal("expected error without backend.url")
	}

	t.Setenv("LUMIFY_BACKEND_URL", "https://backend.example.com")
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Env != "dev" || cfg.App.SiteName != "Lumify" {
		t.Fatalf("unexpected app defaults: %+v", cfg.App)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Session.CookieName != "lumify_sid" {
		t.Fatalf("unexpected cookie name: %s", cfg.Session.CookieName)
	}
	if cfg.Cache.Kind != "memory" {
		t.Fatalf("unexpected cache kind: %s", cfg.Cache.Kind)
	}
	if got := config.Dur(cfg.Recovery.Window, 0); got != 60*time.Second {
		t.Fatalf("unexpected recovery window: %v", got)
	}
}

func TestLoad_YAMLAndEnvPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  env: prod
  site_name: Lumify Test
server:
  addr: ":9999"
backend:
  url: https://yaml.example.com
cache:
  kind: redis
  redis:
    addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	// env pisa YAML
	t.Setenv("LUMIFY_BACKEND_URL", "https://env.example.com")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Env != "prod" || cfg.Server.Addr != ":9999" {
		t.Fatalf("yaml values lost: %+v", cfg)
	}
	if cfg.Backend.URL != "https://env.example.com" {
		t.Fatalf("env must win over yaml, got %s", cfg.Backend.URL)
	}
	if cfg.Cache.Kind != "redis" || cfg.Cache.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis config lost: %+v", cfg.Cache)
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	t.Setenv("LUMIFY_BACKEND_URL", "https://backend.example.com")
	if _, err := config.Load("/no/such/config.yaml"); err != nil {
		t.Fatalf("missing file should fall back to env+defaults: %v", err)
	}
}

func TestDur(t *testing.T) {
	if got := config.Dur("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
	if got := config.Dur("garbage", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := config.Dur("", 5*time.Second); got != 5*time.Second {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
}
