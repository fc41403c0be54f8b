package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestApplyEnv(t *testing.T) {
	cfg := defaults()
	err := applyEnv(&cfg, envFrom(map[string]string{
		"AUTH0_DOMAIN":       "tenant.us.auth0.com",
		"API_AUDIENCE":       "drinks",
		"AUTH_ALGORITHMS":    "RS256, ES256",
		"AUTH_FETCH_TIMEOUT": "3s",
		"RATE_LIMIT_LIMIT":   "5",
	}))
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	ac, err := cfg.AuthConfig()
	if err != nil {
		t.Fatalf("AuthConfig: %v", err)
	}
	if ac.Issuer != "https://tenant.us.auth0.com/" || ac.Audience != "drinks" {
		t.Fatalf("unexpected auth config: %+v", ac)
	}
	if len(ac.Algorithms) != 2 || ac.Algorithms[1] != "ES256" || ac.FetchTimeout != 3*time.Second {
		t.Fatalf("unexpected algorithms/timeout: %+v", ac)
	}
	if lim := cfg.Limits(); lim == nil || lim.For("anything").Limit != 5 {
		t.Fatalf("unexpected limits: %+v", lim)
	}
}

func TestApplyEnv_BadDuration(t *testing.T) {
	cfg := defaults()
	if err := applyEnv(&cfg, envFrom(map[string]string{"LIST_CACHE_TTL": "soon"})); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestAuthConfig_RefusesSymmetric(t *testing.T) {
	cfg := defaults()
	cfg.Auth = AuthConfig{Domain: "tenant.example.com", Audience: "drinks", Algorithms: []string{"HS256"}}
	if _, err := cfg.AuthConfig(); err == nil {
		t.Fatalf("expected HS256 to be refused")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coffeeshop.yaml")
	data := []byte("http_addr: \":9000\"\nauth:\n  domain: file.example.com\n  audience: from-file\nlist_cache_ttl: 10s\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_AUDIENCE", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9000" || cfg.ListCacheTTL != 10*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Auth.Domain != "file.example.com" || cfg.Auth.Audience != "from-env" {
		t.Fatalf("env must override file: %+v", cfg.Auth)
	}
}
