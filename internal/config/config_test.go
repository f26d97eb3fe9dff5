package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvToken, "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolateHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", cfg.BaseURL)
	}
	if cfg.Token != "" {
		t.Errorf("expected empty token, got %q", cfg.Token)
	}
}

func TestLoadFromFile(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, DefaultConfigDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	data := []byte("base_url: https://rewards.example.com\ntoken: file-token\n")
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.BaseURL != "https://rewards.example.com" {
		t.Errorf("unexpected base URL %q", cfg.BaseURL)
	}
	if cfg.Token != "file-token" {
		t.Errorf("unexpected token %q", cfg.Token)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, DefaultConfigDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	data := []byte("base_url: https://rewards.example.com\ntoken: file-token\n")
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvBaseURL, "http://localhost:9999")
	t.Setenv(EnvToken, "env-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.BaseURL != "http://localhost:9999" {
		t.Errorf("expected env base URL to win, got %q", cfg.BaseURL)
	}
	if cfg.Token != "env-token" {
		t.Errorf("expected env token to win, got %q", cfg.Token)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolateHome(t)

	want := &Config{BaseURL: "http://localhost:8095", Token: "session-token"}
	if err := Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.BaseURL != want.BaseURL || got.Token != want.Token {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, DefaultConfigDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("{not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for malformed config")
	}
}
