package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
}

func TestLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfigFile(t, path, `locale = "de"`)

	loader := NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Locale != "de" {
		t.Errorf("locale: got %q", cfg.Locale)
	}
	if loader.Config() != cfg {
		t.Error("Config() should return the loaded configuration")
	}
}

func TestLoaderWatchReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfigFile(t, path, `locale = "en"`)

	loader := NewLoader(path)
	if _, err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer loader.Close()

	reloaded := make(chan *Config, 1)
	loader.OnChange(func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err := loader.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeConfigFile(t, path, `locale = "de"`)

	select {
	case cfg := <-reloaded:
		if cfg.Locale != "de" {
			t.Errorf("reloaded locale: got %q", cfg.Locale)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}

	if loader.Config().Locale != "de" {
		t.Errorf("Config() not swapped: %q", loader.Config().Locale)
	}
}

func TestLoaderFailedReloadKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfigFile(t, path, `locale = "en"`)

	loader := NewLoader(path)
	if _, err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer loader.Close()

	if err := loader.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeConfigFile(t, path, `locale = `)

	select {
	case err := <-loader.Errors():
		if err == nil {
			t.Fatal("expected non-nil reload error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}

	if loader.Config().Locale != "en" {
		t.Errorf("previous config not retained: %q", loader.Config().Locale)
	}
}
