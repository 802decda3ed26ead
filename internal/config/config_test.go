package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("URW_ADDR", "")
	t.Setenv("URW_DB_PATH", "")
	t.Setenv("URW_CONFIG", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8080" {
		t.Fatalf("Addr: want default, got %q", cfg.Addr)
	}
	if cfg.DBPath != "urw.db" {
		t.Fatalf("DBPath: want default, got %q", cfg.DBPath)
	}
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "urw.yaml")
	if err := os.WriteFile(path, []byte("addr: 0.0.0.0:9999\ndb-path: /tmp/urw-test.db\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("URW_ADDR", "127.0.0.1:7777")
	t.Setenv("URW_DB_PATH", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// L'environnement gagne sur le fichier.
	if cfg.Addr != "127.0.0.1:7777" {
		t.Fatalf("Addr: want env override, got %q", cfg.Addr)
	}
	if cfg.DBPath != "/tmp/urw-test.db" {
		t.Fatalf("DBPath: want file value, got %q", cfg.DBPath)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
