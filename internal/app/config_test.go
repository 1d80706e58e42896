package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 100
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Booking.OwnerID != 100 {
		t.Fatalf("owner id fallback = %d, want admin_id 100", cfg.Booking.OwnerID)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.Dir != "data" {
		t.Fatalf("storage defaults = %+v", cfg.Storage)
	}
	if cfg.Autosave.Spec != "@every 5m" {
		t.Fatalf("autosave default = %q", cfg.Autosave.Spec)
	}
	if cfg.CoreConfig() == nil || cfg.CoreConfig().Telegram.Token != "123:abc" {
		t.Fatalf("core config not carried")
	}
}

func TestLoadConfigExplicitSections(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
booking:
  owner_id: 7
  forbid_duplicates: true
storage:
  driver: postgres
autosave:
  spec: "@every 1m"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Booking.OwnerID != 7 || !cfg.Booking.ForbidDuplicates {
		t.Fatalf("booking section = %+v", cfg.Booking)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.Dir != "" {
		t.Fatalf("storage section = %+v", cfg.Storage)
	}
	if cfg.Autosave.Spec != "@every 1m" {
		t.Fatalf("autosave spec = %q", cfg.Autosave.Spec)
	}
}

func TestLoadConfigRejectsMissingOwner(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("config without owner accepted")
	}
}
