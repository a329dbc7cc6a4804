package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// mockBackend is a test double for the backend interface.
type mockBackend struct {
	strings map[string]string
	ints    map[string]int
}

func (m mockBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m mockBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(mockBackend{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Model.Path != "models/recommendation_model.json" {
		t.Errorf("Model.Path = %q, want default", cfg.Model.Path)
	}
	if cfg.Model.Type != "logreg" {
		t.Errorf("Model.Type = %q, want logreg", cfg.Model.Type)
	}
	if cfg.Model.ReloadIntervalDuration() != 30*time.Second {
		t.Errorf("reload interval = %v, want 30s", cfg.Model.ReloadIntervalDuration())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.API.Token != "" {
		t.Errorf("API.Token = %q, want empty", cfg.API.Token)
	}
}

func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := mockBackend{
		strings: map[string]string{
			"model.path":            "/tmp/model.json",
			"model.reload_interval": "5s",
			"log.level":             "debug",
		},
		ints: map[string]int{"server.port": 9000},
	}

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Model.Path != "/tmp/model.json" {
		t.Errorf("Model.Path = %q, want /tmp/model.json", cfg.Model.Path)
	}
	if cfg.Model.ReloadIntervalDuration() != 5*time.Second {
		t.Errorf("reload interval = %v, want 5s", cfg.Model.ReloadIntervalDuration())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("REC_SERVER_PORT", "7000")
	t.Setenv("REC_API_TOKEN", "env-token")

	b := mockBackend{ints: map[string]int{"server.port": 9000}}

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want env override 7000", cfg.Server.Port)
	}
	if cfg.API.Token != "env-token" {
		t.Errorf("API.Token = %q, want env-token", cfg.API.Token)
	}
}

func TestSecretNotReadFromBackend(t *testing.T) {
	clearEnv(t)

	b := mockBackend{strings: map[string]string{"api.token": "file-token"}}

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Token != "" {
		t.Errorf("API.Token = %q, want empty; secrets must not come from the config file", cfg.API.Token)
	}
}

func TestInvalidReloadInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("REC_MODEL_RELOAD_INTERVAL", "soon")

	if _, err := loadWith(mockBackend{}); err == nil {
		t.Fatal("expected error for invalid reload interval, got nil")
	}
}

func TestInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("REC_SERVER_PORT", "99999")

	if _, err := loadWith(mockBackend{}); err == nil {
		t.Fatal("expected error for out-of-range port, got nil")
	}
}

func TestFileBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"server.port": 8080, "model.type": "logreg", "log.level": "debug"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	b := newFileBackend(path)

	port, ok, err := b.GetInt("server.port")
	if err != nil || !ok || port != 8080 {
		t.Errorf("GetInt(server.port) = %d/%v/%v, want 8080", port, ok, err)
	}
	level, ok, err := b.GetString("log.level")
	if err != nil || !ok || level != "debug" {
		t.Errorf("GetString(log.level) = %q/%v/%v, want debug", level, ok, err)
	}
	if _, ok, _ := b.GetString("missing.key"); ok {
		t.Error("GetString(missing.key) reported present")
	}
}

func TestFileBackend_MissingFile(t *testing.T) {
	b := newFileBackend(filepath.Join(t.TempDir(), "nope.json"))
	if _, ok, _ := b.GetString("log.level"); ok {
		t.Error("missing file should behave as empty config")
	}
}
