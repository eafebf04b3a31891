package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

type validatedConfig struct {
	Name string `yaml:"name"`
}

var errNameMissing = errors.New("name is required")

func (c *validatedConfig) Validate() error {
	if c.Name == "" {
		return errNameMissing
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeConfig(t, "name: ablage\nport: 8080\n")
	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "ablage" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("ABLAGE_TEST_TOKEN", "secret-value")
	path := writeConfig(t, "token: ${ABLAGE_TEST_TOKEN}\n")
	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "secret-value" {
		t.Errorf("token = %q", cfg.Token)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg := testConfig{Name: "default", Port: 42}
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "default" || cfg.Port != 42 {
		t.Errorf("defaults clobbered: %+v", cfg)
	}
}

func TestLoadRunsValidation(t *testing.T) {
	path := writeConfig(t, "name: \"\"\n")
	var cfg validatedConfig
	err := Load(path, &cfg)
	if !errors.Is(err, errNameMissing) {
		t.Errorf("err = %v, want validation failure", err)
	}
}

func TestLoadMissingFileStillValidates(t *testing.T) {
	var cfg validatedConfig
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	if !errors.Is(err, errNameMissing) {
		t.Errorf("err = %v, want validation failure on empty defaults", err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "name: [unclosed\n")
	var cfg testConfig
	if err := Load(path, &cfg); err == nil {
		t.Fatal("malformed YAML should fail")
	}
}
