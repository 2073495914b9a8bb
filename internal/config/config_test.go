package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir replicates t.Chdir (Go 1.24+) on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestValidate_PortRange(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 0},
		Milvus: MilvusConfig{Host: "localhost", Port: 19530},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for http.port 0")
	}

	cfg.HTTP.Port = 8080
	cfg.Milvus.Port = 99999
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for milvus.port out of range")
	}

	cfg.Milvus.Port = 19530
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()

	if cfg.Milvus.Host != "localhost" || cfg.Milvus.Port != 19530 {
		t.Errorf("milvus defaults = %s:%d", cfg.Milvus.Host, cfg.Milvus.Port)
	}
	if cfg.Milvus.ConnectTimeoutSec != 15 {
		t.Errorf("connect timeout default = %d, want 15", cfg.Milvus.ConnectTimeoutSec)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("http timeout defaults = %d/%d", cfg.HTTP.ReadTimeoutSec, cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Embedding.Model == "" {
		t.Error("embedding model default missing")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MNEMOVEC_TEST_HOST", "milvus.internal")

	out := string(expandEnvVars([]byte("host: ${MNEMOVEC_TEST_HOST}\nport: ${MNEMOVEC_TEST_PORT:-19530}\n")))
	want := "host: milvus.internal\nport: 19530\n"
	if out != want {
		t.Errorf("expanded = %q, want %q", out, want)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := []byte("http:\n  port: 9090\nmilvus:\n  host: ${MNEMOVEC_TEST_HOST:-vecdb}\n  port: 19530\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), body, 0o600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("http.port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Milvus.Host != "vecdb" {
		t.Errorf("milvus.host = %q, want vecdb", cfg.Milvus.Host)
	}
	if cfg.Milvus.Addr() != "vecdb:19530" {
		t.Errorf("Addr() = %q", cfg.Milvus.Addr())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := Load("nope"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}

func TestMustLoad_Panics(t *testing.T) {
	chdir(t, t.TempDir())

	defer func() {
		if recover() == nil {
			t.Error("MustLoad must panic on missing config")
		}
	}()
	MustLoad("nope")
}
