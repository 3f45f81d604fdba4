package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WSTOOLS_CONFIG", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Workspace != DefaultWorkspace || cfg.Listen != DefaultListen {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Fatalf("expected timeout %s, got %s", DefaultTimeout, cfg.Timeout)
	}
	if cfg.Client.RetryMax != DefaultRetryMax || cfg.Server.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Fatalf("unexpected nested defaults: %+v", cfg)
	}
}

func TestLoadEnvAndFlags(t *testing.T) {
	isolate(t)
	t.Setenv("WSTOOLS_LISTEN", "127.0.0.1:9999")
	t.Setenv("WSTOOLS_TIMEOUT", "5s")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("workspace", DefaultWorkspace, "")
	if err := cmd.Flags().Set("workspace", "/srv/ws"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Workspace != "/srv/ws" {
		t.Fatalf("expected flag workspace, got %s", cfg.Workspace)
	}
	if cfg.Listen != "127.0.0.1:9999" {
		t.Fatalf("expected env listen, got %s", cfg.Listen)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.Timeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "remote: http://localhost:3333/\nclient:\n  retry_max: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WSTOOLS_CONFIG", path)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Remote != "http://localhost:3333" {
		t.Fatalf("expected trimmed remote, got %s", cfg.Remote)
	}
	if cfg.Client.RetryMax != 5 {
		t.Fatalf("expected retry_max 5, got %d", cfg.Client.RetryMax)
	}
}

func TestLoadInvalidTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("WSTOOLS_TIMEOUT", "soon")
	if _, err := Load(nil); err == nil {
		t.Fatalf("expected invalid timeout error")
	}
}
