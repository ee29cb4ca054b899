package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/wmicctl/internal/testutil/testlog"
	"github.com/danmuck/wmicctl/internal/tools"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wmicctl.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults failed: %v", err)
	}
	if cfg.Binary != DefaultBinary || cfg.Server.Addr != DefaultAddr || cfg.SSH.Enabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadTemplate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "wmicctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite existing config")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("template should load: %v", err)
	}
	if cfg.Server.ID != "wmicctl" || len(cfg.Server.CorsOrigins) != 1 || cfg.SSH.Timeout != 10*time.Second {
		t.Fatalf("unexpected template config: %+v", cfg)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
binary = "  C:\\Windows\\System32\\wbem\\WMIC.exe "

[ssh]
enabled = true
host = "win-a"
user = "admin"
key_path = "/keys/id"
timeout = "3s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Binary != `C:\Windows\System32\wbem\WMIC.exe` {
		t.Fatalf("binary should be trimmed, got %q", cfg.Binary)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Server.RateLimitPerMinute != 120 {
		t.Fatalf("server defaults should survive overlay: %+v", cfg.Server)
	}
	if cfg.SSH.Timeout != 3*time.Second {
		t.Fatalf("unexpected ssh timeout %v", cfg.SSH.Timeout)
	}

	spawner, err := Spawner(cfg)
	if err != nil {
		t.Fatalf("spawner failed: %v", err)
	}
	ssh, ok := spawner.(tools.SSHSpawner)
	if !ok || ssh.Host != "win-a" || ssh.User != "admin" || ssh.Timeout != 3*time.Second {
		t.Fatalf("unexpected spawner %#v", spawner)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"bad timeout":      "[ssh]\ntimeout = \"soon\"\n",
		"unknown key":      "bogus = 1\n",
		"ssh missing user": "[ssh]\nenabled = true\nhost = \"win-a\"\nkey_path = \"/k\"\n",
		"negative rate":    "[server]\nrate_limit_per_minute = -1\n",
		"bad toml":         "binary = \n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected load error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil || !strings.Contains(err.Error(), "config load failed") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestSpawnerLocalByDefault(t *testing.T) {
	testlog.Start(t)
	spawner, err := Spawner(DefaultConfig())
	if err != nil {
		t.Fatalf("spawner failed: %v", err)
	}
	if _, ok := spawner.(tools.ExecSpawner); !ok {
		t.Fatalf("expected local spawner, got %T", spawner)
	}
}

func TestSpawnerReadsPassphraseFromEnv(t *testing.T) {
	testlog.Start(t)
	t.Setenv(EnvSSHPassphrase, "hunter2")
	cfg := DefaultConfig()
	cfg.SSH = SSHConfig{Enabled: true, Host: "win-a", User: "admin", KeyPath: "/k"}
	spawner, err := Spawner(cfg)
	if err != nil {
		t.Fatalf("spawner failed: %v", err)
	}
	if string(spawner.(tools.SSHSpawner).Passphrase) != "hunter2" {
		t.Fatalf("passphrase not read from env")
	}
}

func TestLoadAuthToken(t *testing.T) {
	testlog.Start(t)
	if cfg := DefaultConfig(); cfg.Server.Addr != "127.0.0.1:9200" || cfg.Server.AuthToken != "" {
		t.Fatalf("defaults should bind loopback without a token: %+v", cfg.Server)
	}

	path := writeConfig(t, "[server]\nauth_token = \"from-file\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.AuthToken != "from-file" {
		t.Fatalf("unexpected token %q", cfg.Server.AuthToken)
	}

	t.Setenv(EnvAPIToken, "from-env")
	for _, p := range []string{path, ""} {
		cfg, err := Load(p)
		if err != nil {
			t.Fatalf("load %q failed: %v", p, err)
		}
		if cfg.Server.AuthToken != "from-env" {
			t.Fatalf("env token should win for %q, got %q", p, cfg.Server.AuthToken)
		}
	}
}
