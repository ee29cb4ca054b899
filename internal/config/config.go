package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBinary = "wmic"
	DefaultAddr   = "127.0.0.1:9200"
	DefaultNodeID = "wmicctl"

	EnvSSHPassphrase = "WMICCTL_SSH_PASSPHRASE"
	EnvAPIToken      = "WMICCTL_API_TOKEN"
)

type Config struct {
	Binary string       `toml:"binary"`
	Server ServerConfig `toml:"server"`
	SSH    SSHConfig    `toml:"ssh"`
}

// ServerConfig configures the HTTP API. AuthToken guards the routes that
// run commands or change processes; when empty those routes reject every
// request.
type ServerConfig struct {
	ID                 string   `toml:"id"`
	Addr               string   `toml:"addr"`
	CorsOrigins        []string `toml:"cors_origins"`
	RateLimitPerMinute int      `toml:"rate_limit_per_minute"`
	RateLimitBurst     int      `toml:"rate_limit_burst"`
	AuthToken          string   `toml:"auth_token"`
}

// SSHConfig routes executions to a remote host when Enabled.
type SSHConfig struct {
	Enabled                     bool          `toml:"enabled"`
	Host                        string        `toml:"host"`
	Port                        string        `toml:"port"`
	User                        string        `toml:"user"`
	KeyPath                     string        `toml:"key_path"`
	KnownHostsPath              string        `toml:"known_hosts_path"`
	InsecureSkipHostKeyChecking bool          `toml:"insecure_skip_host_key_checking"`
	Timeout                     time.Duration `toml:"-"`
}

type fileSSH struct {
	Timeout string `toml:"timeout"`
}

type fileConfig struct {
	SSH fileSSH `toml:"ssh"`
}

func DefaultConfig() Config {
	return Config{
		Binary: DefaultBinary,
		Server: ServerConfig{
			ID:                 DefaultNodeID,
			Addr:               DefaultAddr,
			RateLimitPerMinute: 120,
			RateLimitBurst:     20,
		},
		SSH: SSHConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// Load overlays the TOML file at path onto DefaultConfig. An empty path
// returns the defaults. A non-empty WMICCTL_API_TOKEN replaces
// server.auth_token.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		applyEnv(&cfg)
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("ssh", "timeout") {
		var raw fileConfig
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		d, err := time.ParseDuration(strings.TrimSpace(raw.SSH.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse ssh.timeout: %w", err)
		}
		cfg.SSH.Timeout = d
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 && !onlyTimeout(undecoded) {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown keys %v", path, undecoded)
	}

	applyEnv(&cfg)
	cfg.Binary = strings.TrimSpace(cfg.Binary)
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIToken)); v != "" {
		cfg.Server.AuthToken = v
	}
}

func onlyTimeout(keys []toml.Key) bool {
	for _, key := range keys {
		if key.String() != "ssh.timeout" {
			return false
		}
	}
	return true
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	if cfg.Server.RateLimitPerMinute < 0 || cfg.Server.RateLimitBurst < 0 {
		return fmt.Errorf("server rate limit must not be negative")
	}
	if cfg.SSH.Enabled {
		if err := ValidateSSH(cfg.SSH); err != nil {
			return fmt.Errorf("ssh invalid: %w", err)
		}
	}
	return nil
}

func ValidateSSH(cfg SSHConfig) error {
	if strings.TrimSpace(cfg.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if strings.TrimSpace(cfg.User) == "" {
		return fmt.Errorf("user is required")
	}
	if strings.TrimSpace(cfg.KeyPath) == "" {
		return fmt.Errorf("key_path is required")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
