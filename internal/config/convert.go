package config

import (
	"os"

	"github.com/danmuck/wmicctl/internal/tools"
)

// Spawner returns the process spawner selected by cfg: an SSH session
// spawner when ssh is enabled, the local one otherwise.
func Spawner(cfg Config) (tools.Spawner, error) {
	if !cfg.SSH.Enabled {
		return tools.ExecSpawner{}, nil
	}
	if err := ValidateSSH(cfg.SSH); err != nil {
		return nil, err
	}

	var passphrase []byte
	if v := os.Getenv(EnvSSHPassphrase); v != "" {
		passphrase = []byte(v)
	}
	return tools.SSHSpawner{
		Host:                        cfg.SSH.Host,
		Port:                        cfg.SSH.Port,
		User:                        cfg.SSH.User,
		KeyPath:                     cfg.SSH.KeyPath,
		Passphrase:                  passphrase,
		KnownHostsPath:              cfg.SSH.KnownHostsPath,
		InsecureSkipHostKeyChecking: cfg.SSH.InsecureSkipHostKeyChecking,
		Timeout:                     cfg.SSH.Timeout,
	}, nil
}
