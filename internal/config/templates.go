package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `binary = "wmic"

[server]
id = "wmicctl"
addr = "127.0.0.1:9200"
cors_origins = ["http://localhost:3000"]
rate_limit_per_minute = 120
rate_limit_burst = 20
# required by /exec, /process/call and /process/terminate; WMICCTL_API_TOKEN overrides
auth_token = ""

[ssh]
enabled = false
host = "win-host"
port = "22"
user = "Administrator"
key_path = "~/.ssh/id_ed25519"
known_hosts_path = ""
insecure_skip_host_key_checking = false
timeout = "10s"
`
