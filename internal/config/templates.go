package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "rigctl":
		return rigctlTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const rigctlTemplate = `target = "local"

[ssh]
host = ""
port = "22"
user = ""
key_path = ""
known_hosts_path = ""
insecure_skip_host_key_checking = false
timeout = "10s"

[apt]
refresh_index = true

[report]
path = ""
metrics_textfile = ""

[tools]
skip = []
`
