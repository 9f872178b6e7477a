package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	TargetLocal = "local"
	TargetSSH   = "ssh"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the resolved runtime configuration for one provisioning run.
type Config struct {
	Target string
	SSH    SSHConfig
	Apt    AptConfig
	Report ReportConfig
	Tools  ToolsConfig
}

// SSHConfig describes the remote target used when Target is "ssh".
type SSHConfig struct {
	Host                        string
	Port                        string
	User                        string
	KeyPath                     string
	KnownHostsPath              string
	InsecureSkipHostKeyChecking bool
	Timeout                     time.Duration
}

type AptConfig struct {
	// RefreshIndex controls the single apt-get update the driver issues
	// before the first apt recipe.
	RefreshIndex bool
}

type ReportConfig struct {
	Path            string
	MetricsTextfile string
}

type ToolsConfig struct {
	// Skip lists optional catalog entries to leave unmanaged.
	Skip []string
}

func DefaultConfig() Config {
	return Config{
		Target: TargetLocal,
		SSH: SSHConfig{
			Port:    "22",
			Timeout: 10 * time.Second,
		},
		Apt:   AptConfig{RefreshIndex: true},
		Tools: ToolsConfig{Skip: []string{}},
	}
}

type fileConfig struct {
	Target string           `toml:"target"`
	SSH    fileSSHConfig    `toml:"ssh"`
	Apt    fileAptConfig    `toml:"apt"`
	Report fileReportConfig `toml:"report"`
	Tools  fileToolsConfig  `toml:"tools"`
}

type fileSSHConfig struct {
	Host                        string `toml:"host"`
	Port                        string `toml:"port"`
	User                        string `toml:"user"`
	KeyPath                     string `toml:"key_path"`
	KnownHostsPath              string `toml:"known_hosts_path"`
	InsecureSkipHostKeyChecking bool   `toml:"insecure_skip_host_key_checking"`
	Timeout                     string `toml:"timeout"`
}

type fileAptConfig struct {
	RefreshIndex bool `toml:"refresh_index"`
}

type fileReportConfig struct {
	Path            string `toml:"path"`
	MetricsTextfile string `toml:"metrics_textfile"`
}

type fileToolsConfig struct {
	Skip []string `toml:"skip"`
}

// Load reads a TOML config and overlays only the keys the file defines onto
// the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("target") {
		cfg.Target = strings.ToLower(strings.TrimSpace(raw.Target))
	}

	if meta.IsDefined("ssh", "host") {
		cfg.SSH.Host = strings.TrimSpace(raw.SSH.Host)
	}
	if meta.IsDefined("ssh", "port") {
		cfg.SSH.Port = strings.TrimSpace(raw.SSH.Port)
	}
	if meta.IsDefined("ssh", "user") {
		cfg.SSH.User = strings.TrimSpace(raw.SSH.User)
	}
	if meta.IsDefined("ssh", "key_path") {
		cfg.SSH.KeyPath = strings.TrimSpace(raw.SSH.KeyPath)
	}
	if meta.IsDefined("ssh", "known_hosts_path") {
		cfg.SSH.KnownHostsPath = strings.TrimSpace(raw.SSH.KnownHostsPath)
	}
	if meta.IsDefined("ssh", "insecure_skip_host_key_checking") {
		cfg.SSH.InsecureSkipHostKeyChecking = raw.SSH.InsecureSkipHostKeyChecking
	}
	if meta.IsDefined("ssh", "timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.SSH.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse ssh timeout: %w", err)
		}
		cfg.SSH.Timeout = d
	}

	if meta.IsDefined("apt", "refresh_index") {
		cfg.Apt.RefreshIndex = raw.Apt.RefreshIndex
	}

	if meta.IsDefined("report", "path") {
		cfg.Report.Path = strings.TrimSpace(raw.Report.Path)
	}
	if meta.IsDefined("report", "metrics_textfile") {
		cfg.Report.MetricsTextfile = strings.TrimSpace(raw.Report.MetricsTextfile)
	}

	if meta.IsDefined("tools", "skip") {
		cfg.Tools.Skip = normalizeSkip(raw.Tools.Skip)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Target {
	case TargetLocal:
	case TargetSSH:
		if strings.TrimSpace(c.SSH.Host) == "" {
			return fmt.Errorf("%w: ssh target requires ssh.host", ErrInvalidConfig)
		}
		if strings.TrimSpace(c.SSH.User) == "" {
			return fmt.Errorf("%w: ssh target requires ssh.user", ErrInvalidConfig)
		}
		if strings.TrimSpace(c.SSH.KeyPath) == "" {
			return fmt.Errorf("%w: ssh target requires ssh.key_path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown target %q", ErrInvalidConfig, c.Target)
	}

	if c.SSH.Timeout < 0 {
		return fmt.Errorf("%w: ssh.timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

func normalizeSkip(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, id := range in {
		v := strings.TrimSpace(id)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
