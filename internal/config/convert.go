package config

import (
	"fmt"
	"net"

	"github.com/danmuck/rigctl/internal/runner"
)

// TargetRunner builds the command runner for the configured target.
func TargetRunner(cfg Config) (runner.Runner, error) {
	switch cfg.Target {
	case TargetLocal:
		return runner.ExecRunner{}, nil
	case TargetSSH:
		return runner.SSHRunner{
			Host:                        cfg.SSH.Host,
			Port:                        cfg.SSH.Port,
			User:                        cfg.SSH.User,
			KeyPath:                     cfg.SSH.KeyPath,
			KnownHostsPath:              cfg.SSH.KnownHostsPath,
			InsecureSkipHostKeyChecking: cfg.SSH.InsecureSkipHostKeyChecking,
			Timeout:                     cfg.SSH.Timeout,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown target %q", ErrInvalidConfig, cfg.Target)
	}
}

// TargetLabel names the target for logs and run reports.
func TargetLabel(cfg Config) string {
	if cfg.Target == TargetSSH {
		return "ssh " + cfg.SSH.User + "@" + net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)
	}
	return TargetLocal
}
