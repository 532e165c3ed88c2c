// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pion/logging"
	"github.com/pion/natpunch/stun"
)

// Config is the daemon configuration: session parameters plus the ambient
// settings that do not belong to a session.
type Config struct {
	Params

	LogLevel    string // trace, debug, info, warn, error or disabled
	MetricsAddr string // serve /metrics here when set
}

// DefaultConfig returns the configuration used for keys that are not set.
func DefaultConfig() Config {
	return Config{
		Params: Params{
			RemotePort:      stun.DefaultPort,
			RestartInterval: 5,
			RecvBufferSize:  DefaultRecvBufferSize,
		},
		LogLevel: "info",
	}
}

type fileConfig struct {
	RemoteAddr        string `toml:"remote_addr"`
	RemotePort        uint16 `toml:"remote_port"`
	LocalPort         uint16 `toml:"local_port"`
	KeepaliveInterval uint32 `toml:"keepalive_interval"`
	Script            string `toml:"script"`
	RestartInterval   uint32 `toml:"restart_interval"`
	RecvBufferSize    int    `toml:"recv_buffer_size"`
	LogLevel          string `toml:"log_level"`
	MetricsAddr       string `toml:"metrics_addr"`
}

// LoadConfig reads a TOML file on top of DefaultConfig and validates the
// result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", errInvalidConfig, undecoded[0].String(), path)
	}

	if meta.IsDefined("remote_addr") {
		cfg.RemoteAddr = strings.TrimSpace(raw.RemoteAddr)
	}
	if meta.IsDefined("remote_port") {
		cfg.RemotePort = raw.RemotePort
	}
	if meta.IsDefined("local_port") {
		cfg.LocalPort = raw.LocalPort
	}
	if meta.IsDefined("keepalive_interval") {
		cfg.KeepaliveInterval = raw.KeepaliveInterval
	}
	if meta.IsDefined("script") {
		cfg.Script = strings.TrimSpace(raw.Script)
	}
	if meta.IsDefined("restart_interval") {
		cfg.RestartInterval = raw.RestartInterval
	}
	if meta.IsDefined("recv_buffer_size") {
		cfg.RecvBufferSize = raw.RecvBufferSize
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration can start a session.
func (c Config) Validate() error {
	if strings.TrimSpace(c.RemoteAddr) == "" {
		return fmt.Errorf("%w: remote_addr is required", errInvalidConfig)
	}
	if c.RemotePort == 0 {
		return fmt.Errorf("%w: remote_port is required", errInvalidConfig)
	}
	if c.RecvBufferSize < 0 {
		return fmt.Errorf("%w: recv_buffer_size must not be negative", errInvalidConfig)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// ParseLogLevel maps a level name to a pion log level. An empty name is
// info.
func ParseLogLevel(raw string) (logging.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return logging.LogLevelInfo, nil
	case "trace":
		return logging.LogLevelTrace, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "error":
		return logging.LogLevelError, nil
	case "disabled", "off", "none":
		return logging.LogLevelDisabled, nil
	default:
		return logging.LogLevelDisabled, fmt.Errorf("%w: unknown log_level %q", errInvalidConfig, raw)
	}
}

// LoggerFactory returns a factory writing to w at the configured level.
// PION_LOG_* environment variables still override per-scope levels.
func (c Config) LoggerFactory(w io.Writer) (*logging.DefaultLoggerFactory, error) {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	f := logging.NewDefaultLoggerFactory()
	f.DefaultLogLevel = level
	f.Writer = w

	return f, nil
}
