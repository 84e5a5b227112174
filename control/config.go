// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Program configuration: YAML file with defaults and validation.

package control

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults shared by the example programs.
const (
	DefaultHost        = "localhost"
	DefaultPort        = 12121
	DefaultWaitTimeout = time.Second
	DefaultEventBuffer = 1024
	DefaultSendBuffer  = 8192
	DefaultRecvBuffer  = 8192
	DefaultBacklog     = 512
)

// EndpointConfig names a TCP host and port.
type EndpointConfig struct {
	Host string `yaml:"host"`
	Port uint16 `yaml:"port"`
}

// ReactorConfig tunes the event loop.
type ReactorConfig struct {
	WaitTimeout time.Duration `yaml:"wait_timeout"`
	EventBuffer int           `yaml:"event_buffer"`
}

// SocketConfig sizes per-socket buffers.
type SocketConfig struct {
	SendBuffer int `yaml:"send_buffer"`
	RecvBuffer int `yaml:"recv_buffer"`
	Backlog    int `yaml:"backlog"`
}

// LogConfig selects the log sink. An empty Path logs to the console.
type LogConfig struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the full program configuration.
type Config struct {
	Listen  EndpointConfig `yaml:"listen"`
	Connect EndpointConfig `yaml:"connect"`
	Reactor ReactorConfig  `yaml:"reactor"`
	Socket  SocketConfig   `yaml:"socket"`
	Log     LogConfig      `yaml:"log"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

// DefaultConfig returns a config usable without a file.
func DefaultConfig() *Config {
	return &Config{
		Listen:  EndpointConfig{Host: DefaultHost, Port: DefaultPort},
		Connect: EndpointConfig{Host: DefaultHost, Port: DefaultPort},
		Reactor: ReactorConfig{WaitTimeout: DefaultWaitTimeout, EventBuffer: DefaultEventBuffer},
		Socket: SocketConfig{
			SendBuffer: DefaultSendBuffer,
			RecvBuffer: DefaultRecvBuffer,
			Backlog:    DefaultBacklog,
		},
		Log: LogConfig{Level: "info", MaxSizeMB: 16, MaxBackups: 3},
	}
}

// LoadConfig reads path over the defaults. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Reactor.WaitTimeout < 0:
		return fmt.Errorf("reactor.wait_timeout must not be negative: %v", c.Reactor.WaitTimeout)
	case c.Reactor.EventBuffer <= 0:
		return fmt.Errorf("reactor.event_buffer must be positive: %d", c.Reactor.EventBuffer)
	case c.Socket.SendBuffer <= 0:
		return fmt.Errorf("socket.send_buffer must be positive: %d", c.Socket.SendBuffer)
	case c.Socket.RecvBuffer <= 0:
		return fmt.Errorf("socket.recv_buffer must be positive: %d", c.Socket.RecvBuffer)
	case c.Socket.Backlog <= 0:
		return fmt.Errorf("socket.backlog must be positive: %d", c.Socket.Backlog)
	case c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0:
		return errors.New("log rotation limits must not be negative")
	}
	return nil
}
