// Package config loads blockbridge settings from YAML, a .env file and
// BLOCKBRIDGE_* environment variables.
package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"time"

	"github.com/sessamekesh/blockbridge/pkg/bridge"
	"github.com/sessamekesh/blockbridge/pkg/coords"
	"github.com/sessamekesh/blockbridge/pkg/validate"
	"go.uber.org/zap"
)

//go:embed defaults/blockbridge.yaml
var defaultConfigYAML []byte

type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Commands   CommandsConfig   `yaml:"commands"`
	Queries    QueriesConfig    `yaml:"queries"`
}

type ConnectionConfig struct {
	Endpoint           string        `yaml:"endpoint"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout"`
	MaxReadMessageSize int64         `yaml:"max_read_message_size"`
}

type CommandsConfig struct {
	// flat or absolute
	WorldScheme string `yaml:"world_scheme"`
	// At most validate.DefaultMaxMessageLength
	MaxMessageLength int `yaml:"max_message_length"`
	// Denied on top of validate.DefaultDeniedCommands, which cannot be lifted
	ExtraDeniedCommands []string `yaml:"extra_denied_commands"`
}

type QueriesConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxPending     int           `yaml:"max_pending"`
}

// Default is used when even the embedded YAML cannot be parsed.
func Default() Config {
	return Config{
		Connection: ConnectionConfig{
			Endpoint:           "ws://localhost:3002/ws",
			ConnectTimeout:     5 * time.Second,
			MaxReadMessageSize: 64 * 1024,
		},
		Commands: CommandsConfig{
			WorldScheme:         coords.WorldScheme_Flat.String(),
			MaxMessageLength:    validate.DefaultMaxMessageLength,
			ExtraDeniedCommands: []string{},
		},
		Queries: QueriesConfig{
			RequestTimeout: bridge.DefaultRequestTimeout,
			MaxPending:     bridge.DefaultMaxPendingRequests,
		},
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Connection.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Connection.Endpoint, err)
	}
	if (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("endpoint must be a ws:// or wss:// url, got %q", c.Connection.Endpoint)
	}
	if c.Connection.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive, got %s", c.Connection.ConnectTimeout)
	}
	if _, err := coords.ParseWorldScheme(c.Commands.WorldScheme); err != nil {
		return err
	}
	if c.Commands.MaxMessageLength <= 0 || c.Commands.MaxMessageLength > validate.DefaultMaxMessageLength {
		return fmt.Errorf("max_message_length must be in [1, %d], got %d", validate.DefaultMaxMessageLength, c.Commands.MaxMessageLength)
	}
	if c.Queries.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.Queries.RequestTimeout)
	}
	if c.Queries.MaxPending <= 0 {
		return fmt.Errorf("max_pending must be positive, got %d", c.Queries.MaxPending)
	}
	return nil
}

func (c *Config) ToBridgeConfig(logger *zap.Logger) (bridge.BridgeConfig, error) {
	if err := c.Validate(); err != nil {
		return bridge.BridgeConfig{}, err
	}
	scheme, err := coords.ParseWorldScheme(c.Commands.WorldScheme)
	if err != nil {
		return bridge.BridgeConfig{}, err
	}

	return bridge.BridgeConfig{
		Endpoint:            c.Connection.Endpoint,
		ConnectTimeout:      c.Connection.ConnectTimeout,
		MaxReadMessageSize:  c.Connection.MaxReadMessageSize,
		WorldScheme:         scheme,
		MaxMessageLength:    c.Commands.MaxMessageLength,
		ExtraDeniedCommands: c.Commands.ExtraDeniedCommands,
		RequestTimeout:      c.Queries.RequestTimeout,
		MaxPendingRequests:  c.Queries.MaxPending,
		Logger:              logger,
	}, nil
}
