package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ponyo877/livechat/server/logging"
	"github.com/spf13/viper"
)

// DefaultSessionSecret is only suitable for local development.
const DefaultSessionSecret = "livechat-development-secret"

type Config struct {
	Server   ServerConfig
	Presence PresenceConfig
	Stream   StreamConfig
	Session  SessionConfig
	Log      logging.Config
}

type ServerConfig struct {
	Host              string
	HTTPPort          int           `mapstructure:"http_port"`
	GRPCPort          int           `mapstructure:"grpc_port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

func (c ServerConfig) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

func (c ServerConfig) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}

type PresenceConfig struct {
	Capacity int
	TTL      time.Duration
}

type StreamConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

type SessionConfig struct {
	Secret     string
	MaxAge     time.Duration `mapstructure:"max_age"`
	CookieName string        `mapstructure:"cookie_name"`
	Secure     bool
}

// Load reads config.yaml from path (or the working directory) when present
// and applies environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 3000)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("presence.capacity", 100)
	v.SetDefault("presence.ttl", "1h")
	v.SetDefault("stream.buffer_size", 64)
	v.SetDefault("session.secret", DefaultSessionSecret)
	v.SetDefault("session.max_age", "1h")
	v.SetDefault("session.cookie_name", "__session")
	v.SetDefault("session.secure", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	_ = v.BindEnv("server.http_port", "PORT")
	_ = v.BindEnv("server.grpc_port", "GRPC_PORT")
	_ = v.BindEnv("session.secret", "SESSION_SECRET")
	_ = v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Presence.Capacity <= 0:
		return fmt.Errorf("presence.capacity must be positive, got %d", c.Presence.Capacity)
	case c.Presence.TTL <= 0:
		return fmt.Errorf("presence.ttl must be positive, got %s", c.Presence.TTL)
	case c.Stream.BufferSize <= 0:
		return fmt.Errorf("stream.buffer_size must be positive, got %d", c.Stream.BufferSize)
	case c.Session.Secret == "":
		return errors.New("session.secret must not be empty")
	}
	return nil
}

func (c *Config) UsesDefaultSecret() bool {
	return c.Session.Secret == DefaultSessionSecret
}
