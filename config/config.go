// Package config loads kahawai settings from a YAML file and KAHAWAI_* environment variables.
package config

import (
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/viper"
	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/transport"
	"github.com/ugparu/kahawai/utils/logger"
)

// Config is the root configuration.
type Config struct {
	Log       LogConfig            `mapstructure:"log"`
	Transport transport.Parameters `mapstructure:"transport"`
	Session   SessionConfig        `mapstructure:"session"`
	Status    StatusConfig         `mapstructure:"status"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: trace, debug, info, warn, error
	Level string `mapstructure:"level"`
}

// SessionConfig describes the sessions the serve command opens.
type SessionConfig struct {
	FrameRate string `mapstructure:"frame_rate"`
	Encoders  int    `mapstructure:"encoders"`
	Decoders  int    `mapstructure:"decoders"`
}

// StatusConfig controls the status HTTP server.
type StatusConfig struct {
	// Listen address, empty disables the server.
	Listen string `mapstructure:"listen"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("transport.port", "")
	v.SetDefault("transport.local_addr", "")
	v.SetDefault("transport.max_encode_sessions", 0)
	v.SetDefault("transport.max_decode_sessions", 0)
	v.SetDefault("transport.dma_device", "")

	v.SetDefault("session.frame_rate", "30000/1001")
	v.SetDefault("session.encoders", 1)
	v.SetDefault("session.decoders", 0)

	v.SetDefault("status.listen", "127.0.0.1:9110")
}

// Load reads path, if not empty, on top of the defaults and applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KAHAWAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, oops.In("config").With("path", path).Wrapf(err, "read config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, oops.In("config").Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that can be checked without touching the transport.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return oops.In("config").With("level", c.Log.Level).Wrap(err)
	}
	if _, err := c.Session.Rate(); err != nil {
		return oops.In("config").With("frame_rate", c.Session.FrameRate).Wrap(err)
	}
	if c.Session.Encoders < 0 || c.Session.Decoders < 0 {
		return oops.In("config").Errorf("negative session count %d/%d", c.Session.Encoders, c.Session.Decoders)
	}
	return nil
}

// Rate returns the configured frame rate.
func (s SessionConfig) Rate() (kahawai.Rational, error) {
	return kahawai.ParseRational(s.FrameRate)
}
