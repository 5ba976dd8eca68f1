package conf

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mosaicdim/recents/internal/errors"
)

// Config is the process configuration, loaded from an optional config file
// and RECENTS_* environment variables.
type Config struct {
	HTTPAddr string `mapstructure:"http_addr"`

	// messaging server
	ServerURL             string `mapstructure:"server_url"`
	EventURL              string `mapstructure:"event_url"`
	APIKey                string `mapstructure:"api_key"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`

	// backfill
	BatchSize int `mapstructure:"batch_size"`

	SnapshotPath string `mapstructure:"snapshot_path"`
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Load reads configuration. An empty path loads defaults plus environment
// overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("http_addr", "127.0.0.1:5040")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("batch_size", 100)
	v.SetDefault("snapshot_path", "recents.db")

	v.SetEnvPrefix("recents")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.InitConfigFailed(err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.InitConfigFailed(err)
	}
	return cfg, nil
}
