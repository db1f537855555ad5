package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the process-wide runtime configuration. Values come from
// config.yaml, BANKIMPORT_* environment variables and flag overrides, in
// ascending precedence.
type Config struct {
	ListenAddr     string        `mapstructure:"listen_addr"`
	LedgerURL      string        `mapstructure:"ledger_url"`
	LedgerToken    string        `mapstructure:"ledger_token"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Timezone       string        `mapstructure:"timezone"`
	DefaultPolicy  string        `mapstructure:"default_policy"`
}

// Build loads configuration from the given file (or ./config.yaml when
// empty) and binds the provided flags as overrides.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("listen_addr", "0.0.0.0:3000")
	v.SetDefault("ledger_url", "http://localhost:8080")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("timezone", "Europe/Berlin")
	v.SetDefault("default_policy", "STRICT")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BANKIMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves the configured statement timezone. Rows without a zone
// of their own are stamped with this single fixed zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
