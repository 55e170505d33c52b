// Package config loads the command line settings from flags, SSSS_*
// environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Beastly713/ssss/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g. SSSS_THRESHOLD.
const EnvPrefix = "SSSS"

// Keys understood by Load.
const (
	KeyThreshold = "threshold"
	KeyShares    = "shares"
	KeyHex       = "hex"
	KeyToken     = "token"
	KeyDiffusion = "diffusion"
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the resolved set of settings.
type Config struct {
	Threshold int
	Shares    int
	Hex       bool
	Token     string
	Diffusion bool
	Log       logging.Config
}

// NewViper returns a viper instance with defaults and environment lookup
// set up. Nested keys map to underscores: log.level is SSSS_LOG_LEVEL.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyThreshold, 0)
	v.SetDefault(KeyShares, 0)
	v.SetDefault(KeyHex, false)
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyDiffusion, true)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// ReadFile merges the config file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// BindFlags binds the named flags of fs to the keys they set. Flags that do
// not exist in fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load resolves the settings in v.
func Load(v *viper.Viper) (*Config, error) {
	conf := &Config{
		Threshold: v.GetInt(KeyThreshold),
		Shares:    v.GetInt(KeyShares),
		Hex:       v.GetBool(KeyHex),
		Token:     v.GetString(KeyToken),
		Diffusion: v.GetBool(KeyDiffusion),
		Log: logging.Config{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks the ranges Load cannot express through types.
func (c *Config) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("%w: threshold %d is negative", ErrInvalidConfig, c.Threshold)
	}
	if c.Shares < 0 {
		return fmt.Errorf("%w: shares %d is negative", ErrInvalidConfig, c.Shares)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
