package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultAPIURL  = "http://localhost:8080"
	envPrefix      = "AUTOMATION"
	configFileName = "automation"
)

// Config is the resolved CLI configuration. Precedence: flags, AUTOMATION_* env,
// config file, defaults.
type Config struct {
	APIURL     string   `mapstructure:"api_url"`
	Token      string   `mapstructure:"token"`
	Account    string   `mapstructure:"account"`
	Interval   int      `mapstructure:"interval"`
	Segments   []string `mapstructure:"segments"`
	CreateRate float64  `mapstructure:"create_rate"`
	LogFormat  string   `mapstructure:"log_format"`
}

// New returns a viper instance with defaults and env lookup configured.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("interval", 1)
	v.SetDefault("create_rate", 5.0)
	v.SetDefault("log_format", "text")
	return v
}

// ReadFile loads path, or automation.{yaml,json,toml} from the working directory
// and ~/.config/automation when path is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "automation"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// BindFlags binds config keys to the named flags of fs.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// Load decodes the resolved configuration.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
