package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. COUCHVIEW_COUCHDB_URL
const EnvPrefix = "COUCHVIEW"

// Config represents the configuration implementation.
type Config struct {
	AppName  string
	RunMode  string
	CouchDB  *CouchDB
	Logger   *Logger
	Cache    *Cache
	Observes *Observes
	Viper    *viper.Viper
}

// LoadConfig loads the configuration from the file.
// An empty path searches the default locations; a missing file there is not
// an error, so the client can run from environment variables alone.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("couchview")
		v.AddConfigPath("/etc/couchview")
		v.AddConfigPath("$HOME/.couchview")
		v.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppName:  getStringOrDefault(v, "app_name", "couchview"),
		RunMode:  getStringOrDefault(v, "run_mode", "production"),
		CouchDB:  getCouchDBConfig(v),
		Logger:   getLoggerConfig(v),
		Cache:    getCacheConfig(v),
		Observes: getObservesConfig(v),
		Viper:    v,
	}
}
