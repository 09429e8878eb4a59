// Package config loads the application configuration with viper.
//
// Values come from an optional YAML file and are overridden by environment
// variables prefixed with APPDALOJA_, where nested keys use "_" for ".":
// APPDALOJA_CACHE_DRIVER=memory overrides cache.driver.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/mrapps/appdaloja/pkg/cache"
	"github.com/mrapps/appdaloja/pkg/keys"
	"github.com/mrapps/appdaloja/pkg/logger"
	"github.com/mrapps/appdaloja/pkg/telemetry"
)

const (
	envPrefix     = "APPDALOJA"
	configFileEnv = "APPDALOJA_CONFIG_FILE"
)

// AppConfig is the root configuration
type AppConfig struct {
	App       App              `mapstructure:"app" yaml:"app"`
	Session   SessionConfig    `mapstructure:"session" yaml:"session"`
	Cache     cache.Config     `mapstructure:"cache" yaml:"cache"`
	Logger    logger.Config    `mapstructure:"logger" yaml:"logger"`
	Telemetry telemetry.Config `mapstructure:"telemetry" yaml:"telemetry"`
	APIServer APIServerConfig  `mapstructure:"apiServer" yaml:"apiServer"`
}

type App struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Version     string `mapstructure:"version" yaml:"version"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// SessionConfig holds the store layout settings
type SessionConfig struct {
	// Namespace prefixes every persisted key. Changing it orphans existing data.
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

type APIServerConfig struct {
	Host string     `mapstructure:"host" yaml:"host"`
	Port int        `mapstructure:"port" yaml:"port"`
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`
	CORS CORSConfig `mapstructure:"cors" yaml:"cors"`
}

type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	APIKeys []string `mapstructure:"apiKeys" yaml:"apiKeys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins" yaml:"allowedOrigins"`
	AllowedMethods []string `mapstructure:"allowedMethods" yaml:"allowedMethods"`
	AllowedHeaders []string `mapstructure:"allowedHeaders" yaml:"allowedHeaders"`
}

var (
	appConfig     *AppConfig
	appConfigErr  error
	appConfigOnce sync.Once
)

// GetConfig loads the process configuration once, from the file named by
// APPDALOJA_CONFIG_FILE when set
func GetConfig() (*AppConfig, error) {
	appConfigOnce.Do(func() {
		appConfig, appConfigErr = LoadConfig(os.Getenv(configFileEnv))
	})
	return appConfig, appConfigErr
}

// LoadConfig reads path (optional) and the environment into an AppConfig
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "appdaloja")
	v.SetDefault("app.environment", "local")

	v.SetDefault("session.namespace", keys.DefaultNamespace)

	v.SetDefault("cache.driver", cache.DriverSQLite)
	v.SetDefault("cache.sqlite.path", "data/session.db")
	v.SetDefault("cache.sqlite.busyTimeout", 5*time.Second)
	v.SetDefault("cache.inmemory.defaultExpiration", 0)
	v.SetDefault("cache.inmemory.cleanupInterval", 600)
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", "6379")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.serviceName", "appdaloja-session")

	v.SetDefault("apiServer.host", "127.0.0.1")
	v.SetDefault("apiServer.port", 8089)
	v.SetDefault("apiServer.auth.enabled", false)
	v.SetDefault("apiServer.cors.allowedMethods", []string{"GET", "OPTIONS"})
	v.SetDefault("apiServer.cors.allowedHeaders", []string{"Origin", "Content-Type", "X-API-Key"})
}

// Validate checks settings that would otherwise fail late
func (c *AppConfig) Validate() error {
	if _, err := keys.New(c.Session.Namespace); err != nil {
		return fmt.Errorf("invalid session namespace: %w", err)
	}
	if c.APIServer.Auth.Enabled && len(c.APIServer.Auth.APIKeys) == 0 {
		return errors.New("api server auth is enabled but no api keys are configured")
	}
	if c.APIServer.Port < 0 || c.APIServer.Port > 65535 {
		return fmt.Errorf("invalid api server port %d", c.APIServer.Port)
	}
	return nil
}
