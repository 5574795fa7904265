package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

// DatabaseConfig selects the record store backend. An empty path keeps
// records in a plain slice; any other value (":memory:" included) opens sqlite.
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type AppSubConfig struct {
	PageSize int    `mapstructure:"page_size"`
	Timezone string `mapstructure:"timezone"`
	Facility string `mapstructure:"facility"`
}

type GenAIConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	MaxImportRows int    `mapstructure:"max_import_rows"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppSubConfig   `mapstructure:"app"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
}

// Location resolves App.Timezone, falling back to the process local zone.
func (c *Config) Location() *time.Location {
	if c.App.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

var (
	appConfig *Config
	loadErr   error
	once      sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("app.page_size", 10)
	v.SetDefault("app.timezone", "Asia/Karachi")
	v.SetDefault("app.facility", "District Prison Malir")
	v.SetDefault("genai.model", "gemini-2.5-flash")
	v.SetDefault("genai.max_import_rows", 100)
}

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it looks for an optional "config.yaml" in the working
// directory; a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	once.Do(func() {
		appConfig, loadErr = read(path)
	})

	if loadErr != nil {
		return nil, loadErr
	}
	return appConfig, nil
}

func read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. PRS_SERVER_PORT=9000
	v.SetEnvPrefix("PRS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("genai.api_key", "PRS_GENAI_API_KEY", "API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.App.PageSize <= 0 {
		c.App.PageSize = 10
	}
	return &c, nil
}
