package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Server struct {
	Address  string `mapstructure:"address"`
	HTTPPort string `mapstructure:"http_port"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HomeAssistant struct {
	URL        string `mapstructure:"url"`
	Token      string `mapstructure:"token"`
	ConfigPath string `mapstructure:"config_path"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

type Config struct {
	Server        Server        `mapstructure:"server"`
	Logging       Logging       `mapstructure:"logging"`
	Database      Database      `mapstructure:"database"`
	HomeAssistant HomeAssistant `mapstructure:"home_assistant"`
}

// Load reads the config file (optional) and merges HASPD_* env vars.
// HA URL and token may come entirely from the environment:
// HASPD_HOME_ASSISTANT_URL, HASPD_HOME_ASSISTANT_TOKEN.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("database.driver", "")
	v.SetDefault("home_assistant.url", "http://homeassistant:8123")
	v.SetDefault("home_assistant.config_path", "/config/openhasp")
	v.SetDefault("home_assistant.timeout_sec", 10)

	v.SetEnvPrefix("HASPD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
