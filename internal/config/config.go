// Package config loads runtime settings from .env, an optional points.yaml and
// the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the binaries read.
type Config struct {
	SSH     SSHConfig     `mapstructure:"ssh"`
	Web     WebConfig     `mapstructure:"web"`
	Log     LogConfig     `mapstructure:"log"`
	Game    GameConfig    `mapstructure:"game"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type SSHConfig struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	HostKey string `mapstructure:"hostKey"`
}

type WebConfig struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// GameConfig sets what a new session starts with. The area is the logical
// play area terminal clients scale to their window.
type GameConfig struct {
	DefaultCount int `mapstructure:"defaultCount"`
	AreaWidth    int `mapstructure:"areaWidth"`
	AreaHeight   int `mapstructure:"areaHeight"`
}

type MetricsConfig struct {
	// Addr serves /metrics for the SSH server when set. The web server always
	// serves it on its own port.
	Addr string `mapstructure:"addr"`
}

// env maps config keys to the environment variables that override them.
var env = map[string]string{
	"ssh.host":           "SSH_HOST",
	"ssh.port":           "SSH_PORT",
	"ssh.hostKey":        "SSH_HOST_KEY",
	"web.host":           "WEB_HOST",
	"web.port":           "WEB_PORT",
	"web.allowedOrigins": "WEB_ALLOWED_ORIGINS",
	"log.level":          "LOG_LEVEL",
	"log.pretty":         "LOG_PRETTY",
	"game.defaultCount":  "GAME_DEFAULT_COUNT",
	"game.areaWidth":     "GAME_AREA_WIDTH",
	"game.areaHeight":    "GAME_AREA_HEIGHT",
	"metrics.addr":       "METRICS_ADDR",
}

// Load reads configuration. A missing .env or points.yaml is not an error;
// an unreadable points.yaml is. configDir is searched for points.yaml.
func Load(configDir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	v.SetConfigName("points")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Web.AllowedOrigins = splitList(cfg.Web.AllowedOrigins)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ssh.host", "::")
	v.SetDefault("ssh.port", "2222")
	v.SetDefault("ssh.hostKey", "/app/keys/host_key")

	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", "8080")
	v.SetDefault("web.allowedOrigins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	v.SetDefault("game.defaultCount", 5)
	v.SetDefault("game.areaWidth", 650)
	v.SetDefault("game.areaHeight", 400)

	v.SetDefault("metrics.addr", "")
}

// splitList accepts both a YAML list and a comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
