package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultNotificationTemplate is used when no template is configured.
// {sender} is replaced with the sender's username.
const DefaultNotificationTemplate = "You received a new message from {sender}"

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// NotificationConfig controls notification text.
type NotificationConfig struct {
	Template string `mapstructure:"template"`
}

// Config is the resolved runtime configuration.
type Config struct {
	DBPath        string             `mapstructure:"db_path"`
	BusyTimeoutMS int                `mapstructure:"busy_timeout_ms"`
	Log           LogConfig          `mapstructure:"log"`
	Notification  NotificationConfig `mapstructure:"notification"`

	// Derived
	BusyTimeout time.Duration `mapstructure:"-"`
}

// LoadConfig resolves configuration for a project. Sources, lowest
// precedence first: defaults, .quill/config.yaml, <root>/.env, QUILL_* env.
func LoadConfig(project Project) (*Config, error) {
	if project.Root != "" {
		envPath := filepath.Join(project.Root, ".env")
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	v := viper.New()
	v.SetDefault("db_path", project.DBPath)
	v.SetDefault("busy_timeout_ms", 5000)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)
	v.SetDefault("notification.template", DefaultNotificationTemplate)

	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if project.DBPath != "" {
		path := project.ConfigPath()
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.BusyTimeoutMS <= 0 {
		cfg.BusyTimeoutMS = 5000
	}
	if strings.TrimSpace(cfg.Notification.Template) == "" {
		cfg.Notification.Template = DefaultNotificationTemplate
	}
	cfg.BusyTimeout = time.Duration(cfg.BusyTimeoutMS) * time.Millisecond
	return &cfg, nil
}
