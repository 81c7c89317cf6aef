package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	Secret     string        `mapstructure:"secret"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`

	PresenterGrace  time.Duration `mapstructure:"presenter_grace"`
	LearnerGrace    time.Duration `mapstructure:"learner_grace"`
	ChatMinInterval time.Duration `mapstructure:"chat_min_interval"`

	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
	RateLimitMax    int           `mapstructure:"rate_limit_max"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./public")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "25s")
	v.SetDefault("presenter_grace", "60s")
	v.SetDefault("learner_grace", "7s")
	v.SetDefault("chat_min_interval", "500ms")
	v.SetDefault("rate_limit_window", "15m")
	v.SetDefault("rate_limit_max", 100)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
