package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           int      `mapstructure:"port"`
	LogLevel       string   `mapstructure:"log_level"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	RoundDurationSeconds int `mapstructure:"round_duration_seconds"`
	MaxRounds            int `mapstructure:"max_rounds"`
	RevealDelaySeconds   int `mapstructure:"reveal_delay_seconds"`
	MaxPlayersPerRoom    int `mapstructure:"max_players_per_room"`

	// Optional CSV word list replacing the built-in pool.
	WordsFile string `mapstructure:"words_file"`
	// Optional; finished games are archived only when set.
	DatabaseURL string `mapstructure:"database_url"`
}

func (c *Config) RevealDelay() time.Duration {
	return time.Duration(c.RevealDelaySeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("round_duration_seconds", 60)
	v.SetDefault("max_rounds", 5)
	v.SetDefault("reveal_delay_seconds", 3)
	v.SetDefault("max_players_per_room", 8)
	v.SetDefault("words_file", "")
	v.SetDefault("database_url", "")
}

// Load reads an optional .env file, then the environment. Keys are the
// upper-case field tags, e.g. ROUND_DURATION_SECONDS.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.AllowedOrigins = splitOrigins(v.GetString("allowed_origins"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be in 1..65535, got %d", c.Port))
	}
	if c.RoundDurationSeconds <= 0 {
		errs = append(errs, fmt.Errorf("ROUND_DURATION_SECONDS must be positive, got %d", c.RoundDurationSeconds))
	}
	if c.MaxRounds <= 0 {
		errs = append(errs, fmt.Errorf("MAX_ROUNDS must be positive, got %d", c.MaxRounds))
	}
	if c.RevealDelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("REVEAL_DELAY_SECONDS must not be negative, got %d", c.RevealDelaySeconds))
	}
	if c.MaxPlayersPerRoom < 2 {
		errs = append(errs, fmt.Errorf("MAX_PLAYERS_PER_ROOM must be at least 2, got %d", c.MaxPlayersPerRoom))
	}
	return errors.Join(errs...)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
