package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	DatabaseURL    string
	WordsFile      string
	AllowedOrigins []string

	DefaultRounds     int
	DefaultRoundTime  time.Duration
	WordChoiceTimeout time.Duration

	LogLevel  string
	LogFormat string

	// Per-connection inbound limits.
	MessageRate  float64
	MessageBurst int
}

// Load reads the environment, after merging any .env files given (or ./.env
// when none are). Missing .env files are not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		WordsFile:   getString("WORDS_FILE", "words.json"),
		LogLevel:    getString("LOG_LEVEL", "info"),
		LogFormat:   getString("LOG_FORMAT", "console"),
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	var err error
	if cfg.Port, err = getInt("PORT", 8080); err != nil {
		return Config{}, err
	}
	if cfg.DefaultRounds, err = getInt("DEFAULT_ROUNDS", 2); err != nil {
		return Config{}, err
	}
	roundSeconds, err := getInt("DEFAULT_ROUND_SECONDS", 40)
	if err != nil {
		return Config{}, err
	}
	cfg.DefaultRoundTime = time.Duration(roundSeconds) * time.Second

	choiceSeconds, err := getInt("WORD_CHOICE_SECONDS", 15)
	if err != nil {
		return Config{}, err
	}
	cfg.WordChoiceTimeout = time.Duration(choiceSeconds) * time.Second

	if cfg.MessageBurst, err = getInt("MESSAGE_BURST", 60); err != nil {
		return Config{}, err
	}
	rate := getString("MESSAGE_RATE", "30")
	if cfg.MessageRate, err = strconv.ParseFloat(rate, 64); err != nil {
		return Config{}, fmt.Errorf("MESSAGE_RATE: %q is not a number", rate)
	}

	if cfg.DefaultRounds < 1 {
		return Config{}, fmt.Errorf("DEFAULT_ROUNDS must be positive, got %d", cfg.DefaultRounds)
	}
	if cfg.DefaultRoundTime <= 0 {
		return Config{}, fmt.Errorf("DEFAULT_ROUND_SECONDS must be positive, got %d", roundSeconds)
	}
	if cfg.WordChoiceTimeout < 0 {
		return Config{}, fmt.Errorf("WORD_CHOICE_SECONDS must not be negative, got %d", choiceSeconds)
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}
