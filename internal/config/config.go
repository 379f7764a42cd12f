// Package config loads txengine settings. Sources are layered, later ones
// winning: built-in defaults, an optional YAML file, a .env file, then the
// process environment. CLI flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tinoosan/txengine/internal/errs"
)

// Config holds every tunable of a run.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Replay ReplayConfig `yaml:"replay"`
	Serve  ServeConfig  `yaml:"serve"`
	// DatabaseURL enables the Postgres snapshot export when set.
	DatabaseURL string `yaml:"database_url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ReplayConfig struct {
	Sorted      bool   `yaml:"sorted"`
	OnMalformed string `yaml:"on_malformed"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info", Format: "json"},
		Replay: ReplayConfig{OnMalformed: "fail"},
	}
}

// Load builds a Config from yamlPath (optional) and envPath (optional .env
// file; when empty a .env in the working directory is used if present).
func Load(yamlPath, envPath string) (Config, error) {
	cfg := Default()
	if yamlPath != "" {
		b, err := os.ReadFile(yamlPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// a missing .env is fine
		_ = godotenv.Load()
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		c.DatabaseURL = v
	}
	if v, ok := lookup("TXENGINE_ON_MALFORMED"); ok {
		c.Replay.OnMalformed = v
	}
	if v, ok := lookup("TXENGINE_SERVE_ADDR"); ok {
		c.Serve.Addr = v
	}
	if v, ok := lookup("TXENGINE_SORTED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TXENGINE_SORTED: %w", err)
		}
		c.Replay.Sorted = b
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	var problems []error
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error", "err", "":
	default:
		problems = append(problems, fmt.Errorf("log level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "":
	default:
		problems = append(problems, fmt.Errorf("log format %q", c.Log.Format))
	}
	switch c.Replay.OnMalformed {
	case "fail", "skip", "":
	default:
		problems = append(problems, fmt.Errorf("on_malformed %q", c.Replay.OnMalformed))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w config: %w", errs.ErrInvalid, errors.Join(problems...))
	}
	return nil
}
