package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config drives the clinic CLI.
type Config struct {
	Env            string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	APIURL         string        `mapstructure:"CLINIC_API_URL"`
	SessionFile    string        `mapstructure:"CLINIC_SESSION_FILE"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	SlotCapacity   int           `mapstructure:"SLOT_CAPACITY"`
}

// StubConfig drives the local stub server.
type StubConfig struct {
	Env          string        `mapstructure:"ENV"`
	LogLevel     string        `mapstructure:"LOG_LEVEL"`
	Port         string        `mapstructure:"PORT"`
	JWTSecret    string        `mapstructure:"JWT_SECRET"`
	TokenTTL     time.Duration `mapstructure:"TOKEN_TTL"`
	SlotCapacity int           `mapstructure:"SLOT_CAPACITY"`
	SeedDemo     bool          `mapstructure:"SEED_DEMO"`
	LoginRPS     float64       `mapstructure:"LOGIN_RATE_RPS"`
	LoginBurst   int           `mapstructure:"LOGIN_RATE_BURST"`
}

func newViper(envFile string, defaults map[string]any) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
		// Bind env vars explicitly so Unmarshal picks them up
		v.BindEnv(k)
	}
	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()
	return v
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "clinic", "session.json")
}

// Load reads the CLI configuration from the environment and envFile.
func Load(envFile string) (*Config, error) {
	v := newViper(envFile, map[string]any{
		"ENV":                 "production",
		"LOG_LEVEL":           "info",
		"CLINIC_API_URL":      "http://localhost:8000",
		"CLINIC_SESSION_FILE": defaultSessionFile(),
		"REQUEST_TIMEOUT":     "15s",
		"RATE_LIMIT_RPS":      0,
		"RATE_LIMIT_BURST":    1,
		"SLOT_CAPACITY":       1,
	})

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("CLINIC_API_URL is required")
	}
	if cfg.SlotCapacity < 1 {
		return nil, fmt.Errorf("SLOT_CAPACITY must be at least 1, got %d", cfg.SlotCapacity)
	}
	return cfg, nil
}

func LoadStub(envFile string) (*StubConfig, error) {
	v := newViper(envFile, map[string]any{
		"ENV":              "development",
		"LOG_LEVEL":        "info",
		"PORT":             "8000",
		"JWT_SECRET":       "",
		"TOKEN_TTL":        "30m",
		"SLOT_CAPACITY":    1,
		"SEED_DEMO":        true,
		"LOGIN_RATE_RPS":   5,
		"LOGIN_RATE_BURST": 10,
	})

	cfg := &StubConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SlotCapacity < 1 {
		return nil, fmt.Errorf("SLOT_CAPACITY must be at least 1, got %d", cfg.SlotCapacity)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool     { return c.Env == "development" }
func (c *StubConfig) IsDev() bool { return c.Env == "development" }

// NewLogger writes JSON to w, or console output in development.
func NewLogger(w io.Writer, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
