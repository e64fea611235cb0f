package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix = "PDFLEARN_"

	EnvDev  = "dev"
	EnvProd = "prod"

	DatabaseFile = "pdflearn.db"
	KeyFile      = "session.key"
)

// Config holds runtime settings for the pdflearn CLI.
type Config struct {
	APIURL              string        `yaml:"api_url" env:"API_URL"`
	DataDir             string        `yaml:"data_dir" env:"DATA_DIR"`
	RequestTimeout      time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `yaml:"online_check_interval" env:"ONLINE_CHECK_INTERVAL"`
	LogLevel            string        `yaml:"log_level" env:"LOG_LEVEL"`
	Environment         string        `yaml:"environment" env:"ENV"`
	SentryDSN           string        `yaml:"sentry_dsn" env:"SENTRY_DSN"`
	TraceEndpoint       string        `yaml:"trace_endpoint" env:"TRACE_ENDPOINT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://localhost:8000/api"
	c.DataDir = "~/.pdflearn"
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "info"
	c.Environment = EnvProd
}

func (c *Config) IsDev() bool { return c.Environment == EnvDev }

// IsEnvProd reports whether errors are reported to Sentry.
func (c *Config) IsEnvProd() bool {
	return c.Environment == EnvProd && c.SentryDSN != ""
}

// DatabasePath is the location of the local SQLite database.
func (c *Config) DatabasePath() string { return filepath.Join(c.DataDir, DatabaseFile) }

// KeyPath is the location of the key that seals the stored token.
func (c *Config) KeyPath() string { return filepath.Join(c.DataDir, KeyFile) }

// Validate checks values that would only fail later and less clearly.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url %q must be an absolute http(s) URL", c.APIURL)
	}
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout must not be negative")
	}
	if c.OnlineCheckInterval <= 0 {
		return errors.New("online_check_interval must be positive")
	}
	return nil
}

// Source carries the inputs LoadConfig reads besides the defaults.
type Source struct {
	// Flags holds flags registered with BindFlags. Only flags the user set
	// override other sources.
	Flags *pflag.FlagSet
	// Environ lists KEY=value pairs; nil means os.Environ.
	Environ []string
	// DotEnv is the .env path loaded in dev; empty means ".env".
	DotEnv string
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file, the environment and the command line. Later sources take
// precedence over earlier ones.
func LoadConfig(src Source) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagString(src.Flags, FlagConfig); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}

	environ, err := environment(src)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := applyFlags(cfg, src.Flags); err != nil {
		return nil, err
	}

	dir, err := expandHome(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseFile overlays cfg with a YAML document. JSON files parse the same way.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// environment returns the variables as a map, merging .env values in dev
// mode. Real variables win over .env entries.
func environment(src Source) (map[string]string, error) {
	list := src.Environ
	if list == nil {
		list = os.Environ()
	}
	vars := make(map[string]string, len(list))
	for _, kv := range list {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}
	if vars[EnvPrefix+"ENV"] != EnvDev {
		return vars, nil
	}

	path := src.DotEnv
	if path == "" {
		path = ".env"
	}
	dotenv, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return vars, nil
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	for k, v := range dotenv {
		if _, set := vars[k]; !set {
			vars[k] = v
		}
	}
	return vars, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
