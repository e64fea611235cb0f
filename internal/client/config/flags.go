package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

const (
	FlagConfig   = "config"
	FlagAPIURL   = "api-url"
	FlagDataDir  = "data-dir"
	FlagTimeout  = "timeout"
	FlagInterval = "interval"
	FlagLogLevel = "log-level"
	FlagEnv      = "env"
)

// BindFlags registers the configuration flags on fs. Defaults shown in help
// come from LoadDefaults; they only apply when the flag is set explicitly.
//
//	-c, --config string       path to a YAML or JSON config file
//	-a, --api-url string      base URL of the REST API
//	    --data-dir string     directory for the local database and key
//	    --timeout duration    per-request timeout (0 disables)
//	-i, --interval duration   online check interval
//	    --log-level string    debug, info, warn or error
//	    --env string          dev or prod
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a YAML or JSON config file")
	fs.StringP(FlagAPIURL, "a", d.APIURL, "base URL of the REST API")
	fs.String(FlagDataDir, d.DataDir, "directory for the local database and key")
	fs.Duration(FlagTimeout, d.RequestTimeout, "per-request timeout (0 disables)")
	fs.DurationP(FlagInterval, "i", d.OnlineCheckInterval, "online check interval")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn or error")
	fs.String(FlagEnv, d.Environment, "environment: dev or prod")
}

// applyFlags copies explicitly set flags into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagAPIURL:
			cfg.APIURL, err = fs.GetString(FlagAPIURL)
		case FlagDataDir:
			cfg.DataDir, err = fs.GetString(FlagDataDir)
		case FlagTimeout:
			cfg.RequestTimeout, err = fs.GetDuration(FlagTimeout)
		case FlagInterval:
			cfg.OnlineCheckInterval, err = fs.GetDuration(FlagInterval)
		case FlagLogLevel:
			cfg.LogLevel, err = fs.GetString(FlagLogLevel)
		case FlagEnv:
			cfg.Environment, err = fs.GetString(FlagEnv)
		}
	})
	if err != nil {
		return fmt.Errorf("read flags: %w", err)
	}
	return nil
}

func flagString(fs *pflag.FlagSet, name string) string {
	if fs == nil || fs.Lookup(name) == nil {
		return ""
	}
	v, _ := fs.GetString(name)
	return v
}
