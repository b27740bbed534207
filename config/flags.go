package config

import (
	"github.com/spf13/pflag"
)

// Flags are the command line overrides, they beat every other source but only when set.
type Flags struct {
	ConfigPath string
	EnvFile    string
	Addr       string
	LogLevel   string
	APIBaseURL string

	fs *pflag.FlagSet
}

func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigPath, "config", "", "path to the YAML config file (default "+DefaultConfigPath+" when present)")
	fs.StringVar(&f.EnvFile, "env-file", DefaultEnvFile, "dotenv file read before the environment")
	fs.StringVar(&f.Addr, "addr", DefaultListenAddr, "http listen address")
	fs.StringVar(&f.LogLevel, "log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&f.APIBaseURL, "api-base-url", DefaultAPIBaseURL, "base URL of the upstream API")
	return f
}

func (f *Flags) apply(c *Config) {
	if f == nil || f.fs == nil {
		return
	}
	if f.fs.Changed("addr") {
		c.ListenAddr = f.Addr
	}
	if f.fs.Changed("log-level") {
		c.LogLevel = f.LogLevel
	}
	if f.fs.Changed("api-base-url") {
		c.APIBaseURL = f.APIBaseURL
	}
}
